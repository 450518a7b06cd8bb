package events

import "renovation-system/internal/entities"

const (
	OrderDispatchedEvent = "order.dispatched"
	OrderChangedEvent    = "order.changed"
	OrderCompletedEvent  = "order.completed"
)

// OrderDispatched — заказ отправлен на производство (ZAMIR → ZAVOD).
type OrderDispatched struct {
	Order entities.Order
}

func (e OrderDispatched) Name() string { return OrderDispatchedEvent }

// OrderChanged — заказ отредактирован без смены этапа.
type OrderChanged struct {
	Order entities.Order
}

func (e OrderChanged) Name() string { return OrderChangedEvent }

// OrderCompleted — заказ завершён.
type OrderCompleted struct {
	Order entities.Order
}

func (e OrderCompleted) Name() string { return OrderCompletedEvent }
