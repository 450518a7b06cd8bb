package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateOrderDTO struct {
	Name    *string `json:"name" validate:"omitempty,max=128"`
	Phone   *string `json:"phone" validate:"omitempty,max=16"`
	Comment *string `json:"comment" validate:"omitempty,max=256"`

	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`

	RegionID      *string `json:"regionId" validate:"omitempty,uuid"`
	SocialID      *string `json:"socialId" validate:"omitempty,uuid"`
	OrderStatusID *string `json:"orderStatusId" validate:"omitempty,uuid"`

	WorkerArrivalDate *string `json:"workerArrivalDate" validate:"omitempty"`
	EndDateJob        *string `json:"endDateJob" validate:"omitempty"`

	Total      *float64 `json:"total" validate:"omitempty,min=0"`
	PrePayment *float64 `json:"prePayment" validate:"omitempty,min=0"`
	DueAmount  *float64 `json:"dueAmount" validate:"omitempty,min=0"`

	Status *string `json:"status" validate:"omitempty,oneof=MANAGER ZAMIR ZAVOD USTANOVCHIK DONE CANCEL"`
}

// UpdateOrderDTO — явно перечисленный частичный патч заказа.
// nil-поле означает «не менять». Какие поля реально применяются,
// решает белый список authz.AllowedFields по роли вызывающего.
type UpdateOrderDTO struct {
	Name    *string `json:"name" validate:"omitempty,max=128"`
	Phone   *string `json:"phone" validate:"omitempty,max=16"`
	Comment *string `json:"comment" validate:"omitempty,max=256"`

	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`

	RegionID      *string `json:"regionId" validate:"omitempty,uuid"`
	SocialID      *string `json:"socialId" validate:"omitempty,uuid"`
	OrderStatusID *string `json:"orderStatusId" validate:"omitempty,uuid"`

	WorkerArrivalDate *string `json:"workerArrivalDate"`
	EndDateJob        *string `json:"endDateJob"`

	Total      *float64 `json:"total" validate:"omitempty,min=0"`
	PrePayment *float64 `json:"prePayment" validate:"omitempty,min=0"`
	DueAmount  *float64 `json:"dueAmount" validate:"omitempty,min=0"`

	Status *string `json:"status" validate:"omitempty,oneof=MANAGER ZAMIR ZAVOD USTANOVCHIK DONE CANCEL"`
}

// OrderListScope — какой срез заказов видит рабочий: пул
// неразобранных или свои назначенные.
type OrderListScope string

const (
	ScopePool OrderListScope = "pool"
	ScopeMine OrderListScope = "mine"
)

// OrderFilter — разобранные параметры листинга заказов.
type OrderFilter struct {
	Page  uint64
	Limit uint64

	OrderStatusID *uuid.UUID
	RegionID      *uuid.UUID
	SocialID      *uuid.UUID

	// Свободный статус-фильтр; применяется только для ADMIN/MANAGER.
	Status *string

	// Поиск по имени/телефону/названию региона; действует при длине > 2.
	Search string

	StartDate         *time.Time
	EndDate           *time.Time
	EndDateJob        *time.Time
	WorkerArrivalDate *time.Time

	Scope OrderListScope
}

func (f OrderFilter) Offset() uint64 {
	if f.Page == 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

type AssignOrdersDTO struct {
	OrderIDs []string `json:"orderIds" validate:"required,min=1,dive,uuid"`
}

// BatchResult — результат пакетного назначения/снятия для одного
// заказа. Пакет не атомарен: каждый заказ обрабатывается независимо.
type BatchResult struct {
	OrderID string `json:"orderId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type OrderSumsDTO struct {
	Total      float64 `json:"totalSum"`
	PrePayment float64 `json:"totalPrePayment"`
	DueAmount  float64 `json:"totalDueAmount"`
}
