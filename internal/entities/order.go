package entities

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentSlot — денормализованный снимок работника, занявшего
// слот заказа. Слот, однажды занятый, может быть только прочитан
// или очищен, но не перезаписан другим работником.
type AssignmentSlot struct {
	UserID *uuid.UUID `json:"userId"`
	Name   *string    `json:"name"`
	Phone  *string    `json:"phone"`
}

func (s AssignmentSlot) IsEmpty() bool {
	return s.UserID == nil
}

func (s AssignmentSlot) HeldBy(userID uuid.UUID) bool {
	return s.UserID != nil && *s.UserID == userID
}

// Order — центральный агрегат: заказ на ремонтные работы.
type Order struct {
	ID      uuid.UUID `json:"id"`
	Name    *string   `json:"name"`
	Phone   *string   `json:"phone"`
	Comment *string   `json:"comment"`

	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`

	RegionID      *uuid.UUID `json:"regionId"`
	SocialID      *uuid.UUID `json:"socialId"`
	OrderStatusID *uuid.UUID `json:"orderStatusId"`

	WorkerArrivalDate *time.Time `json:"workerArrivalDate"`
	EndDateJob        *time.Time `json:"endDateJob"`

	Total      *float64 `json:"total"`
	PrePayment *float64 `json:"prePayment"`
	DueAmount  *float64 `json:"dueAmount"`

	Status            Status     `json:"status"`
	GetPrePaymentDate *time.Time `json:"getPrePaymentDate"`
	GetAllPaymentDate *time.Time `json:"getAllPaymentDate"`

	// Атрибуция менеджера, снятая при создании заказа.
	ManagerID    *uuid.UUID `json:"managerId"`
	ManagerName  *string    `json:"managerName"`
	ManagerPhone *string    `json:"managerphone"`

	Zamir AssignmentSlot `json:"zamir"`
	Ust   AssignmentSlot `json:"ust"`
	Zavod AssignmentSlot `json:"zavod"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Region      *Region           `json:"region,omitempty"`
	Social      *Social           `json:"social,omitempty"`
	OrderStatus *OrderStatus      `json:"orderStatus,omitempty"`
	Rooms       []RoomMeasurement `json:"roomMeasurement,omitempty"`
}

// SlotFor возвращает слот назначения, соответствующий рабочей роли.
func (o *Order) SlotFor(role Role) *AssignmentSlot {
	switch role {
	case RoleZamir:
		return &o.Zamir
	case RoleUstanovchik:
		return &o.Ust
	case RoleZavod:
		return &o.Zavod
	}
	return nil
}
