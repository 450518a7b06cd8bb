package entities

import (
	"time"

	"github.com/google/uuid"
)

// History — неизменяемый снимок заказа, созданный при первом
// квалифицирующем переходе. Одна строка на заказ; при завершении
// заказа в неё дописывается итоговая атрибуция.
type History struct {
	ID      uuid.UUID `json:"id"`
	OrderID uuid.UUID `json:"orderId"`

	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Comment *string `json:"comment"`

	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`

	RegionID *uuid.UUID `json:"regionId"`
	SocialID *uuid.UUID `json:"socialId"`

	WorkerArrivalDate *time.Time `json:"workerArrivalDate"`
	EndDateJob        *time.Time `json:"endDateJob"`

	Total      *float64 `json:"total"`
	PrePayment *float64 `json:"prePayment"`
	DueAmount  *float64 `json:"dueAmount"`

	Status            Status     `json:"status"`
	GetPrePaymentDate *time.Time `json:"getPrePaymentDate"`
	GetAllPaymentDate *time.Time `json:"getAllPaymentDate"`

	// Итоговая атрибуция, заполняется при переходе заказа в DONE.
	ManagerName  *string `json:"managerName"`
	ManagerPhone *string `json:"managerphone"`
	ZamirName    *string `json:"zamirName"`
	ZamirPhone   *string `json:"zamirPhone"`
	UstName      *string `json:"ustName"`
	UstPhone     *string `json:"ustPhone"`
	ZavodName    *string `json:"zavodName"`
	ZavodPhone   *string `json:"zavodPhone"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Region *Region           `json:"region,omitempty"`
	Social *Social           `json:"social,omitempty"`
	Rooms  []RoomMeasurement `json:"roomMeasurement,omitempty"`
}

// HistoryAttribution — финальные поля, дописываемые в снимок при
// завершении заказа.
type HistoryAttribution struct {
	ManagerName  *string
	ManagerPhone *string
	ZamirName    *string
	ZamirPhone   *string
	UstName      *string
	UstPhone     *string
	ZavodName    *string
	ZavodPhone   *string

	GetPrePaymentDate *time.Time
	GetAllPaymentDate *time.Time
}
