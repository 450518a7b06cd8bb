package dto

type CreateReferenceDTO struct {
	Name string `json:"name" validate:"required,max=128"`
}

type UpdateReferenceDTO struct {
	Name string `json:"name" validate:"required,max=128"`
}

type CreateRoomMeasurementDTO struct {
	OrderID string  `json:"orderId" validate:"required,uuid"`
	Name    *string `json:"name" validate:"omitempty,max=128"`
	Key     *string `json:"key" validate:"omitempty,max=128"`
	Value   *string `json:"value" validate:"omitempty,max=128"`
}

type UpdateRoomMeasurementDTO struct {
	Name  *string `json:"name" validate:"omitempty,max=128"`
	Key   *string `json:"key" validate:"omitempty,max=128"`
	Value *string `json:"value" validate:"omitempty,max=128"`
}

type CreateCurrencyOrderDTO struct {
	OrderID string   `json:"orderId" validate:"required,uuid"`
	Name    *string  `json:"name" validate:"omitempty,max=128"`
	Card    *float64 `json:"card" validate:"omitempty,min=0"`
	Cash    *float64 `json:"cash" validate:"omitempty,min=0"`
}

type UpdateCurrencyOrderDTO struct {
	Name *string  `json:"name" validate:"omitempty,max=128"`
	Card *float64 `json:"card" validate:"omitempty,min=0"`
	Cash *float64 `json:"cash" validate:"omitempty,min=0"`
}
