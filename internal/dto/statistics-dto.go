package dto

import "time"

// StatisticsFilter — параметры сводки по завершённым заказам.
// Диапазон дат применяется к updatedAt заказа.
type StatisticsFilter struct {
	Page  uint64
	Limit uint64

	StartDate *time.Time
	EndDate   *time.Time

	Status *string
}

func (f StatisticsFilter) Offset() uint64 {
	if f.Page == 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
