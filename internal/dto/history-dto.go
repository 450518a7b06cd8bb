package dto

import "time"

// HistoryFilter — параметры листинга архива.
type HistoryFilter struct {
	Page  uint64
	Limit uint64

	Search     string
	RegionName string
	SocialName string

	StartDate *time.Time
	EndDate   *time.Time

	// Для не-привилегированных ролей листинг неявно сужается до
	// записей их рабочего этапа.
	StatusEquals *string
}

func (f HistoryFilter) Offset() uint64 {
	if f.Page == 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
