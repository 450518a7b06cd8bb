package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"renovation-system/internal/authz"
	"renovation-system/internal/dto"
	"renovation-system/internal/entities"
	"renovation-system/internal/repositories"
	apperrors "renovation-system/pkg/errors"
)

type StatisticsReport struct {
	Orders []entities.Order `json:"orders"`
	Total  uint64           `json:"total"`
	Sums   dto.OrderSumsDTO `json:"sums"`
}

type StatisticsServiceInterface interface {
	GetStatistics(ctx context.Context, actor authz.Actor, filter dto.StatisticsFilter) (*StatisticsReport, error)
	ExportExcel(ctx context.Context, actor authz.Actor, filter dto.StatisticsFilter) (*bytes.Buffer, error)
}

type StatisticsService struct {
	orderRepo repositories.OrderRepositoryInterface
}

func NewStatisticsService(orderRepo repositories.OrderRepositoryInterface) StatisticsServiceInterface {
	return &StatisticsService{orderRepo: orderRepo}
}

// GetStatistics — сводка по завершённым заказам: страница листинга
// плюс агрегатные суммы по всему диапазону. Доступно только
// администратору.
func (s *StatisticsService) GetStatistics(ctx context.Context, actor authz.Actor, filter dto.StatisticsFilter) (*StatisticsReport, error) {
	if actor.Role != entities.RoleAdmin {
		return nil, apperrors.NewForbiddenError("Сводка доступна только администратору")
	}

	orders, total, err := s.orderRepo.GetDoneOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	sums, err := s.orderRepo.SumAmounts(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &StatisticsReport{Orders: orders, Total: total, Sums: sums}, nil
}

var exportHeader = []string{
	"№", "Клиент", "Телефон", "Регион", "Источник",
	"Сумма", "Предоплата", "Остаток",
	"Дата предоплаты", "Дата полной оплаты",
	"Менеджер", "Замерщик", "Завод", "Установщик",
}

// ExportExcel выгружает сводку в xlsx. Диапазон дат тот же, что и у
// GetStatistics; пагинация игнорируется — выгружается весь срез.
func (s *StatisticsService) ExportExcel(ctx context.Context, actor authz.Actor, filter dto.StatisticsFilter) (*bytes.Buffer, error) {
	if actor.Role != entities.RoleAdmin {
		return nil, apperrors.NewForbiddenError("Выгрузка доступна только администратору")
	}

	filter.Page = 1
	filter.Limit = 10000

	orders, _, err := s.orderRepo.GetDoneOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	sums, err := s.orderRepo.SumAmounts(ctx, filter)
	if err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Сводка"
	file.SetSheetName(file.GetSheetName(0), sheet)

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}

	const dateLayout = "02.01.2006"
	for i, order := range orders {
		row := i + 2
		values := []interface{}{
			i + 1,
			strOrEmpty(order.Name),
			strOrEmpty(order.Phone),
			refName(order.Region),
			refNameSocial(order.Social),
			floatOrZero(order.Total),
			floatOrZero(order.PrePayment),
			floatOrZero(order.DueAmount),
			timeOrEmpty(order.GetPrePaymentDate, dateLayout),
			timeOrEmpty(order.GetAllPaymentDate, dateLayout),
			strOrEmpty(order.ManagerName),
			strOrEmpty(order.Zamir.Name),
			strOrEmpty(order.Zavod.Name),
			strOrEmpty(order.Ust.Name),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	// Итоговая строка с суммами.
	totalRow := len(orders) + 3
	totals := map[int]interface{}{
		2: "Итого",
		6: sums.Total,
		7: sums.PrePayment,
		8: sums.DueAmount,
	}
	for col, value := range totals {
		cell, err := excelize.CoordinatesToCellName(col, totalRow)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(sheet, cell, value); err != nil {
			return nil, err
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("ошибка формирования файла выгрузки: %w", err)
	}
	return buf, nil
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func refName(r *entities.Region) string {
	if r == nil {
		return ""
	}
	return r.Name
}

func refNameSocial(s *entities.Social) string {
	if s == nil {
		return ""
	}
	return s.Name
}

func timeOrEmpty(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}
