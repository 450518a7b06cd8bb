package services

import (
	"context"

	"github.com/google/uuid"

	"renovation-system/internal/authz"
	"renovation-system/internal/dto"
	"renovation-system/internal/entities"
	"renovation-system/internal/repositories"
	apperrors "renovation-system/pkg/errors"
)

type CurrencyServiceInterface interface {
	CreateCurrency(ctx context.Context, actor authz.Actor, payload dto.CreateCurrencyOrderDTO) (*entities.CurrencyOrder, error)
	ListByOrderID(ctx context.Context, actor authz.Actor, orderID uuid.UUID) ([]entities.CurrencyOrder, error)
	UpdateCurrency(ctx context.Context, actor authz.Actor, id uuid.UUID, payload dto.UpdateCurrencyOrderDTO) (*entities.CurrencyOrder, error)
	DeleteCurrency(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

type CurrencyService struct {
	currencyRepo repositories.CurrencyRepositoryInterface
	orderRepo    repositories.OrderRepositoryInterface
}

func NewCurrencyService(currencyRepo repositories.CurrencyRepositoryInterface, orderRepo repositories.OrderRepositoryInterface) CurrencyServiceInterface {
	return &CurrencyService{currencyRepo: currencyRepo, orderRepo: orderRepo}
}

// requireOrderAccess проверяет, что вызывающий вправе менять заказ,
// которому принадлежит оплата.
func (s *CurrencyService) requireOrderAccess(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*entities.Order, error) {
	order, err := s.orderRepo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, apperrors.NewConflictError("Заказ уже завершён и не может быть изменён")
	}
	if !authz.CanMutate(order, actor) {
		return nil, apperrors.NewForbiddenError("Нет доступа к этому заказу")
	}
	return order, nil
}

func (s *CurrencyService) CreateCurrency(ctx context.Context, actor authz.Actor, payload dto.CreateCurrencyOrderDTO) (*entities.CurrencyOrder, error) {
	orderID, err := uuid.Parse(payload.OrderID)
	if err != nil {
		return nil, apperrors.NewValidationError("некорректный идентификатор заказа: %q", payload.OrderID)
	}
	if _, err := s.requireOrderAccess(ctx, actor, orderID); err != nil {
		return nil, err
	}

	currency := &entities.CurrencyOrder{
		ID:      uuid.New(),
		OrderID: orderID,
		Name:    payload.Name,
	}
	if payload.Card != nil {
		currency.Card = *payload.Card
	}
	if payload.Cash != nil {
		currency.Cash = *payload.Cash
	}
	if err := s.currencyRepo.CreateCurrency(ctx, currency); err != nil {
		return nil, err
	}
	return currency, nil
}

func (s *CurrencyService) ListByOrderID(ctx context.Context, actor authz.Actor, orderID uuid.UUID) ([]entities.CurrencyOrder, error) {
	order, err := s.orderRepo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !authz.CanView(order, actor) {
		return nil, apperrors.NewForbiddenError("Нет доступа к этому заказу")
	}
	return s.currencyRepo.ListByOrderID(ctx, orderID)
}

func (s *CurrencyService) UpdateCurrency(ctx context.Context, actor authz.Actor, id uuid.UUID, payload dto.UpdateCurrencyOrderDTO) (*entities.CurrencyOrder, error) {
	currency, err := s.currencyRepo.FindCurrency(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireOrderAccess(ctx, actor, currency.OrderID); err != nil {
		return nil, err
	}

	if payload.Name != nil {
		currency.Name = payload.Name
	}
	if payload.Card != nil {
		currency.Card = *payload.Card
	}
	if payload.Cash != nil {
		currency.Cash = *payload.Cash
	}
	if err := s.currencyRepo.UpdateCurrency(ctx, currency); err != nil {
		return nil, err
	}
	return currency, nil
}

func (s *CurrencyService) DeleteCurrency(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	currency, err := s.currencyRepo.FindCurrency(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.requireOrderAccess(ctx, actor, currency.OrderID); err != nil {
		return err
	}
	return s.currencyRepo.DeleteCurrency(ctx, id)
}
