package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renovation-system/internal/authz"
	"renovation-system/internal/dto"
	"renovation-system/internal/entities"
	apperrors "renovation-system/pkg/errors"
)

// fakeCurrencyStore — хранящий фейк для тестов сервиса оплат.
type fakeCurrencyStore struct {
	currencies map[uuid.UUID]*entities.CurrencyOrder
}

func newFakeCurrencyStore() *fakeCurrencyStore {
	return &fakeCurrencyStore{currencies: make(map[uuid.UUID]*entities.CurrencyOrder)}
}

func (f *fakeCurrencyStore) CreateCurrency(_ context.Context, currency *entities.CurrencyOrder) error {
	clone := *currency
	f.currencies[currency.ID] = &clone
	return nil
}

func (f *fakeCurrencyStore) FindCurrency(_ context.Context, id uuid.UUID) (*entities.CurrencyOrder, error) {
	currency, ok := f.currencies[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("Оплата не найдена")
	}
	clone := *currency
	return &clone, nil
}

func (f *fakeCurrencyStore) ListByOrderID(_ context.Context, orderID uuid.UUID) ([]entities.CurrencyOrder, error) {
	list := make([]entities.CurrencyOrder, 0)
	for _, currency := range f.currencies {
		if currency.OrderID == orderID {
			list = append(list, *currency)
		}
	}
	return list, nil
}

func (f *fakeCurrencyStore) UpdateCurrency(_ context.Context, currency *entities.CurrencyOrder) error {
	if _, ok := f.currencies[currency.ID]; !ok {
		return apperrors.NewNotFoundError("Оплата не найдена")
	}
	clone := *currency
	f.currencies[currency.ID] = &clone
	return nil
}

func (f *fakeCurrencyStore) DeleteCurrency(_ context.Context, id uuid.UUID) error {
	if _, ok := f.currencies[id]; !ok {
		return apperrors.NewNotFoundError("Оплата не найдена")
	}
	delete(f.currencies, id)
	return nil
}

func (f *fakeCurrencyStore) DeleteByOrderInTx(_ context.Context, _ pgx.Tx, orderID uuid.UUID) error {
	for id, currency := range f.currencies {
		if currency.OrderID == orderID {
			delete(f.currencies, id)
		}
	}
	return nil
}

type currencyTestEnv struct {
	service   CurrencyServiceInterface
	orderRepo *fakeOrderRepo
	store     *fakeCurrencyStore
}

func newCurrencyTestEnv(t *testing.T) *currencyTestEnv {
	t.Helper()
	orderRepo := newFakeOrderRepo()
	store := newFakeCurrencyStore()
	return &currencyTestEnv{
		service:   NewCurrencyService(store, orderRepo),
		orderRepo: orderRepo,
		store:     store,
	}
}

func (env *currencyTestEnv) addOrder(status entities.Status) uuid.UUID {
	id := uuid.New()
	name := "Клиент"
	env.orderRepo.orders[id] = &entities.Order{ID: id, Name: &name, Status: status}
	return id
}

func TestCreateCurrencyDefaultsAmounts(t *testing.T) {
	env := newCurrencyTestEnv(t)
	manager := authz.Actor{ID: uuid.New(), Role: entities.RoleManager}
	orderID := env.addOrder(entities.StatusManager)

	card := 1000.0
	currency, err := env.service.CreateCurrency(context.Background(), manager, dto.CreateCurrencyOrderDTO{
		OrderID: orderID.String(),
		Name:    strPtr("Аванс"),
		Card:    &card,
	})
	require.NoError(t, err)

	assert.Equal(t, orderID, currency.OrderID)
	assert.Equal(t, 1000.0, currency.Card)
	assert.Equal(t, 0.0, currency.Cash)
}

func TestCreateCurrencyUnknownOrderNotFound(t *testing.T) {
	env := newCurrencyTestEnv(t)
	manager := authz.Actor{ID: uuid.New(), Role: entities.RoleManager}

	_, err := env.service.CreateCurrency(context.Background(), manager, dto.CreateCurrencyOrderDTO{
		OrderID: uuid.New().String(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateCurrencyTerminalOrderConflicts(t *testing.T) {
	env := newCurrencyTestEnv(t)
	manager := authz.Actor{ID: uuid.New(), Role: entities.RoleManager}
	orderID := env.addOrder(entities.StatusDone)

	_, err := env.service.CreateCurrency(context.Background(), manager, dto.CreateCurrencyOrderDTO{
		OrderID: orderID.String(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestUpdateCurrencyAppliesPartialPatch(t *testing.T) {
	env := newCurrencyTestEnv(t)
	manager := authz.Actor{ID: uuid.New(), Role: entities.RoleManager}
	orderID := env.addOrder(entities.StatusZamir)

	currency, err := env.service.CreateCurrency(context.Background(), manager, dto.CreateCurrencyOrderDTO{
		OrderID: orderID.String(),
	})
	require.NoError(t, err)

	cash := 500.0
	updated, err := env.service.UpdateCurrency(context.Background(), manager, currency.ID, dto.UpdateCurrencyOrderDTO{
		Cash: &cash,
	})
	require.NoError(t, err)

	assert.Equal(t, 500.0, updated.Cash)
	assert.Equal(t, 0.0, updated.Card)
}

func TestDeleteCurrencyForbiddenForForeignWorker(t *testing.T) {
	env := newCurrencyTestEnv(t)
	manager := authz.Actor{ID: uuid.New(), Role: entities.RoleManager}
	worker := authz.Actor{ID: uuid.New(), Role: entities.RoleZavod}
	orderID := env.addOrder(entities.StatusZamir)

	currency, err := env.service.CreateCurrency(context.Background(), manager, dto.CreateCurrencyOrderDTO{
		OrderID: orderID.String(),
	})
	require.NoError(t, err)

	err = env.service.DeleteCurrency(context.Background(), worker, currency.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))

	require.NoError(t, env.service.DeleteCurrency(context.Background(), manager, currency.ID))
	_, err = env.store.FindCurrency(context.Background(), currency.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
