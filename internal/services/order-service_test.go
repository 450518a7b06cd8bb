package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"renovation-system/internal/authz"
	"renovation-system/internal/dto"
	"renovation-system/internal/entities"
	"renovation-system/internal/events"
	"renovation-system/internal/repositories"
	"renovation-system/pkg/eventbus"
	apperrors "renovation-system/pkg/errors"
)

// ===== Фейки хранилища для юнит-тестов движка =====

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type fakeOrderRepo struct {
	orders map[uuid.UUID]*entities.Order

	lastFilter dto.OrderFilter
	lastScope  *repositories.SlotScope
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*entities.Order)}
}

func (f *fakeOrderRepo) CreateOrderInTx(_ context.Context, _ pgx.Tx, order *entities.Order) error {
	clone := *order
	f.orders[order.ID] = &clone
	return nil
}

func (f *fakeOrderRepo) FindOrder(_ context.Context, id uuid.UUID) (*entities.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("Заказ не найден")
	}
	clone := *order
	return &clone, nil
}

func (f *fakeOrderRepo) FindOrderForUpdateInTx(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*entities.Order, error) {
	return f.FindOrder(ctx, id)
}

func (f *fakeOrderRepo) UpdateOrderInTx(_ context.Context, _ pgx.Tx, order *entities.Order) error {
	stored, ok := f.orders[order.ID]
	if !ok {
		return apperrors.NewNotFoundError("Заказ не найден")
	}
	clone := *order
	// Слоты меняются только через ClaimSlotInTx/ClearSlotInTx.
	clone.Zamir = stored.Zamir
	clone.Ust = stored.Ust
	clone.Zavod = stored.Zavod
	f.orders[order.ID] = &clone
	return nil
}

func (f *fakeOrderRepo) ClaimSlotInTx(_ context.Context, _ pgx.Tx, orderID uuid.UUID, role entities.Role, slot entities.AssignmentSlot) error {
	order, ok := f.orders[orderID]
	if !ok {
		return apperrors.NewNotFoundError("Заказ не найден")
	}
	target := order.SlotFor(role)
	if !target.IsEmpty() && !target.HeldBy(*slot.UserID) {
		return apperrors.NewConflictError("Заказ уже назначен другому пользователю")
	}
	*target = slot
	return nil
}

func (f *fakeOrderRepo) ClearSlotInTx(_ context.Context, _ pgx.Tx, orderID uuid.UUID, role entities.Role) error {
	order, ok := f.orders[orderID]
	if !ok {
		return apperrors.NewNotFoundError("Заказ не найден")
	}
	*order.SlotFor(role) = entities.AssignmentSlot{}
	return nil
}

func (f *fakeOrderRepo) DeleteOrderInTx(_ context.Context, _ pgx.Tx, id uuid.UUID) error {
	if _, ok := f.orders[id]; !ok {
		return apperrors.NewNotFoundError("Заказ не найден")
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderRepo) GetOrders(_ context.Context, filter dto.OrderFilter, scope *repositories.SlotScope) ([]entities.Order, uint64, error) {
	f.lastFilter = filter
	f.lastScope = scope
	return []entities.Order{}, 0, nil
}

func (f *fakeOrderRepo) GetDoneOrders(_ context.Context, _ dto.StatisticsFilter) ([]entities.Order, uint64, error) {
	return []entities.Order{}, 0, nil
}

func (f *fakeOrderRepo) SumAmounts(_ context.Context, _ dto.StatisticsFilter) (dto.OrderSumsDTO, error) {
	return dto.OrderSumsDTO{}, nil
}

type fakeHistoryRepo struct {
	snapshots map[uuid.UUID]*entities.History
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{snapshots: make(map[uuid.UUID]*entities.History)}
}

func (f *fakeHistoryRepo) CreateIfAbsentInTx(_ context.Context, _ pgx.Tx, snapshot *entities.History) (bool, error) {
	if _, ok := f.snapshots[snapshot.OrderID]; ok {
		return false, nil
	}
	clone := *snapshot
	f.snapshots[snapshot.OrderID] = &clone
	return true, nil
}

func (f *fakeHistoryRepo) FinalizeInTx(_ context.Context, _ pgx.Tx, orderID uuid.UUID, attr entities.HistoryAttribution) error {
	snapshot, ok := f.snapshots[orderID]
	if !ok {
		return nil
	}
	snapshot.Status = entities.StatusDone
	snapshot.ManagerName = attr.ManagerName
	snapshot.ZamirName = attr.ZamirName
	snapshot.UstName = attr.UstName
	snapshot.ZavodName = attr.ZavodName
	snapshot.GetPrePaymentDate = attr.GetPrePaymentDate
	snapshot.GetAllPaymentDate = attr.GetAllPaymentDate
	return nil
}

func (f *fakeHistoryRepo) DeleteByOrderInTx(_ context.Context, _ pgx.Tx, orderID uuid.UUID) error {
	delete(f.snapshots, orderID)
	return nil
}

func (f *fakeHistoryRepo) FindHistory(_ context.Context, _ uuid.UUID) (*entities.History, error) {
	return nil, apperrors.NewNotFoundError("Запись архива не найдена")
}

func (f *fakeHistoryRepo) GetHistories(_ context.Context, _ dto.HistoryFilter) ([]entities.History, uint64, error) {
	return []entities.History{}, 0, nil
}

type fakeRoomRepo struct{}

func (f *fakeRoomRepo) CreateRoom(_ context.Context, _ *entities.RoomMeasurement) error { return nil }
func (f *fakeRoomRepo) FindRoom(_ context.Context, _ uuid.UUID) (*entities.RoomMeasurement, error) {
	return nil, apperrors.NewNotFoundError("Замер не найден")
}
func (f *fakeRoomRepo) ListByOrderID(_ context.Context, _ uuid.UUID) ([]entities.RoomMeasurement, error) {
	return nil, nil
}
func (f *fakeRoomRepo) UpdateRoom(_ context.Context, _ *entities.RoomMeasurement) error { return nil }
func (f *fakeRoomRepo) DeleteRoom(_ context.Context, _ uuid.UUID) error                 { return nil }
func (f *fakeRoomRepo) DeleteByOrderInTx(_ context.Context, _ pgx.Tx, _ uuid.UUID) error {
	return nil
}

type fakeCurrencyRepo struct{}

func (f *fakeCurrencyRepo) CreateCurrency(_ context.Context, _ *entities.CurrencyOrder) error {
	return nil
}
func (f *fakeCurrencyRepo) FindCurrency(_ context.Context, _ uuid.UUID) (*entities.CurrencyOrder, error) {
	return nil, apperrors.NewNotFoundError("Оплата не найдена")
}
func (f *fakeCurrencyRepo) ListByOrderID(_ context.Context, _ uuid.UUID) ([]entities.CurrencyOrder, error) {
	return nil, nil
}
func (f *fakeCurrencyRepo) UpdateCurrency(_ context.Context, _ *entities.CurrencyOrder) error {
	return nil
}
func (f *fakeCurrencyRepo) DeleteCurrency(_ context.Context, _ uuid.UUID) error { return nil }
func (f *fakeCurrencyRepo) DeleteByOrderInTx(_ context.Context, _ pgx.Tx, _ uuid.UUID) error {
	return nil
}

type fakeResolver struct {
	users map[uuid.UUID]*entities.User
}

func (f *fakeResolver) ResolveSnapshot(_ context.Context, id uuid.UUID) (*entities.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("Пользователь не найден")
	}
	return user, nil
}

// ===== Окружение тестов =====

type testEnv struct {
	service   OrderServiceInterface
	orderRepo *fakeOrderRepo
	histRepo  *fakeHistoryRepo
	resolver  *fakeResolver
	published chan eventbus.Event
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	bus := eventbus.New(logger, time.Second)

	published := make(chan eventbus.Event, 16)
	capture := func(_ context.Context, event eventbus.Event) error {
		published <- event
		return nil
	}
	bus.Subscribe(events.OrderDispatchedEvent, capture)
	bus.Subscribe(events.OrderChangedEvent, capture)
	bus.Subscribe(events.OrderCompletedEvent, capture)

	orderRepo := newFakeOrderRepo()
	histRepo := newFakeHistoryRepo()
	resolver := &fakeResolver{users: make(map[uuid.UUID]*entities.User)}

	service := NewOrderService(orderRepo, histRepo, &fakeRoomRepo{}, &fakeCurrencyRepo{}, &fakeTxManager{}, resolver, bus, logger)

	return &testEnv{
		service:   service,
		orderRepo: orderRepo,
		histRepo:  histRepo,
		resolver:  resolver,
		published: published,
	}
}

func (env *testEnv) addUser(name string, role entities.Role) authz.Actor {
	user := &entities.User{
		ID:    uuid.New(),
		Name:  &name,
		Phone: "+99290000" + name,
		Role:  role,
	}
	env.resolver.users[user.ID] = user
	return authz.Actor{ID: user.ID, Role: role}
}

func (env *testEnv) addOrder(status entities.Status) uuid.UUID {
	id := uuid.New()
	name := "Клиент"
	env.orderRepo.orders[id] = &entities.Order{ID: id, Name: &name, Status: status}
	return id
}

func (env *testEnv) waitEvent(t *testing.T) eventbus.Event {
	t.Helper()
	select {
	case event := <-env.published:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("событие не было опубликовано")
		return nil
	}
}

func (env *testEnv) assertNoEvent(t *testing.T) {
	t.Helper()
	select {
	case event := <-env.published:
		t.Fatalf("неожиданное событие: %s", event.Name())
	case <-time.After(100 * time.Millisecond):
	}
}

func strPtr(s string) *string { return &s }

// ===== Тесты =====

func TestUpdateClaimsSlotOnFirstEdit(t *testing.T) {
	env := newTestEnv(t)
	worker := env.addUser("zamir", entities.RoleZamir)
	orderID := env.addOrder(entities.StatusZamir)

	updated, err := env.service.UpdateOrder(context.Background(), worker, orderID, dto.UpdateOrderDTO{
		Comment: strPtr("замер сделан"),
	})
	require.NoError(t, err)

	assert.True(t, updated.Zamir.HeldBy(worker.ID))
	assert.Equal(t, "замер сделан", *updated.Comment)
	assert.Equal(t, entities.StatusZamir, updated.Status)
}

func TestUpdateSkipsFieldsOutsideWhitelist(t *testing.T) {
	env := newTestEnv(t)
	worker := env.addUser("ust", entities.RoleUstanovchik)
	orderID := env.addOrder(entities.StatusUstanovchik)

	total := 9999.0
	updated, err := env.service.UpdateOrder(context.Background(), worker, orderID, dto.UpdateOrderDTO{
		Comment: strPtr("установлено"),
		Total:   &total,
		Name:    strPtr("взломанное имя"),
	})
	require.NoError(t, err)

	assert.Equal(t, "установлено", *updated.Comment)
	assert.Nil(t, updated.Total)
	assert.Equal(t, "Клиент", *updated.Name)
}

func TestUpdateTerminalOrderConflicts(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addUser("admin", entities.RoleAdmin)
	orderID := env.addOrder(entities.StatusDone)

	_, err := env.service.UpdateOrder(context.Background(), admin, orderID, dto.UpdateOrderDTO{
		Comment: strPtr("поздно"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestUpdateForeignSlotForbidden(t *testing.T) {
	env := newTestEnv(t)
	first := env.addUser("zamir1", entities.RoleZamir)
	second := env.addUser("zamir2", entities.RoleZamir)
	orderID := env.addOrder(entities.StatusZamir)

	_, err := env.service.UpdateOrder(context.Background(), first, orderID, dto.UpdateOrderDTO{
		Comment: strPtr("мой заказ"),
	})
	require.NoError(t, err)

	_, err = env.service.UpdateOrder(context.Background(), second, orderID, dto.UpdateOrderDTO{
		Comment: strPtr("перехват"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestUpdateFreeOrderAtForeignStageForbidden(t *testing.T) {
	env := newTestEnv(t)
	worker := env.addUser("zavod", entities.RoleZavod)
	orderID := env.addOrder(entities.StatusManager)

	// Свободный заказ чужого этапа нельзя ни править, ни тем самым
	// захватить: действует та же ступень, что и при пакетном назначении.
	_, err := env.service.UpdateOrder(context.Background(), worker, orderID, dto.UpdateOrderDTO{
		Comment: strPtr("рано"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
	assert.True(t, env.orderRepo.orders[orderID].Zavod.IsEmpty())
}

func TestMetadataEditNotifiesChangeAtAnyStage(t *testing.T) {
	env := newTestEnv(t)
	manager := env.addUser("manager", entities.RoleManager)

	// Правка без смены этапа анонсируется изменением не только на
	// производстве.
	for _, status := range []entities.Status{entities.StatusManager, entities.StatusZamir, entities.StatusUstanovchik} {
		orderID := env.addOrder(status)

		_, err := env.service.UpdateOrder(context.Background(), manager, orderID, dto.UpdateOrderDTO{
			Comment: strPtr("уточнение адреса"),
		})
		require.NoError(t, err)

		event := env.waitEvent(t)
		assert.Equal(t, events.OrderChangedEvent, event.Name())
	}
}

func TestSnapshotKeepsPreUpdateState(t *testing.T) {
	env := newTestEnv(t)
	manager := env.addUser("manager", entities.RoleManager)
	orderID := env.addOrder(entities.StatusZamir)
	env.orderRepo.orders[orderID].Comment = strPtr("до перехода")

	status := string(entities.StatusZavod)
	updated, err := env.service.UpdateOrder(context.Background(), manager, orderID, dto.UpdateOrderDTO{
		Status:  &status,
		Comment: strPtr("после перехода"),
	})
	require.NoError(t, err)
	env.waitEvent(t)

	// Заказ обновлён, а архив хранит состояние до правки.
	assert.Equal(t, "после перехода", *updated.Comment)

	snapshot := env.histRepo.snapshots[orderID]
	require.NotNil(t, snapshot)
	assert.Equal(t, entities.StatusZamir, snapshot.Status)
	assert.Equal(t, "до перехода", *snapshot.Comment)
}

func TestDispatchToZavodStampsAndNotifies(t *testing.T) {
	env := newTestEnv(t)
	manager := env.addUser("manager", entities.RoleManager)
	orderID := env.addOrder(entities.StatusZamir)

	status := string(entities.StatusZavod)
	updated, err := env.service.UpdateOrder(context.Background(), manager, orderID, dto.UpdateOrderDTO{
		Status: &status,
	})
	require.NoError(t, err)

	assert.Equal(t, entities.StatusZavod, updated.Status)
	require.NotNil(t, updated.GetPrePaymentDate)

	// Снимок создан на квалифицирующем переходе и хранит заказ в
	// состоянии до перехода.
	snapshot, ok := env.histRepo.snapshots[orderID]
	require.True(t, ok)
	assert.Equal(t, entities.StatusZamir, snapshot.Status)

	event := env.waitEvent(t)
	assert.Equal(t, events.OrderDispatchedEvent, event.Name())
}

func TestPrePaymentStampSetOnce(t *testing.T) {
	env := newTestEnv(t)
	manager := env.addUser("manager", entities.RoleManager)
	orderID := env.addOrder(entities.StatusZamir)

	status := string(entities.StatusZavod)
	first, err := env.service.UpdateOrder(context.Background(), manager, orderID, dto.UpdateOrderDTO{Status: &status})
	require.NoError(t, err)
	env.waitEvent(t)

	stamp := *first.GetPrePaymentDate
	time.Sleep(10 * time.Millisecond)

	second, err := env.service.UpdateOrder(context.Background(), manager, orderID, dto.UpdateOrderDTO{
		Comment: strPtr("правка на производстве"),
	})
	require.NoError(t, err)

	assert.Equal(t, stamp, *second.GetPrePaymentDate)

	// Правка без смены этапа на производстве анонсируется как изменение.
	event := env.waitEvent(t)
	assert.Equal(t, events.OrderChangedEvent, event.Name())
}

func TestSingleSnapshotAndFinalizeOnDone(t *testing.T) {
	env := newTestEnv(t)
	manager := env.addUser("manager", entities.RoleManager)
	orderID := env.addOrder(entities.StatusZamir)

	order := env.orderRepo.orders[orderID]
	order.ManagerName = strPtr("Менеджер")
	order.Zamir = entities.AssignmentSlot{UserID: uuidPtr(), Name: strPtr("Замерщик")}

	for _, status := range []string{"ZAVOD", "USTANOVCHIK"} {
		s := status
		_, err := env.service.UpdateOrder(context.Background(), manager, orderID, dto.UpdateOrderDTO{Status: &s})
		require.NoError(t, err)
	}
	env.waitEvent(t) // dispatched

	require.Len(t, env.histRepo.snapshots, 1)
	assert.Equal(t, entities.StatusZamir, env.histRepo.snapshots[orderID].Status)

	done := string(entities.StatusDone)
	updated, err := env.service.UpdateOrder(context.Background(), manager, orderID, dto.UpdateOrderDTO{Status: &done})
	require.NoError(t, err)

	require.NotNil(t, updated.GetAllPaymentDate)

	snapshot := env.histRepo.snapshots[orderID]
	assert.Equal(t, entities.StatusDone, snapshot.Status)
	assert.Equal(t, "Менеджер", *snapshot.ManagerName)
	assert.Equal(t, "Замерщик", *snapshot.ZamirName)
	assert.NotNil(t, snapshot.GetAllPaymentDate)

	event := env.waitEvent(t)
	assert.Equal(t, events.OrderCompletedEvent, event.Name())
}

func TestReturnToZamirClearsDisplayTag(t *testing.T) {
	env := newTestEnv(t)
	manager := env.addUser("manager", entities.RoleManager)
	orderID := env.addOrder(entities.StatusManager)

	tagID := uuid.New()
	env.orderRepo.orders[orderID].OrderStatusID = &tagID

	status := string(entities.StatusZamir)
	updated, err := env.service.UpdateOrder(context.Background(), manager, orderID, dto.UpdateOrderDTO{Status: &status})
	require.NoError(t, err)

	assert.Nil(t, updated.OrderStatusID)
	env.assertNoEvent(t)
}

func TestGetOrdersStripsStatusFilterForWorker(t *testing.T) {
	env := newTestEnv(t)
	worker := env.addUser("zavod", entities.RoleZavod)

	status := "DONE"
	_, _, err := env.service.GetOrders(context.Background(), worker, dto.OrderFilter{
		Status: &status,
		Scope:  dto.ScopeMine,
	})
	require.NoError(t, err)

	assert.Nil(t, env.orderRepo.lastFilter.Status)
	require.NotNil(t, env.orderRepo.lastScope)
	assert.Equal(t, entities.RoleZavod, env.orderRepo.lastScope.Role)
	assert.Equal(t, worker.ID, env.orderRepo.lastScope.UserID)
	assert.Equal(t, dto.ScopeMine, env.orderRepo.lastScope.Scope)
}

func TestAssignOrdersIndependentResults(t *testing.T) {
	env := newTestEnv(t)
	worker := env.addUser("zamir", entities.RoleZamir)
	rival := env.addUser("zamir-rival", entities.RoleZamir)

	free := env.addOrder(entities.StatusZamir)
	wrongStage := env.addOrder(entities.StatusZavod)
	taken := env.addOrder(entities.StatusZamir)
	env.orderRepo.orders[taken].Zamir = entities.AssignmentSlot{UserID: &rival.ID}

	results := env.service.AssignOrders(context.Background(), worker, dto.AssignOrdersDTO{
		OrderIDs: []string{free.String(), wrongStage.String(), taken.String(), "not-a-uuid"},
	})
	require.Len(t, results, 4)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.False(t, results[2].Success)
	assert.False(t, results[3].Success)

	// Успешный заказ действительно закреплён.
	assert.True(t, env.orderRepo.orders[free].Zamir.HeldBy(worker.ID))
	// Чужой слот не перезаписан.
	assert.True(t, env.orderRepo.orders[taken].Zamir.HeldBy(rival.ID))
}

func TestAssignOrdersRejectsNonWorker(t *testing.T) {
	env := newTestEnv(t)
	manager := env.addUser("manager", entities.RoleManager)
	orderID := env.addOrder(entities.StatusZamir)

	results := env.service.AssignOrders(context.Background(), manager, dto.AssignOrdersDTO{
		OrderIDs: []string{orderID.String()},
	})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
}

func TestUnassignOwnSlotOnly(t *testing.T) {
	env := newTestEnv(t)
	worker := env.addUser("ust", entities.RoleUstanovchik)
	rival := env.addUser("ust-rival", entities.RoleUstanovchik)

	mine := env.addOrder(entities.StatusUstanovchik)
	env.orderRepo.orders[mine].Ust = entities.AssignmentSlot{UserID: &worker.ID}
	foreign := env.addOrder(entities.StatusUstanovchik)
	env.orderRepo.orders[foreign].Ust = entities.AssignmentSlot{UserID: &rival.ID}

	results := env.service.UnassignOrders(context.Background(), worker, dto.AssignOrdersDTO{
		OrderIDs: []string{mine.String(), foreign.String()},
	})
	require.Len(t, results, 2)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, env.orderRepo.orders[mine].Ust.IsEmpty())
	assert.True(t, env.orderRepo.orders[foreign].Ust.HeldBy(rival.ID))
}

func TestCreateOrderStampsManager(t *testing.T) {
	env := newTestEnv(t)
	manager := env.addUser("manager", entities.RoleManager)

	order, err := env.service.CreateOrder(context.Background(), manager, dto.CreateOrderDTO{
		Name:  strPtr("Новый клиент"),
		Phone: strPtr("+992901234567"),
	})
	require.NoError(t, err)

	assert.Equal(t, entities.StatusManager, order.Status)
	require.NotNil(t, order.ManagerID)
	assert.Equal(t, manager.ID, *order.ManagerID)
	assert.Equal(t, "manager", *order.ManagerName)
}

func TestCreateOrderForbiddenForWorker(t *testing.T) {
	env := newTestEnv(t)
	worker := env.addUser("zamir", entities.RoleZamir)

	_, err := env.service.CreateOrder(context.Background(), worker, dto.CreateOrderDTO{})
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestRemoveOrderAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addUser("admin", entities.RoleAdmin)
	manager := env.addUser("manager", entities.RoleManager)
	orderID := env.addOrder(entities.StatusManager)

	err := env.service.RemoveOrder(context.Background(), manager, orderID)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))

	require.NoError(t, env.service.RemoveOrder(context.Background(), admin, orderID))
	_, err = env.orderRepo.FindOrder(context.Background(), orderID)
	assert.True(t, apperrors.IsNotFound(err))
}

func uuidPtr() *uuid.UUID {
	id := uuid.New()
	return &id
}
