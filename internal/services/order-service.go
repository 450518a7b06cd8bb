package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"renovation-system/internal/authz"
	"renovation-system/internal/dto"
	"renovation-system/internal/entities"
	"renovation-system/internal/events"
	"renovation-system/internal/repositories"
	"renovation-system/pkg/eventbus"
	apperrors "renovation-system/pkg/errors"
)

// UserResolver отдаёт снимок пользователя для денормализации в слоты
// назначения и атрибуцию менеджера.
type UserResolver interface {
	ResolveSnapshot(ctx context.Context, id uuid.UUID) (*entities.User, error)
}

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, actor authz.Actor, payload dto.CreateOrderDTO) (*entities.Order, error)
	FindOrder(ctx context.Context, actor authz.Actor, id uuid.UUID) (*entities.Order, error)
	GetOrders(ctx context.Context, actor authz.Actor, filter dto.OrderFilter) ([]entities.Order, uint64, error)
	UpdateOrder(ctx context.Context, actor authz.Actor, id uuid.UUID, patch dto.UpdateOrderDTO) (*entities.Order, error)
	RemoveOrder(ctx context.Context, actor authz.Actor, id uuid.UUID) error
	AssignOrders(ctx context.Context, actor authz.Actor, payload dto.AssignOrdersDTO) []dto.BatchResult
	UnassignOrders(ctx context.Context, actor authz.Actor, payload dto.AssignOrdersDTO) []dto.BatchResult
}

type OrderService struct {
	orderRepo    repositories.OrderRepositoryInterface
	historyRepo  repositories.HistoryRepositoryInterface
	roomRepo     repositories.RoomRepositoryInterface
	currencyRepo repositories.CurrencyRepositoryInterface
	txManager    repositories.TxManagerInterface
	users        UserResolver
	bus          *eventbus.Bus
	logger       *zap.Logger
}

func NewOrderService(
	orderRepo repositories.OrderRepositoryInterface,
	historyRepo repositories.HistoryRepositoryInterface,
	roomRepo repositories.RoomRepositoryInterface,
	currencyRepo repositories.CurrencyRepositoryInterface,
	txManager repositories.TxManagerInterface,
	users UserResolver,
	bus *eventbus.Bus,
	logger *zap.Logger,
) OrderServiceInterface {
	return &OrderService{
		orderRepo:    orderRepo,
		historyRepo:  historyRepo,
		roomRepo:     roomRepo,
		currencyRepo: currencyRepo,
		txManager:    txManager,
		users:        users,
		bus:          bus,
		logger:       logger,
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, actor authz.Actor, payload dto.CreateOrderDTO) (*entities.Order, error) {
	if !actor.Role.IsPrivileged() {
		return nil, apperrors.NewForbiddenError("Создание заказов доступно только администратору и менеджеру")
	}

	manager, err := s.users.ResolveSnapshot(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	order := &entities.Order{
		ID:        uuid.New(),
		Name:      payload.Name,
		Phone:     payload.Phone,
		Comment:   payload.Comment,
		Longitude: payload.Longitude,
		Latitude:  payload.Latitude,

		Total:      payload.Total,
		PrePayment: payload.PrePayment,
		DueAmount:  payload.DueAmount,

		Status: entities.StatusManager,

		ManagerID:    &manager.ID,
		ManagerName:  manager.Name,
		ManagerPhone: &manager.Phone,
	}

	if payload.Status != nil {
		status, err := entities.ParseStatus(*payload.Status)
		if err != nil {
			return nil, err
		}
		order.Status = status
	}
	if order.RegionID, err = parseUUIDPtr(payload.RegionID); err != nil {
		return nil, err
	}
	if order.SocialID, err = parseUUIDPtr(payload.SocialID); err != nil {
		return nil, err
	}
	if order.OrderStatusID, err = parseUUIDPtr(payload.OrderStatusID); err != nil {
		return nil, err
	}
	if order.WorkerArrivalDate, err = parseTimePtr(payload.WorkerArrivalDate); err != nil {
		return nil, err
	}
	if order.EndDateJob, err = parseTimePtr(payload.EndDateJob); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.orderRepo.CreateOrderInTx(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	return s.orderRepo.FindOrder(ctx, order.ID)
}

func (s *OrderService) FindOrder(ctx context.Context, actor authz.Actor, id uuid.UUID) (*entities.Order, error) {
	order, err := s.orderRepo.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanView(order, actor) {
		return nil, apperrors.NewForbiddenError("Нет доступа к этому заказу")
	}
	return order, nil
}

func (s *OrderService) GetOrders(ctx context.Context, actor authz.Actor, filter dto.OrderFilter) ([]entities.Order, uint64, error) {
	var scope *repositories.SlotScope

	if actor.Role.IsWorker() {
		scope = &repositories.SlotScope{
			Role:   actor.Role,
			UserID: actor.ID,
			Scope:  filter.Scope,
		}
	}
	if !authz.CanUseStatusFilter(actor.Role) {
		filter.Status = nil
	}

	return s.orderRepo.GetOrders(ctx, filter, scope)
}

// UpdateOrder — движок жизненного цикла. Один вызов атомарно:
// проверяет право на заказ, занимает слот рабочей роли при первой
// правке, применяет разрешённые роли поля патча, ставит одноразовые
// платёжные отметки, ведёт архивный снимок и по итогам перехода
// публикует событие для уведомлений — уже после коммита.
func (s *OrderService) UpdateOrder(ctx context.Context, actor authz.Actor, id uuid.UUID, patch dto.UpdateOrderDTO) (*entities.Order, error) {
	var targetStatus *entities.Status
	if patch.Status != nil {
		status, err := entities.ParseStatus(*patch.Status)
		if err != nil {
			return nil, err
		}
		targetStatus = &status
	}

	var transition orderTransition

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, err := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return apperrors.NewConflictError("Заказ уже завершён и не может быть изменён")
		}
		if !authz.CanMutate(order, actor) {
			return apperrors.NewForbiddenError("Нет доступа к этому заказу")
		}

		// Первая правка рабочего закрепляет заказ за ним.
		if actor.Role.IsWorker() {
			slot := order.SlotFor(actor.Role)
			if slot.IsEmpty() {
				worker, err := s.users.ResolveSnapshot(ctx, actor.ID)
				if err != nil {
					return err
				}
				claimed := entities.AssignmentSlot{
					UserID: &worker.ID,
					Name:   worker.Name,
					Phone:  &worker.Phone,
				}
				if err := s.orderRepo.ClaimSlotInTx(ctx, tx, order.ID, actor.Role, claimed); err != nil {
					return err
				}
				*slot = claimed
			}
		}

		// Архивный снимок фиксирует заказ в состоянии до правки.
		prev := *order
		if err := applyPatch(order, patch, authz.AllowedFields(actor.Role)); err != nil {
			return err
		}
		if targetStatus != nil {
			order.Status = *targetStatus
		}

		// Возврат на замер сбрасывает отображаемый тег: он имеет
		// смысл только на этапе менеджера.
		if order.Status == entities.StatusZamir {
			order.OrderStatusID = nil
		}

		now := time.Now()
		if order.Status == entities.StatusZavod && order.GetPrePaymentDate == nil {
			order.GetPrePaymentDate = &now
		}
		if order.Status == entities.StatusDone && order.GetAllPaymentDate == nil {
			order.GetAllPaymentDate = &now
		}

		if qualifiesForSnapshot(order.Status) {
			if _, err := s.historyRepo.CreateIfAbsentInTx(ctx, tx, buildSnapshot(&prev)); err != nil {
				return err
			}
		}
		if order.Status == entities.StatusDone {
			if err := s.historyRepo.FinalizeInTx(ctx, tx, order.ID, buildAttribution(order)); err != nil {
				return err
			}
		}

		if err := s.orderRepo.UpdateOrderInTx(ctx, tx, order); err != nil {
			return err
		}

		transition = orderTransition{from: prev.Status, to: order.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.orderRepo.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishTransition(ctx, transition, *updated)
	return updated, nil
}

func (s *OrderService) RemoveOrder(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if actor.Role != entities.RoleAdmin {
		return apperrors.NewForbiddenError("Удаление заказов доступно только администратору")
	}

	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, id); err != nil {
			return err
		}
		if err := s.roomRepo.DeleteByOrderInTx(ctx, tx, id); err != nil {
			return err
		}
		if err := s.currencyRepo.DeleteByOrderInTx(ctx, tx, id); err != nil {
			return err
		}
		if err := s.historyRepo.DeleteByOrderInTx(ctx, tx, id); err != nil {
			return err
		}
		return s.orderRepo.DeleteOrderInTx(ctx, tx, id)
	})
}

// AssignOrders закрепляет пачку заказов за вызывающим рабочим.
// Каждый заказ обрабатывается в собственной транзакции: неудача
// одного не откатывает остальные.
func (s *OrderService) AssignOrders(ctx context.Context, actor authz.Actor, payload dto.AssignOrdersDTO) []dto.BatchResult {
	results := make([]dto.BatchResult, 0, len(payload.OrderIDs))

	if !actor.Role.IsWorker() {
		for _, raw := range payload.OrderIDs {
			results = append(results, dto.BatchResult{OrderID: raw, Error: "назначение доступно только рабочим ролям"})
		}
		return results
	}

	worker, err := s.users.ResolveSnapshot(ctx, actor.ID)
	if err != nil {
		for _, raw := range payload.OrderIDs {
			results = append(results, dto.BatchResult{OrderID: raw, Error: err.Error()})
		}
		return results
	}
	slot := entities.AssignmentSlot{
		UserID: &worker.ID,
		Name:   worker.Name,
		Phone:  &worker.Phone,
	}

	for _, raw := range payload.OrderIDs {
		result := dto.BatchResult{OrderID: raw}

		orderID, err := uuid.Parse(raw)
		if err != nil {
			result.Error = "некорректный идентификатор заказа"
			results = append(results, result)
			continue
		}

		err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			order, err := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, orderID)
			if err != nil {
				return err
			}
			if order.Status.IsTerminal() {
				return apperrors.NewConflictError("Заказ уже завершён")
			}
			if order.Status != actor.Role.WorkStage() {
				return apperrors.NewConflictError("Заказ находится на другом этапе")
			}
			return s.orderRepo.ClaimSlotInTx(ctx, tx, orderID, actor.Role, slot)
		})
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Success = true
		}
		results = append(results, result)
	}

	return results
}

// UnassignOrders освобождает слоты пачки заказов. Рабочий снимает
// только собственные назначения; администратор и менеджер — любые.
func (s *OrderService) UnassignOrders(ctx context.Context, actor authz.Actor, payload dto.AssignOrdersDTO) []dto.BatchResult {
	results := make([]dto.BatchResult, 0, len(payload.OrderIDs))

	role := actor.Role
	for _, raw := range payload.OrderIDs {
		result := dto.BatchResult{OrderID: raw}

		orderID, err := uuid.Parse(raw)
		if err != nil {
			result.Error = "некорректный идентификатор заказа"
			results = append(results, result)
			continue
		}

		err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			order, err := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, orderID)
			if err != nil {
				return err
			}

			clearRole := role
			if role.IsPrivileged() {
				// Привилегированная роль освобождает слот этапа заказа.
				clearRole = roleForStage(order.Status)
				if clearRole == "" {
					return apperrors.NewConflictError("На этом этапе нет слота назначения")
				}
			} else {
				slot := order.SlotFor(role)
				if slot == nil || !slot.HeldBy(actor.ID) {
					return apperrors.NewForbiddenError("Заказ не закреплён за вами")
				}
			}
			return s.orderRepo.ClearSlotInTx(ctx, tx, orderID, clearRole)
		})
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Success = true
		}
		results = append(results, result)
	}

	return results
}

type orderTransition struct {
	from entities.Status
	to   entities.Status
}

// publishTransition переводит итог перехода в событие для уведомлений.
// Вызывается строго после коммита: несостоявшиеся изменения не
// анонсируются.
func (s *OrderService) publishTransition(ctx context.Context, tr orderTransition, order entities.Order) {
	switch {
	case tr.from == entities.StatusZamir && tr.to == entities.StatusZavod:
		s.bus.Publish(ctx, events.OrderDispatched{Order: order})
	case tr.to == entities.StatusDone:
		s.bus.Publish(ctx, events.OrderCompleted{Order: order})
	case tr.from == tr.to:
		// Правка без смены этапа анонсируется как изменение на любом
		// нетерминальном этапе.
		s.bus.Publish(ctx, events.OrderChanged{Order: order})
	}
}

func qualifiesForSnapshot(status entities.Status) bool {
	return status == entities.StatusZavod ||
		status == entities.StatusUstanovchik ||
		status == entities.StatusDone
}

func buildSnapshot(order *entities.Order) *entities.History {
	return &entities.History{
		ID:      uuid.New(),
		OrderID: order.ID,

		Name:      order.Name,
		Phone:     order.Phone,
		Comment:   order.Comment,
		Longitude: order.Longitude,
		Latitude:  order.Latitude,

		RegionID: order.RegionID,
		SocialID: order.SocialID,

		WorkerArrivalDate: order.WorkerArrivalDate,
		EndDateJob:        order.EndDateJob,

		Total:      order.Total,
		PrePayment: order.PrePayment,
		DueAmount:  order.DueAmount,

		Status: order.Status,
	}
}

func buildAttribution(order *entities.Order) entities.HistoryAttribution {
	return entities.HistoryAttribution{
		ManagerName:  order.ManagerName,
		ManagerPhone: order.ManagerPhone,
		ZamirName:    order.Zamir.Name,
		ZamirPhone:   order.Zamir.Phone,
		UstName:      order.Ust.Name,
		UstPhone:     order.Ust.Phone,
		ZavodName:    order.Zavod.Name,
		ZavodPhone:   order.Zavod.Phone,

		GetPrePaymentDate: order.GetPrePaymentDate,
		GetAllPaymentDate: order.GetAllPaymentDate,
	}
}

func roleForStage(status entities.Status) entities.Role {
	switch status {
	case entities.StatusZamir:
		return entities.RoleZamir
	case entities.StatusZavod:
		return entities.RoleZavod
	case entities.StatusUstanovchik:
		return entities.RoleUstanovchik
	}
	return ""
}

// applyPatch применяет к заказу поля патча, пропущенные белым
// списком роли. Поле вне списка молча игнорируется.
func applyPatch(order *entities.Order, patch dto.UpdateOrderDTO, allowed map[string]bool) error {
	if allowed[authz.FieldName] && patch.Name != nil {
		order.Name = patch.Name
	}
	if allowed[authz.FieldPhone] && patch.Phone != nil {
		order.Phone = patch.Phone
	}
	if allowed[authz.FieldComment] && patch.Comment != nil {
		order.Comment = patch.Comment
	}
	if allowed[authz.FieldLongitude] && patch.Longitude != nil {
		order.Longitude = patch.Longitude
	}
	if allowed[authz.FieldLatitude] && patch.Latitude != nil {
		order.Latitude = patch.Latitude
	}
	if allowed[authz.FieldRegionID] && patch.RegionID != nil {
		id, err := parseUUIDPtr(patch.RegionID)
		if err != nil {
			return err
		}
		order.RegionID = id
	}
	if allowed[authz.FieldSocialID] && patch.SocialID != nil {
		id, err := parseUUIDPtr(patch.SocialID)
		if err != nil {
			return err
		}
		order.SocialID = id
	}
	if allowed[authz.FieldOrderStatusID] && patch.OrderStatusID != nil {
		id, err := parseUUIDPtr(patch.OrderStatusID)
		if err != nil {
			return err
		}
		order.OrderStatusID = id
	}
	if allowed[authz.FieldWorkerArrivalDate] && patch.WorkerArrivalDate != nil {
		t, err := parseTimePtr(patch.WorkerArrivalDate)
		if err != nil {
			return err
		}
		order.WorkerArrivalDate = t
	}
	if allowed[authz.FieldEndDateJob] && patch.EndDateJob != nil {
		t, err := parseTimePtr(patch.EndDateJob)
		if err != nil {
			return err
		}
		order.EndDateJob = t
	}
	if allowed[authz.FieldTotal] && patch.Total != nil {
		order.Total = patch.Total
	}
	if allowed[authz.FieldPrePayment] && patch.PrePayment != nil {
		order.PrePayment = patch.PrePayment
	}
	if allowed[authz.FieldDueAmount] && patch.DueAmount != nil {
		order.DueAmount = patch.DueAmount
	}
	return nil
}

func parseUUIDPtr(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperrors.NewValidationError("некорректный идентификатор: %q", *raw)
	}
	return &id, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseTimePtr(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.NewValidationError("некорректная дата: %q", *raw)
}
