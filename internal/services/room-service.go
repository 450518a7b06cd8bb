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

type RoomServiceInterface interface {
	CreateRoom(ctx context.Context, actor authz.Actor, payload dto.CreateRoomMeasurementDTO) (*entities.RoomMeasurement, error)
	ListByOrderID(ctx context.Context, actor authz.Actor, orderID uuid.UUID) ([]entities.RoomMeasurement, error)
	UpdateRoom(ctx context.Context, actor authz.Actor, id uuid.UUID, payload dto.UpdateRoomMeasurementDTO) (*entities.RoomMeasurement, error)
	DeleteRoom(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

type RoomService struct {
	roomRepo  repositories.RoomRepositoryInterface
	orderRepo repositories.OrderRepositoryInterface
}

func NewRoomService(roomRepo repositories.RoomRepositoryInterface, orderRepo repositories.OrderRepositoryInterface) RoomServiceInterface {
	return &RoomService{roomRepo: roomRepo, orderRepo: orderRepo}
}

// requireOrderAccess проверяет, что вызывающий вправе менять заказ,
// которому принадлежит замер.
func (s *RoomService) requireOrderAccess(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*entities.Order, error) {
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

func (s *RoomService) CreateRoom(ctx context.Context, actor authz.Actor, payload dto.CreateRoomMeasurementDTO) (*entities.RoomMeasurement, error) {
	orderID, err := uuid.Parse(payload.OrderID)
	if err != nil {
		return nil, apperrors.NewValidationError("некорректный идентификатор заказа: %q", payload.OrderID)
	}
	if _, err := s.requireOrderAccess(ctx, actor, orderID); err != nil {
		return nil, err
	}

	room := &entities.RoomMeasurement{
		ID:      uuid.New(),
		OrderID: orderID,
		Name:    payload.Name,
		Key:     payload.Key,
		Value:   payload.Value,
	}
	if err := s.roomRepo.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *RoomService) ListByOrderID(ctx context.Context, actor authz.Actor, orderID uuid.UUID) ([]entities.RoomMeasurement, error) {
	order, err := s.orderRepo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !authz.CanView(order, actor) {
		return nil, apperrors.NewForbiddenError("Нет доступа к этому заказу")
	}
	return s.roomRepo.ListByOrderID(ctx, orderID)
}

func (s *RoomService) UpdateRoom(ctx context.Context, actor authz.Actor, id uuid.UUID, payload dto.UpdateRoomMeasurementDTO) (*entities.RoomMeasurement, error) {
	room, err := s.roomRepo.FindRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireOrderAccess(ctx, actor, room.OrderID); err != nil {
		return nil, err
	}

	if payload.Name != nil {
		room.Name = payload.Name
	}
	if payload.Key != nil {
		room.Key = payload.Key
	}
	if payload.Value != nil {
		room.Value = payload.Value
	}
	if err := s.roomRepo.UpdateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *RoomService) DeleteRoom(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	room, err := s.roomRepo.FindRoom(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.requireOrderAccess(ctx, actor, room.OrderID); err != nil {
		return err
	}
	return s.roomRepo.DeleteRoom(ctx, id)
}
