package services

import (
	"context"

	"github.com/google/uuid"

	"renovation-system/internal/authz"
	"renovation-system/internal/dto"
	"renovation-system/internal/repositories"
	apperrors "renovation-system/pkg/errors"
)

type ReferenceServiceInterface[T any] interface {
	Create(ctx context.Context, actor authz.Actor, payload dto.CreateReferenceDTO) (*T, error)
	Find(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, search string, limit, offset uint64) ([]T, uint64, error)
	Update(ctx context.Context, actor authz.Actor, id uuid.UUID, payload dto.UpdateReferenceDTO) (*T, error)
	Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

// ReferenceService — общий сервис справочников. Чтение открыто всем
// аутентифицированным, запись — привилегированным ролям.
type ReferenceService[T any] struct {
	repo repositories.ReferenceRepositoryInterface[T]
	make func(id uuid.UUID, name string) T
	name func(*T, string)
}

func NewReferenceService[T any](
	repo repositories.ReferenceRepositoryInterface[T],
	makeFn func(id uuid.UUID, name string) T,
	setName func(*T, string),
) ReferenceServiceInterface[T] {
	return &ReferenceService[T]{repo: repo, make: makeFn, name: setName}
}

func (s *ReferenceService[T]) Create(ctx context.Context, actor authz.Actor, payload dto.CreateReferenceDTO) (*T, error) {
	if !actor.Role.IsPrivileged() {
		return nil, apperrors.NewForbiddenError("Изменение справочников доступно только администратору и менеджеру")
	}
	item := s.make(uuid.New(), payload.Name)
	if err := s.repo.Create(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *ReferenceService[T]) Find(ctx context.Context, id uuid.UUID) (*T, error) {
	return s.repo.Find(ctx, id)
}

func (s *ReferenceService[T]) List(ctx context.Context, search string, limit, offset uint64) ([]T, uint64, error) {
	return s.repo.List(ctx, search, limit, offset)
}

func (s *ReferenceService[T]) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, payload dto.UpdateReferenceDTO) (*T, error) {
	if !actor.Role.IsPrivileged() {
		return nil, apperrors.NewForbiddenError("Изменение справочников доступно только администратору и менеджеру")
	}
	item, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.name(item, payload.Name)
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ReferenceService[T]) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if !actor.Role.IsPrivileged() {
		return apperrors.NewForbiddenError("Изменение справочников доступно только администратору и менеджеру")
	}
	return s.repo.Delete(ctx, id)
}
