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

type HistoryServiceInterface interface {
	GetHistories(ctx context.Context, actor authz.Actor, filter dto.HistoryFilter) ([]entities.History, uint64, error)
	FindHistory(ctx context.Context, actor authz.Actor, id uuid.UUID) (*entities.History, error)
}

type HistoryService struct {
	historyRepo repositories.HistoryRepositoryInterface
}

func NewHistoryService(historyRepo repositories.HistoryRepositoryInterface) HistoryServiceInterface {
	return &HistoryService{historyRepo: historyRepo}
}

// GetHistories — листинг архива. Рабочая роль видит только записи
// своего этапа, привилегированные — весь архив.
func (s *HistoryService) GetHistories(ctx context.Context, actor authz.Actor, filter dto.HistoryFilter) ([]entities.History, uint64, error) {
	if actor.Role.IsWorker() {
		stage := string(actor.Role.WorkStage())
		filter.StatusEquals = &stage
	} else if !actor.Role.IsPrivileged() {
		return nil, 0, apperrors.NewForbiddenError("Нет доступа к архиву")
	}
	return s.historyRepo.GetHistories(ctx, filter)
}

func (s *HistoryService) FindHistory(ctx context.Context, actor authz.Actor, id uuid.UUID) (*entities.History, error) {
	history, err := s.historyRepo.FindHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role.IsWorker() && history.Status != actor.Role.WorkStage() {
		return nil, apperrors.NewForbiddenError("Нет доступа к этой записи архива")
	}
	if !actor.Role.IsWorker() && !actor.Role.IsPrivileged() {
		return nil, apperrors.NewForbiddenError("Нет доступа к архиву")
	}
	return history, nil
}
