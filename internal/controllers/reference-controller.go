package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"renovation-system/internal/dto"
	"renovation-system/internal/services"
	apperrors "renovation-system/pkg/errors"
	"renovation-system/pkg/utils"
)

// ReferenceController — единый CRUD-контроллер справочников.
// label подставляется в сообщения ответов.
type ReferenceController[T any] struct {
	service services.ReferenceServiceInterface[T]
	label   string
	logger  *zap.Logger
}

func NewReferenceController[T any](service services.ReferenceServiceInterface[T], label string, logger *zap.Logger) *ReferenceController[T] {
	return &ReferenceController[T]{service: service, label: label, logger: logger}
}

func (c *ReferenceController[T]) Create(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateReferenceDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	item, err := c.service.Create(reqCtx, actor, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, item, c.label+": запись создана", http.StatusCreated)
}

func (c *ReferenceController[T]) List(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	values := ctx.Request().URL.Query()
	limit, offset, page := utils.ParsePaginationParams(values)

	items, total, err := c.service.List(reqCtx, values.Get("search"), limit, offset)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessListResponse(ctx, items, c.label+": список получен", total, page, limit)
}

func (c *ReferenceController[T]) Find(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректный идентификатор"), c.logger)
	}

	item, err := c.service.Find(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, item, c.label+": запись найдена", http.StatusOK)
}

func (c *ReferenceController[T]) Update(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректный идентификатор"), c.logger)
	}

	var payload dto.UpdateReferenceDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	item, err := c.service.Update(reqCtx, actor, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, item, c.label+": запись обновлена", http.StatusOK)
}

func (c *ReferenceController[T]) Delete(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректный идентификатор"), c.logger)
	}

	if err := c.service.Delete(reqCtx, actor, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, c.label+": запись удалена", http.StatusOK)
}
