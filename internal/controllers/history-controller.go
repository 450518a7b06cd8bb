package controllers

import (
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"renovation-system/internal/dto"
	"renovation-system/internal/services"
	apperrors "renovation-system/pkg/errors"
	"renovation-system/pkg/utils"
)

type HistoryController struct {
	historyService services.HistoryServiceInterface
	logger         *zap.Logger
}

func NewHistoryController(historyService services.HistoryServiceInterface, logger *zap.Logger) *HistoryController {
	return &HistoryController{historyService: historyService, logger: logger}
}

func (c *HistoryController) GetHistories(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filter, err := parseHistoryFilter(ctx.Request().URL.Query())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	histories, total, err := c.historyService.GetHistories(reqCtx, actor, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessListResponse(ctx, histories, "Архив успешно получен", total, filter.Page, filter.Limit)
}

func (c *HistoryController) FindHistory(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректный идентификатор записи архива"), c.logger)
	}

	history, err := c.historyService.FindHistory(reqCtx, actor, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, history, "Запись архива успешно найдена", http.StatusOK)
}

func parseHistoryFilter(values url.Values) (dto.HistoryFilter, error) {
	limit, _, page := utils.ParsePaginationParams(values)

	filter := dto.HistoryFilter{
		Page:       page,
		Limit:      limit,
		Search:     values.Get("search"),
		RegionName: values.Get("region"),
		SocialName: values.Get("social"),
	}

	if raw := values.Get("startDate"); raw != "" {
		t, err := parseQueryDate(raw)
		if err != nil {
			return dto.HistoryFilter{}, err
		}
		filter.StartDate = t
	}
	if raw := values.Get("endDate"); raw != "" {
		t, err := parseQueryDate(raw)
		if err != nil {
			return dto.HistoryFilter{}, err
		}
		filter.EndDate = t
	}

	return filter, nil
}
