package controllers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"renovation-system/internal/dto"
	"renovation-system/internal/services"
	apperrors "renovation-system/pkg/errors"
	"renovation-system/pkg/utils"
)

type OrderController struct {
	orderService services.OrderServiceInterface
	logger       *zap.Logger
}

func NewOrderController(orderService services.OrderServiceInterface, logger *zap.Logger) *OrderController {
	return &OrderController{orderService: orderService, logger: logger}
}

func (c *OrderController) CreateOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateOrderDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	order, err := c.orderService.CreateOrder(reqCtx, actor, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, order, "Заказ успешно создан", http.StatusCreated)
}

func (c *OrderController) GetOrders(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filter, err := parseOrderFilter(ctx.Request().URL.Query())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	orders, total, err := c.orderService.GetOrders(reqCtx, actor, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessListResponse(ctx, orders, "Список заказов успешно получен", total, filter.Page, filter.Limit)
}

func (c *OrderController) FindOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректный идентификатор заказа"), c.logger)
	}

	order, err := c.orderService.FindOrder(reqCtx, actor, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, order, "Заказ успешно найден", http.StatusOK)
}

func (c *OrderController) UpdateOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректный идентификатор заказа"), c.logger)
	}

	var patch dto.UpdateOrderDTO
	if err := ctx.Bind(&patch); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&patch); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	order, err := c.orderService.UpdateOrder(reqCtx, actor, id, patch)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, order, "Заказ успешно обновлён", http.StatusOK)
}

func (c *OrderController) DeleteOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректный идентификатор заказа"), c.logger)
	}

	if err := c.orderService.RemoveOrder(reqCtx, actor, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Заказ успешно удалён", http.StatusOK)
}

func (c *OrderController) AssignOrders(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.AssignOrdersDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	results := c.orderService.AssignOrders(reqCtx, actor, payload)
	return utils.SuccessResponse(ctx, results, "Назначение обработано", http.StatusOK)
}

func (c *OrderController) UnassignOrders(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.AssignOrdersDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	results := c.orderService.UnassignOrders(reqCtx, actor, payload)
	return utils.SuccessResponse(ctx, results, "Снятие назначений обработано", http.StatusOK)
}

// parseOrderFilter разбирает query-параметры листинга заказов.
func parseOrderFilter(values url.Values) (dto.OrderFilter, error) {
	limit, _, page := utils.ParsePaginationParams(values)

	filter := dto.OrderFilter{
		Page:   page,
		Limit:  limit,
		Search: values.Get("search"),
		Scope:  dto.ScopePool,
	}

	if values.Get("scope") == string(dto.ScopeMine) {
		filter.Scope = dto.ScopeMine
	}
	if raw := values.Get("status"); raw != "" {
		filter.Status = &raw
	}

	for param, target := range map[string]**uuid.UUID{
		"orderStatusId": &filter.OrderStatusID,
		"regionId":      &filter.RegionID,
		"socialId":      &filter.SocialID,
	} {
		if raw := values.Get(param); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return dto.OrderFilter{}, apperrors.NewValidationError("некорректный параметр %s", param)
			}
			*target = &id
		}
	}

	for param, target := range map[string]**time.Time{
		"startDate":         &filter.StartDate,
		"endDate":           &filter.EndDate,
		"endDateJob":        &filter.EndDateJob,
		"workerArrivalDate": &filter.WorkerArrivalDate,
	} {
		if raw := values.Get(param); raw != "" {
			t, err := parseQueryDate(raw)
			if err != nil {
				return dto.OrderFilter{}, apperrors.NewValidationError("некорректный параметр %s", param)
			}
			*target = t
		}
	}

	return filter, nil
}

func parseQueryDate(raw string) (*time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.NewValidationError("некорректная дата: %q", raw)
}
