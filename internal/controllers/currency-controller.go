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

type CurrencyController struct {
	currencyService services.CurrencyServiceInterface
	logger          *zap.Logger
}

func NewCurrencyController(currencyService services.CurrencyServiceInterface, logger *zap.Logger) *CurrencyController {
	return &CurrencyController{currencyService: currencyService, logger: logger}
}

func (c *CurrencyController) CreateCurrency(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateCurrencyOrderDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	currency, err := c.currencyService.CreateCurrency(reqCtx, actor, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, currency, "Оплата успешно создана", http.StatusCreated)
}

func (c *CurrencyController) ListByOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	orderID, err := uuid.Parse(ctx.Param("orderId"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректный идентификатор заказа"), c.logger)
	}

	currencies, err := c.currencyService.ListByOrderID(reqCtx, actor, orderID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, currencies, "Оплаты успешно получены", http.StatusOK)
}

func (c *CurrencyController) UpdateCurrency(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректный идентификатор оплаты"), c.logger)
	}

	var payload dto.UpdateCurrencyOrderDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	currency, err := c.currencyService.UpdateCurrency(reqCtx, actor, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, currency, "Оплата успешно обновлена", http.StatusOK)
}

func (c *CurrencyController) DeleteCurrency(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректный идентификатор оплаты"), c.logger)
	}

	if err := c.currencyService.DeleteCurrency(reqCtx, actor, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Оплата успешно удалена", http.StatusOK)
}
