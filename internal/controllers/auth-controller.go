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

type AuthController struct {
	authService services.AuthServiceInterface
	logger      *zap.Logger
}

func NewAuthController(authService services.AuthServiceInterface, logger *zap.Logger) *AuthController {
	return &AuthController{authService: authService, logger: logger}
}

func (c *AuthController) Login(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.LoginDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	token, err := c.authService.Login(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, token, "Авторизация успешна", http.StatusOK)
}

func (c *AuthController) Register(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.RegisterDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	user, err := c.authService.Register(reqCtx, actor, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, user, "Пользователь успешно создан", http.StatusCreated)
}

func (c *AuthController) GetUsers(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	values := ctx.Request().URL.Query()
	limit, offset, page := utils.ParsePaginationParams(values)

	users, total, err := c.authService.GetUsers(reqCtx, actor, values.Get("search"), limit, offset)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessListResponse(ctx, users, "Список пользователей успешно получен", total, page, limit)
}

func (c *AuthController) FindUser(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректный идентификатор пользователя"), c.logger)
	}

	user, err := c.authService.FindUser(reqCtx, actor, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, user, "Пользователь успешно найден", http.StatusOK)
}

func (c *AuthController) UpdateUser(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректный идентификатор пользователя"), c.logger)
	}

	var payload dto.UpdateUserDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	user, err := c.authService.UpdateUser(reqCtx, actor, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, user, "Пользователь успешно обновлён", http.StatusOK)
}

func (c *AuthController) DeleteUser(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("некорректный идентификатор пользователя"), c.logger)
	}

	if err := c.authService.DeleteUser(reqCtx, actor, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Пользователь успешно удалён", http.StatusOK)
}
