package controllers

import (
	"github.com/labstack/echo/v4"

	"renovation-system/internal/authz"
	"renovation-system/internal/entities"
	"renovation-system/pkg/utils"
)

// actorFromContext собирает аутентифицированного вызывающего из
// значений, положенных в контекст AuthMiddleware.
func actorFromContext(ctx echo.Context) (authz.Actor, error) {
	reqCtx := ctx.Request().Context()

	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return authz.Actor{}, err
	}
	rawRole, err := utils.GetUserRoleFromCtx(reqCtx)
	if err != nil {
		return authz.Actor{}, err
	}
	role, err := entities.ParseRole(rawRole)
	if err != nil {
		return authz.Actor{}, err
	}

	return authz.Actor{ID: userID, Role: role}, nil
}
