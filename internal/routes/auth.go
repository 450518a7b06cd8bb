package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"renovation-system/internal/controllers"
	"renovation-system/internal/services"
)

func runAuthRouter(public *echo.Group, secure *echo.Group, authService services.AuthServiceInterface, logger *zap.Logger) {
	authCtrl := controllers.NewAuthController(authService, logger)

	public.POST("/auth/login", authCtrl.Login)

	secure.POST("/auth/register", authCtrl.Register)
	secure.GET("/users", authCtrl.GetUsers)
	secure.GET("/users/:id", authCtrl.FindUser)
	secure.PUT("/users/:id", authCtrl.UpdateUser)
	secure.DELETE("/users/:id", authCtrl.DeleteUser)
}
