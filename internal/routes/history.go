package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"renovation-system/internal/controllers"
	"renovation-system/internal/services"
)

func runHistoryRouter(secure *echo.Group, historyService services.HistoryServiceInterface, logger *zap.Logger) {
	historyCtrl := controllers.NewHistoryController(historyService, logger)

	secure.GET("/histories", historyCtrl.GetHistories)
	secure.GET("/histories/:id", historyCtrl.FindHistory)
}
