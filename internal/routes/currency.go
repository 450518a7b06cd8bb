package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"renovation-system/internal/controllers"
	"renovation-system/internal/services"
)

func runCurrencyRouter(secure *echo.Group, currencyService services.CurrencyServiceInterface, logger *zap.Logger) {
	currencyCtrl := controllers.NewCurrencyController(currencyService, logger)

	secure.POST("/order-currencies", currencyCtrl.CreateCurrency)
	secure.GET("/orders/:orderId/currencies", currencyCtrl.ListByOrder)
	secure.PUT("/order-currencies/:id", currencyCtrl.UpdateCurrency)
	secure.DELETE("/order-currencies/:id", currencyCtrl.DeleteCurrency)
}
