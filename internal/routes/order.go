package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"renovation-system/internal/controllers"
	"renovation-system/internal/services"
)

func runOrderRouter(secure *echo.Group, orderService services.OrderServiceInterface, logger *zap.Logger) {
	orderCtrl := controllers.NewOrderController(orderService, logger)

	secure.GET("/orders", orderCtrl.GetOrders)
	secure.GET("/orders/:id", orderCtrl.FindOrder)
	secure.POST("/orders", orderCtrl.CreateOrder)
	secure.PATCH("/orders/:id", orderCtrl.UpdateOrder)
	secure.DELETE("/orders/:id", orderCtrl.DeleteOrder)

	secure.POST("/orders/assign", orderCtrl.AssignOrders)
	secure.POST("/orders/unassign", orderCtrl.UnassignOrders)
}
