package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"renovation-system/internal/controllers"
	"renovation-system/internal/services"
)

func runRoomRouter(secure *echo.Group, roomService services.RoomServiceInterface, logger *zap.Logger) {
	roomCtrl := controllers.NewRoomController(roomService, logger)

	secure.POST("/rooms", roomCtrl.CreateRoom)
	secure.GET("/orders/:orderId/rooms", roomCtrl.ListByOrder)
	secure.PUT("/rooms/:id", roomCtrl.UpdateRoom)
	secure.DELETE("/rooms/:id", roomCtrl.DeleteRoom)
}
