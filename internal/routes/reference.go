package routes

import (
	"github.com/labstack/echo/v4"

	"renovation-system/internal/controllers"
)

func runReferenceRouter[T any](secure *echo.Group, prefix string, ctrl *controllers.ReferenceController[T]) {
	secure.GET("/"+prefix, ctrl.List)
	secure.GET("/"+prefix+"/:id", ctrl.Find)
	secure.POST("/"+prefix, ctrl.Create)
	secure.PUT("/"+prefix+"/:id", ctrl.Update)
	secure.DELETE("/"+prefix+"/:id", ctrl.Delete)
}
