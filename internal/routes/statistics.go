package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"renovation-system/internal/controllers"
	"renovation-system/internal/services"
)

func runStatisticsRouter(secure *echo.Group, statisticsService services.StatisticsServiceInterface, logger *zap.Logger) {
	statisticsCtrl := controllers.NewStatisticsController(statisticsService, logger)

	secure.GET("/statistics", statisticsCtrl.GetStatistics)
	secure.GET("/statistics/export", statisticsCtrl.ExportExcel)
}
