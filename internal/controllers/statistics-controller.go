package controllers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"renovation-system/internal/dto"
	"renovation-system/internal/services"
	"renovation-system/pkg/utils"
)

type StatisticsController struct {
	statisticsService services.StatisticsServiceInterface
	logger            *zap.Logger
}

func NewStatisticsController(statisticsService services.StatisticsServiceInterface, logger *zap.Logger) *StatisticsController {
	return &StatisticsController{statisticsService: statisticsService, logger: logger}
}

func (c *StatisticsController) GetStatistics(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filter, err := parseStatisticsFilter(ctx.Request().URL.Query())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	report, err := c.statisticsService.GetStatistics(reqCtx, actor, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, report, "Сводка успешно получена", http.StatusOK)
}

func (c *StatisticsController) ExportExcel(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := actorFromContext(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filter, err := parseStatisticsFilter(ctx.Request().URL.Query())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	buf, err := c.statisticsService.ExportExcel(reqCtx, actor, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	fileName := "statistics-" + time.Now().Format("2006-01-02") + ".xlsx"
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes(),
	)
}

func parseStatisticsFilter(values url.Values) (dto.StatisticsFilter, error) {
	limit, _, page := utils.ParsePaginationParams(values)

	filter := dto.StatisticsFilter{Page: page, Limit: limit}

	if raw := values.Get("startDate"); raw != "" {
		t, err := parseQueryDate(raw)
		if err != nil {
			return dto.StatisticsFilter{}, err
		}
		filter.StartDate = t
	}
	if raw := values.Get("endDate"); raw != "" {
		t, err := parseQueryDate(raw)
		if err != nil {
			return dto.StatisticsFilter{}, err
		}
		filter.EndDate = t
	}

	return filter, nil
}
