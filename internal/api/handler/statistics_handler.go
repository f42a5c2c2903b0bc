package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

type StatisticsHandler struct {
	service ports.StatisticsService
}

func NewStatisticsHandler(service ports.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{service: service}
}

// Statistics handles GET /permits/statistics.
//
// @Summary      Dashboard statistics
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        timeRange  query     string  false  "day, week, month, year or all"  default(month)
// @Success      200        {object}  domain.Statistics
// @Failure      403        {object}  errorBody
// @Router       /permits/statistics [get]
func (h *StatisticsHandler) Statistics(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	stats, err := h.service.Statistics(c.Request().Context(), p, c.QueryParam("timeRange"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Recent handles GET /permits/recent.
//
// @Summary      Most recent applications
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum items"  default(10)
// @Success      200    {object}  listResponse[domain.Application]
// @Failure      403    {object}  errorBody
// @Router       /permits/recent [get]
func (h *StatisticsHandler) Recent(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	apps, err := h.service.Recent(c.Request().Context(), p, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(apps))
}
