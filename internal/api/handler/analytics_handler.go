package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

// AnalyticsHandler serves the admin dashboard.
type AnalyticsHandler struct {
	service ports.AnalyticsService
	now     func() time.Time
}

func NewAnalyticsHandler(service ports.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, now: time.Now}
}

// Stats handles GET /admin/stats.
//
// @Summary      Headline counters
// @Tags         admin
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  domain.Stats
// @Failure      403  {object}  map[string]string
// @Router       /admin/stats [get]
func (h *AnalyticsHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Analytics handles GET /admin/analytics.
//
// @Summary      Revenue, visitors and tickets sold
// @Tags         admin
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  ports.AnalyticsReport
// @Failure      403  {object}  map[string]string
// @Router       /admin/analytics [get]
func (h *AnalyticsHandler) Analytics(c echo.Context) error {
	report, err := h.service.Analytics(c.Request().Context(), h.now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
