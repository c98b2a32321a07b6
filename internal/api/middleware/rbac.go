package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/exhibit-hub/booking-api/internal/api/metrics"
	"github.com/exhibit-hub/booking-api/internal/core/domain"
)

// RequireRole admits authenticated users whose role field is one of
// allowedRoles. It must run after Guard.Authenticate.
func RequireRole(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[user.Role]; !ok {
				metrics.AuthRejectionsTotal.WithLabelValues("not_admin").Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
