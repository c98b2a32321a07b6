package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/exhibit-hub/booking-api/internal/api/middleware"
	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

// caller returns the user attached by the access guard. A missing user means
// the route was mounted without the guard; report it as unauthenticated.
func caller(c echo.Context) (*domain.User, error) {
	u := middleware.CurrentUser(c)
	if u == nil {
		return nil, domain.ErrUnauthenticated
	}
	return u, nil
}

// pageParams reads ?page= and ?limit= into a ports.Page. Absent values stay
// zero and are defaulted by the service.
func pageParams(c echo.Context) (ports.Page, error) {
	var p ports.Page
	err := echo.QueryParamsBinder(c).
		Int("page", &p.Number).
		Int("limit", &p.Size).
		BindError()
	if err != nil {
		return ports.Page{}, invalidInput("page and limit must be integers")
	}
	return p, nil
}
