package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

// UserHandler exposes the admin user management routes.
type UserHandler struct {
	service ports.UserAdminService
}

func NewUserHandler(service ports.UserAdminService) *UserHandler {
	return &UserHandler{service: service}
}

type userPageResponse struct {
	Users []*domain.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type userResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// List handles GET /admin/users.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     CookieAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Page size (default 50, max 100)"
// @Success      200    {object}  userPageResponse
// @Failure      403    {object}  map[string]string
// @Router       /admin/users [get]
func (h *UserHandler) List(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	page, err := pageParams(c)
	if err != nil {
		return err
	}

	out, err := h.service.ListUsers(c.Request().Context(), user, page)
	if err != nil {
		return err
	}
	users := out.Items
	if users == nil {
		users = []*domain.User{}
	}
	return c.JSON(http.StatusOK, userPageResponse{Users: users, Total: out.Total, Page: out.Page, Limit: out.Limit})
}

// Promote handles PUT /admin/users/:id/promote.
//
// @Summary      Promote a user to admin
// @Tags         admin
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/users/{id}/promote [put]
func (h *UserHandler) Promote(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}

	promoted, err := h.service.PromoteToAdmin(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{Message: "User updated to admin successfully", User: promoted})
}

// Delete handles DELETE /admin/users/:id.
//
// @Summary      Delete a user account
// @Tags         admin
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteAccount(c.Request().Context(), user, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}
