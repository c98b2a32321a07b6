package handler

import (
	"strings"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
)

// registerRequest accepts the username under any of the names clients send.
type registerRequest struct {
	UserName    string `json:"userName"`
	UsernameAlt string `json:"username"`
	NameAlt     string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// username resolves the alias fields: userName, then username, then name.
func (r registerRequest) username() string {
	return firstNonEmpty(r.UserName, r.UsernameAlt, r.NameAlt)
}

// registerPayload is the canonical shape validated after alias resolution.
type registerPayload struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// updateProfileRequest carries a partial profile change.
type updateProfileRequest struct {
	UserName    string `json:"userName"`
	UsernameAlt string `json:"username"`
	NameAlt     string `json:"name"`
	Email       string `json:"email"    validate:"omitempty,email"`
	Password    string `json:"password"`
}

func (r updateProfileRequest) username() string {
	return firstNonEmpty(r.UserName, r.UsernameAlt, r.NameAlt)
}

type authResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	User    *domain.User `json:"user,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
