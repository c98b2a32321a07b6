package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/exhibit-hub/booking-api/internal/api/metrics"
	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

// UserContextKey is the echo context key holding the authenticated *domain.User.
const UserContextKey = "user"

// UserLookup is the subset of the user repository the guard needs.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Guard resolves the session token of a request into a user record.
type Guard struct {
	tokens     ports.TokenCodec
	users      UserLookup
	cookieName string
}

// NewGuard returns a Guard reading the session from cookieName, falling back
// to an Authorization: Bearer header when the cookie is absent.
func NewGuard(tokens ports.TokenCodec, users UserLookup, cookieName string) *Guard {
	if cookieName == "" {
		cookieName = "token"
	}
	return &Guard{tokens: tokens, users: users, cookieName: cookieName}
}

// Authenticate admits requests carrying a valid token whose subject still
// exists, and stores that user in the context.
func (g *Guard) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := g.resolve(c)
		if err != nil {
			return err
		}
		c.Set(UserContextKey, user)
		return next(c)
	}
}

// RequireAdmin runs Authenticate and then admits only users whose role is
// exactly "admin".
func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.Authenticate(RequireRole(domain.RoleAdmin)(next))
}

func (g *Guard) resolve(c echo.Context) (*domain.User, error) {
	token := g.token(c)
	if token == "" {
		metrics.AuthRejectionsTotal.WithLabelValues("missing_token").Inc()
		return nil, fmt.Errorf("%w: no session token", domain.ErrUnauthenticated)
	}

	userID, ok := g.tokens.Verify(token)
	if !ok {
		metrics.AuthRejectionsTotal.WithLabelValues("invalid_token").Inc()
		return nil, fmt.Errorf("%w: invalid or expired token", domain.ErrUnauthenticated)
	}

	user, err := g.users.FindByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.AuthRejectionsTotal.WithLabelValues("unknown_user").Inc()
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return user, nil
}

func (g *Guard) token(c echo.Context) string {
	if cookie, err := c.Cookie(g.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// CurrentUser returns the user stored by Authenticate, or nil.
func CurrentUser(c echo.Context) *domain.User {
	u, _ := c.Get(UserContextKey).(*domain.User)
	return u
}
