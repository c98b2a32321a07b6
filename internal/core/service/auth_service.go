package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/exhibit-hub/booking-api/internal/api/metrics"
	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

// AuthService implements registration, login and profile updates.
type AuthService struct {
	repo   ports.UserRepository
	tokens ports.TokenCodec
	log    zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenCodec, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, log: log}
}

// Register creates a user with the "user" role and returns it together with a
// fresh session token.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, string, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, "", fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidInput)
	}

	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC(),
		Tickets:      []domain.TicketSummary{},
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, token, nil
}

// Login checks the password of the user owning email and issues a new token.
// Earlier tokens stay valid until they expire.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("unknown_user").Inc()
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return token, user, nil
}

// UpdateProfile applies the non-empty fields of in to the caller's record.
func (s *AuthService) UpdateProfile(ctx context.Context, caller *domain.User, in ports.UpdateProfileInput) (*domain.User, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.repo.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)

	if username != "" && username != user.Username {
		if err := s.ensureUnused(ctx, ports.UserFilter{Username: username}); err != nil {
			return nil, err
		}
		user.Username = username
	}
	if email != "" && email != user.Email {
		if err := s.ensureUnused(ctx, ports.UserFilter{Email: email}); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, username, email string) error {
	if err := s.ensureUnused(ctx, ports.UserFilter{Username: username}); err != nil {
		return err
	}
	return s.ensureUnused(ctx, ports.UserFilter{Email: email})
}

func (s *AuthService) ensureUnused(ctx context.Context, filter ports.UserFilter) error {
	n, err := s.repo.Count(ctx, filter)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return domain.ErrUserExists
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
