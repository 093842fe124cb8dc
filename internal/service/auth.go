// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the database
//
// Services accept context + primitives/domain structs and return domain
// errors. They never see *http.Request and never emit status codes, so the
// same logic could back a CLI or a gRPC surface without change.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/neonkn1ght/calendar-api/internal/apperror"
	"github.com/neonkn1ght/calendar-api/internal/auth"
	"github.com/neonkn1ght/calendar-api/internal/model"
	"github.com/neonkn1ght/calendar-api/internal/repository"
)

// AuthService implements signup and signin.
//
// DEPENDENCY CHAIN:
//
//	AuthHandler (HTTP) → AuthService → UserRepository (DB)
//	                   ↘ PasswordService (bcrypt)
//	                   ↘ TokenService (JWT)
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService. All collaborators are injected —
// tests pass a mock repository and a low-cost password service.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// Signup creates a new account and returns a signed session token bound to
// the new user's id.
//
// The duplicate-email case is not pre-checked with a SELECT — the UNIQUE
// constraint on users.email decides, and the repository translates the
// violation into apperror.ErrConflict. That keeps signup race-free: two
// concurrent signups for the same email cannot both succeed.
func (s *AuthService) Signup(ctx context.Context, email, password string) (string, error) {
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return "", fmt.Errorf("signup: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return "", err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		s.logger.Error("signup: token generation failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("signup: %w", err)
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return token, nil
}

// Signin verifies credentials and returns a signed session token.
//
// UNKNOWN EMAIL AND WRONG PASSWORD ARE THE SAME ERROR:
// Returning a distinct message for "no such account" would let an attacker
// enumerate registered emails. Both failures produce the identical
// "credentials incorrect" Forbidden error.
func (s *AuthService) Signin(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		// Only absence means bad credentials. A persistence failure must
		// surface as a server error, not tell the caller their password
		// was wrong.
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.Forbidden("credentials incorrect")
		}
		s.logger.Error("signin: user lookup failed",
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("signin: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return "", apperror.Forbidden("credentials incorrect")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		s.logger.Error("signin: token generation failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("signin: %w", err)
	}

	s.logger.Info("user signed in", slog.String("userID", user.ID))

	return token, nil
}
