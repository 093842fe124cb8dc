// Package service — user profile operations.
package service

import (
	"context"
	"log/slog"

	"github.com/neonkn1ght/calendar-api/internal/model"
	"github.com/neonkn1ght/calendar-api/internal/repository"
)

// UserService handles profile reads and edits for the authenticated user.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// EditProfile applies a partial update to the caller's own profile.
// Nil patch fields are left unchanged; the repository applies the patch as
// a single conditional UPDATE.
func (s *UserService) EditProfile(ctx context.Context, userID string, patch repository.UserPatch) (*model.User, error) {
	user, err := s.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		s.logger.Error("failed to update profile",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("profile updated", slog.String("userID", userID))
	return user, nil
}
