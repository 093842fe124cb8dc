// Package repository declares the persistence interfaces the service layer
// depends on. The sqlite subpackage provides the real implementation; tests
// substitute in-memory mocks.
package repository

import (
	"context"
	"time"

	"github.com/neonkn1ght/calendar-api/internal/model"
)

// EventPatch describes a partial update to an event. A nil field means
// "leave unchanged" — the repository applies only the fields that are set,
// so a PATCH body naming just the title never clobbers the description.
type EventPatch struct {
	Title       *string
	Description *string
	Icon        *string
	StartAt     *time.Time
	EndAt       *time.Time
}

// UserPatch describes a partial update to a user's profile fields.
type UserPatch struct {
	FirstName *string
	LastName  *string
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, patch UserPatch) (*model.User, error)
}

// EventRepository persists events keyed by owner.
//
// Every method except Create takes the owner's user ID and scopes the SQL
// to it. Ownership is never checked separately from the operation — the
// WHERE clause carries both id and user_id, so authorization and mutation
// are a single atomic statement (no check-then-act window).
type EventRepository interface {
	CreateEvent(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, ownerID, id string) (*model.Event, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Event, error)
	Update(ctx context.Context, ownerID, id string, patch EventPatch) (*model.Event, error)
	Delete(ctx context.Context, ownerID, id string) error
}
