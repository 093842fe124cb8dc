// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Event represents a calendar event owned by exactly one user.
//
// OWNERSHIP:
// UserID is set once at creation and never changes. Every repository
// operation on an event is keyed by (id, user_id), so a request
// authenticated as anyone other than the owner can never see or touch it.
//
// WHY *time.Time FOR StartAt/EndAt?
// Both timestamps are optional. A nil pointer marshals to JSON null and
// maps to a NULL column, which keeps "no start time" distinct from the
// zero time (0001-01-01), a distinction time.Time alone cannot express.
type Event struct {
	ID          string     `json:"id"          db:"id"`
	UserID      string     `json:"userId"      db:"user_id"` // owner, immutable
	Title       string     `json:"title"       db:"title"`
	Description string     `json:"description" db:"description"`
	Icon        string     `json:"icon"        db:"icon"` // defaults to ""
	StartAt     *time.Time `json:"startAt"     db:"start_at"`
	EndAt       *time.Time `json:"endAt"       db:"end_at"`
	CreatedAt   time.Time  `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt"   db:"updated_at"`
}
