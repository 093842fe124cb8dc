// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// WHY PasswordHash IS json:"-":
// The bcrypt hash must never appear in an API response. The `json:"-"` tag
// tells encoding/json to skip the field entirely, so even a handler that
// serializes the whole struct (GET /users/me does) cannot leak it.
//
// FirstName and LastName are optional profile fields. We use empty strings
// as the zero value rather than nullable pointers — simpler to work with
// and safe to display.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"` // unique, required
	PasswordHash string    `json:"-"         db:"password_hash"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName"  db:"last_name"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
