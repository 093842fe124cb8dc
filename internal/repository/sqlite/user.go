package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/neonkn1ght/calendar-api/internal/apperror"
	"github.com/neonkn1ght/calendar-api/internal/model"
	"github.com/neonkn1ght/calendar-api/internal/repository"
)

// Compile-time check that *DB implements repository.UserRepository.
// If a method is missing or has the wrong signature, this line fails to
// compile — much earlier than the first place the interface is used.
var _ repository.UserRepository = (*DB)(nil)

// Create inserts a new user.
//
// The users.email column carries a UNIQUE constraint, so a duplicate signup
// fails at the database rather than in a racy SELECT-then-INSERT. We
// translate that constraint violation into apperror.ErrConflict so the
// handler can answer 409.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, first_name, last_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Conflict("email already taken")
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByEmail retrieves a user by their email address.
// Returns apperror.ErrNotFound if no account is registered for the email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `WHERE email = ?`, email)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, password_hash, first_name, last_name, created_at, updated_at
		 FROM users `+where,
		arg,
	).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprintf("%v", arg))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	return &u, nil
}

// UpdateProfile applies a partial update to a user's profile fields.
//
// COALESCE(?, column) keeps the stored value when the corresponding patch
// field is nil — database/sql binds a nil *string as SQL NULL, and COALESCE
// falls through to the existing column value. One statement, no read-first.
func (db *DB) UpdateProfile(ctx context.Context, id string, patch repository.UserPatch) (*model.User, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET first_name = COALESCE(?, first_name),
		     last_name  = COALESCE(?, last_name),
		     updated_at = ?
		 WHERE id = ?`,
		patch.FirstName,
		patch.LastName,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("user", id)
	}

	return db.GetUserByID(ctx, id)
}
