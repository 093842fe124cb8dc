package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/neonkn1ght/calendar-api/internal/apperror"
	"github.com/neonkn1ght/calendar-api/internal/model"
	"github.com/neonkn1ght/calendar-api/internal/repository"
)

// compile-time check that *DB implements repository.EventRepository
var _ repository.EventRepository = (*DB)(nil)

// deniedMessage is returned for mutations on events that are missing OR
// owned by someone else. Both cases produce the identical error, so a
// caller can never use the response to probe which event IDs exist.
const deniedMessage = "access to resource denied"

// Create inserts a new event.
//
// The ID is generated here with xid: 20 chars, URL-safe, and sortable by
// creation time. The caller's struct is modified in place (pointer
// receiver), so after Create the event carries its server-assigned ID and
// timestamps.
func (db *DB) CreateEvent(ctx context.Context, event *model.Event) error {
	event.ID = xid.New().String()

	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO events (id, user_id, title, description, icon, start_at, end_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.UserID,
		event.Title,
		event.Description,
		event.Icon,
		event.StartAt,
		event.EndAt,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating event: %w", err)
	}

	return nil
}

// GetByID retrieves a single event, scoped to its owner.
//
// The WHERE clause carries both id and user_id: a non-owner gets
// sql.ErrNoRows exactly like a nonexistent id, which the service surfaces
// as absence. Existence is never leaked on the read path.
func (db *DB) GetByID(ctx context.Context, ownerID, id string) (*model.Event, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, icon, start_at, end_at, created_at, updated_at
		 FROM events
		 WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)

	event, err := scanEvent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("event", id)
		}
		return nil, fmt.Errorf("sqlite: getting event %s: %w", id, err)
	}

	return event, nil
}

// ListByOwner retrieves all events owned by the given user, oldest first.
func (db *DB) ListByOwner(ctx context.Context, ownerID string) ([]model.Event, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, title, description, icon, start_at, end_at, created_at, updated_at
		 FROM events
		 WHERE user_id = ?
		 ORDER BY created_at ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing events: %w", err)
	}
	// rows holds a pooled connection until closed — never skip this.
	defer rows.Close()

	events := make([]model.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning event row: %w", err)
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating events: %w", err)
	}

	return events, nil
}

// Update applies a partial update to an event, atomically gated on
// ownership.
//
// OWNERSHIP IS PART OF THE WRITE:
// The UPDATE matches on id AND user_id in one statement, so there is no
// window between an ownership read and the mutation in which the row could
// change hands. Zero rows affected means "missing or not yours" — both map
// to the same Forbidden error (see deniedMessage).
//
// COALESCE(?, column) keeps the stored value for every nil patch field, so
// a patch naming only the title leaves description, icon, and the
// timestamps untouched.
func (db *DB) Update(ctx context.Context, ownerID, id string, patch repository.EventPatch) (*model.Event, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE events
		 SET title       = COALESCE(?, title),
		     description = COALESCE(?, description),
		     icon        = COALESCE(?, icon),
		     start_at    = COALESCE(?, start_at),
		     end_at      = COALESCE(?, end_at),
		     updated_at  = ?
		 WHERE id = ? AND user_id = ?`,
		patch.Title,
		patch.Description,
		patch.Icon,
		patch.StartAt,
		patch.EndAt,
		time.Now().UTC(),
		id,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating event %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.Forbidden(deniedMessage)
	}

	return db.GetByID(ctx, ownerID, id)
}

// Delete removes an event, atomically gated on ownership.
// Same conditional-write policy as Update: zero rows affected → Forbidden.
func (db *DB) Delete(ctx context.Context, ownerID, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM events WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting event %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.Forbidden(deniedMessage)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanEvent reads one event row, converting the nullable timestamp columns
// into *time.Time (nil when the column is NULL).
func scanEvent(s scanner) (*model.Event, error) {
	var (
		event   model.Event
		startAt sql.NullTime
		endAt   sql.NullTime
	)

	err := s.Scan(
		&event.ID,
		&event.UserID,
		&event.Title,
		&event.Description,
		&event.Icon,
		&startAt,
		&endAt,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if startAt.Valid {
		t := startAt.Time
		event.StartAt = &t
	}
	if endAt.Valid {
		t := endAt.Time
		event.EndAt = &t
	}

	return &event, nil
}
