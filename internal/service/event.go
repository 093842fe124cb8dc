// Package service — event access control and CRUD.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/neonkn1ght/calendar-api/internal/apperror"
	"github.com/neonkn1ght/calendar-api/internal/model"
	"github.com/neonkn1ght/calendar-api/internal/repository"
)

const MaxTitleLength = 200

// EventService enforces the ownership rules over events.
//
// Every method takes the authenticated principal's user id as its first
// argument — the handlers read it from the request context (set by the
// access guard) and it is never taken from the request body. The ownership
// decision itself happens inside the repository, where the owner id is part
// of the same SQL statement as the read or write (see repository.EventRepository).
//
// POLICY — reads versus mutations:
// Get answers "missing" and "not yours" identically with absence (nil, nil).
// Update and Delete answer both identically with Forbidden. Neither path
// distinguishes the two cases, so no response ever reveals whether a given
// event id exists.
type EventService struct {
	repo   repository.EventRepository
	logger *slog.Logger
}

// EventFields carries the caller-supplied fields for a new event.
// Optional fields are pointers: nil means "not provided".
type EventFields struct {
	Title       string
	Description *string
	Icon        *string
	StartAt     *time.Time
	EndAt       *time.Time
}

func NewEventService(repo repository.EventRepository, logger *slog.Logger) *EventService {
	return &EventService{repo: repo, logger: logger}
}

// List returns all events owned by the given user. The slice is empty, not
// nil, when the user has no events — it marshals to [] rather than null.
func (s *EventService) List(ctx context.Context, userID string) ([]model.Event, error) {
	events, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list events",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing events: %w", err)
	}

	return events, nil
}

// Get returns the event iff it exists and is owned by userID.
//
// A missing or non-owned event yields (nil, nil) — absence, not an error.
// The handler serializes nil as JSON null with a 200.
func (s *EventService) Get(ctx context.Context, userID, eventID string) (*model.Event, error) {
	event, err := s.repo.GetByID(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		s.logger.Error("failed to get event",
			slog.String("eventID", eventID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("getting event: %w", err)
	}

	return event, nil
}

// Create validates and persists a new event owned by userID.
// Icon defaults to the empty string when not provided.
func (s *EventService) Create(ctx context.Context, userID string, fields EventFields) (*model.Event, error) {
	title := strings.TrimSpace(fields.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "event title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("event title must be %d characters or less", MaxTitleLength))
	}

	event := &model.Event{
		UserID:  userID,
		Title:   title,
		StartAt: fields.StartAt,
		EndAt:   fields.EndAt,
	}
	if fields.Description != nil {
		event.Description = *fields.Description
	}
	if fields.Icon != nil {
		event.Icon = *fields.Icon
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		s.logger.Error("failed to create event",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating event: %w", err)
	}

	s.logger.Info("event created",
		slog.String("id", event.ID),
		slog.String("userID", userID),
	)

	return event, nil
}

// Edit applies a partial update to an event owned by userID.
//
// The ownership check is not performed here with a read — the repository's
// conditional UPDATE re-derives it at write time, so a concurrent owner
// change between request arrival and execution cannot slip a stale
// authorization through. Missing or non-owned → apperror.ErrForbidden.
func (s *EventService) Edit(ctx context.Context, userID, eventID string, patch repository.EventPatch) (*model.Event, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "event title cannot be empty")
		}
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("event title must be %d characters or less", MaxTitleLength))
		}
		patch.Title = &title
	}

	event, err := s.repo.Update(ctx, userID, eventID, patch)
	if err != nil {
		if errors.Is(err, apperror.ErrForbidden) {
			return nil, err
		}
		s.logger.Error("failed to update event",
			slog.String("eventID", eventID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating event: %w", err)
	}

	s.logger.Info("event updated",
		slog.String("id", event.ID),
		slog.String("userID", userID),
	)

	return event, nil
}

// Delete removes an event owned by userID.
// Same conditional-write policy as Edit: missing or non-owned → Forbidden.
func (s *EventService) Delete(ctx context.Context, userID, eventID string) error {
	if err := s.repo.Delete(ctx, userID, eventID); err != nil {
		if errors.Is(err, apperror.ErrForbidden) {
			return err
		}
		s.logger.Error("failed to delete event",
			slog.String("eventID", eventID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting event: %w", err)
	}

	s.logger.Info("event deleted",
		slog.String("id", eventID),
		slog.String("userID", userID),
	)

	return nil
}
