package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neonkn1ght/calendar-api/internal/auth"
	"github.com/neonkn1ght/calendar-api/internal/handler"
	"github.com/neonkn1ght/calendar-api/internal/model"
	sqliteRepo "github.com/neonkn1ght/calendar-api/internal/repository/sqlite"
	"github.com/neonkn1ght/calendar-api/internal/service"
)

// Handler tests run against a real in-memory SQLite repository — the
// handlers' behavior depends on the repository's conditional-write
// semantics, so mocking the repo here would test the mock.
func newEventFixture(t *testing.T) (*handler.EventHandler, *sqliteRepo.DB) {
	t.Helper()
	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return handler.NewEventHandler(service.NewEventService(db, logger), logger), db
}

func seedUser(t *testing.T, db *sqliteRepo.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "irrelevant"}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

// authedRequest builds a request carrying the given principal, as if it had
// passed through the access guard.
func authedRequest(t *testing.T, user *model.User, method, target, body string) *http.Request {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(auth.ContextWithPrincipal(req.Context(), user))
}

func TestHandleCreate(t *testing.T) {
	h, db := newEventFixture(t)
	user := seedUser(t, db, "a@example.com")

	t.Run("valid event", func(t *testing.T) {
		body := `{"title":"Urgent meeting","description":"About something important","startAt":"2026-09-01T10:00:00.000Z","endAt":"2026-09-01T11:00:00.000Z"}`
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, authedRequest(t, user, http.MethodPost, "/events", body))

		assert.Equal(t, http.StatusCreated, rr.Code)

		var event model.Event
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&event))
		assert.NotEmpty(t, event.ID)
		assert.Equal(t, user.ID, event.UserID)
		assert.Equal(t, "Urgent meeting", event.Title)
		assert.Equal(t, "About something important", event.Description)
		assert.Equal(t, "", event.Icon)
		require.NotNil(t, event.StartAt)
		assert.Equal(t, 10, event.StartAt.UTC().Hour())
	})

	t.Run("empty title is rejected before the service", func(t *testing.T) {
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, authedRequest(t, user, http.MethodPost, "/events", `{"title":""}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, authedRequest(t, user, http.MethodPost, "/events", `{"title":"ok","sneaky":"field"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("non-ISO timestamp is rejected", func(t *testing.T) {
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, authedRequest(t, user, http.MethodPost, "/events", `{"title":"ok","startAt":"tomorrow"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleGet_AbsenceIsNull(t *testing.T) {
	h, db := newEventFixture(t)
	owner := seedUser(t, db, "owner@example.com")
	other := seedUser(t, db, "other@example.com")

	event := &model.Event{UserID: owner.ID, Title: "private"}
	require.NoError(t, db.CreateEvent(context.Background(), event))

	get := func(as *model.User, id string) *httptest.ResponseRecorder {
		req := authedRequest(t, as, http.MethodGet, "/events/"+id, "")
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rr := httptest.NewRecorder()
		h.HandleGet(rr, req)
		return rr
	}

	t.Run("owner sees the event", func(t *testing.T) {
		rr := get(owner, event.ID)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), event.ID)
	})

	t.Run("non-owner and missing id are identical", func(t *testing.T) {
		asOther := get(other, event.ID)
		missing := get(other, "no-such-id")

		assert.Equal(t, http.StatusOK, asOther.Code)
		assert.Equal(t, http.StatusOK, missing.Code)
		// Both bodies are JSON null — existence is not leaked
		assert.JSONEq(t, "null", asOther.Body.String())
		assert.JSONEq(t, "null", missing.Body.String())
	})
}

func TestHandleEdit(t *testing.T) {
	h, db := newEventFixture(t)
	owner := seedUser(t, db, "owner@example.com")
	other := seedUser(t, db, "other@example.com")

	event := &model.Event{UserID: owner.ID, Title: "old title", Description: "keep me"}
	require.NoError(t, db.CreateEvent(context.Background(), event))

	patch := func(as *model.User, id, body string) *httptest.ResponseRecorder {
		req := authedRequest(t, as, http.MethodPatch, "/events/"+id, body)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rr := httptest.NewRecorder()
		h.HandleEdit(rr, req)
		return rr
	}

	t.Run("partial edit leaves other fields", func(t *testing.T) {
		rr := patch(owner, event.ID, `{"title":"new title"}`)

		assert.Equal(t, http.StatusOK, rr.Code)

		var updated model.Event
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
		assert.Equal(t, "new title", updated.Title)
		assert.Equal(t, "keep me", updated.Description)
	})

	t.Run("non-owner gets 403", func(t *testing.T) {
		rr := patch(other, event.ID, `{"title":"hijacked"}`)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "access to resource denied")
	})

	t.Run("missing id gets the same 403", func(t *testing.T) {
		rr := patch(owner, "no-such-id", `{"title":"ghost"}`)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "access to resource denied")
	})
}

func TestHandleDelete(t *testing.T) {
	h, db := newEventFixture(t)
	owner := seedUser(t, db, "owner@example.com")
	other := seedUser(t, db, "other@example.com")

	event := &model.Event{UserID: owner.ID, Title: "doomed"}
	require.NoError(t, db.CreateEvent(context.Background(), event))

	del := func(as *model.User, id string) *httptest.ResponseRecorder {
		req := authedRequest(t, as, http.MethodDelete, "/events/"+id, "")
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rr := httptest.NewRecorder()
		h.HandleDelete(rr, req)
		return rr
	}

	t.Run("non-owner gets 403 and the event survives", func(t *testing.T) {
		rr := del(other, event.ID)
		assert.Equal(t, http.StatusForbidden, rr.Code)

		_, err := db.GetByID(context.Background(), owner.ID, event.ID)
		assert.NoError(t, err)
	})

	t.Run("owner gets 204 and the event is gone", func(t *testing.T) {
		rr := del(owner, event.ID)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())

		events, err := db.ListByOwner(context.Background(), owner.ID)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestHandleList_NoPrincipal(t *testing.T) {
	h, _ := newEventFixture(t)

	// A request that never passed the access guard carries no principal
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	rr := httptest.NewRecorder()
	h.HandleList(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "unauthenticated")
}

func TestHandleList_EmptyIsJSONArray(t *testing.T) {
	h, db := newEventFixture(t)
	user := seedUser(t, db, "empty@example.com")

	rr := httptest.NewRecorder()
	h.HandleList(rr, authedRequest(t, user, http.MethodGet, "/events", ""))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}
