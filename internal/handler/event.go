package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neonkn1ght/calendar-api/internal/apperror"
	"github.com/neonkn1ght/calendar-api/internal/auth"
	"github.com/neonkn1ght/calendar-api/internal/repository"
	"github.com/neonkn1ght/calendar-api/internal/service"
)

// EventHandler manages CRUD operations for the caller's own events.
//
// All routes sit behind auth.RequireAuth. The owner id passed to the
// service always comes from the authenticated principal in the context —
// never from the URL or body — so a handler bug cannot let one user act as
// another.
type EventHandler struct {
	events *service.EventService
	logger *slog.Logger
}

func NewEventHandler(events *service.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: events, logger: logger}
}

// principal fetches the authenticated user or answers 401. The false return
// means the response is already written.
func (h *EventHandler) principal(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return "", false
	}
	return user.ID, true
}

// HandleList returns all events owned by the caller.
//
// HTTP: GET /events
// 200 → Event[] (empty array, never null, when there are none)
func (h *EventHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.principal(w, r)
	if !ok {
		return
	}

	events, err := h.events.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

// HandleGet returns a single event by id.
//
// HTTP: GET /events/{id}
// 200 → Event, or JSON null when the id is unknown or owned by someone
// else — the two cases are deliberately indistinguishable.
func (h *EventHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.principal(w, r)
	if !ok {
		return
	}

	event, err := h.events.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// HandleCreate creates a new event owned by the caller.
//
// HTTP: POST /events
// Body: {"title": "...", "description"?, "icon"?, "startAt"?, "endAt"?}
// 201 → the created Event with its server-assigned id.
func (h *EventHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req createEventRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	startAt, err := parseTimePtr(req.StartAt)
	if err != nil {
		writeError(w, err)
		return
	}
	endAt, err := parseTimePtr(req.EndAt)
	if err != nil {
		writeError(w, err)
		return
	}

	event, err := h.events.Create(r.Context(), userID, service.EventFields{
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
		StartAt:     startAt,
		EndAt:       endAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// HandleEdit applies a partial update to an event.
//
// HTTP: PATCH /events/{id}
// Omitted fields are unchanged. 403 when the event is missing or owned by
// someone else.
func (h *EventHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req editEventRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	startAt, err := parseTimePtr(req.StartAt)
	if err != nil {
		writeError(w, err)
		return
	}
	endAt, err := parseTimePtr(req.EndAt)
	if err != nil {
		writeError(w, err)
		return
	}

	event, err := h.events.Edit(r.Context(), userID, chi.URLParam(r, "id"), repository.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
		StartAt:     startAt,
		EndAt:       endAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// HandleDelete removes an event.
//
// HTTP: DELETE /events/{id}
// 204 on success; 403 when the event is missing or owned by someone else.
func (h *EventHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.principal(w, r)
	if !ok {
		return
	}

	if err := h.events.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
