package handler

import (
	"log/slog"
	"net/http"

	"github.com/neonkn1ght/calendar-api/internal/apperror"
	"github.com/neonkn1ght/calendar-api/internal/auth"
	"github.com/neonkn1ght/calendar-api/internal/repository"
	"github.com/neonkn1ght/calendar-api/internal/service"
)

// UserHandler serves the authenticated user's own profile.
// Both routes sit behind auth.RequireAuth, so the principal is always
// present in the request context.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleMe returns the currently authenticated user.
//
// HTTP: GET /users/me
//
// The access guard already resolved the user row while validating the
// token, so this is a pure context read — no second DB lookup.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but don't panic if miswired.
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleEdit applies a partial update to the caller's profile.
//
// HTTP: PATCH /users
// Body: {"firstName"?: "...", "lastName"?: "..."}
// Omitted fields are unchanged; returns the updated User.
func (h *UserHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	var req editUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.users.EditProfile(r.Context(), user.ID, repository.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}
