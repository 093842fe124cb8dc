package handler

import (
	"log/slog"
	"net/http"

	"github.com/neonkn1ght/calendar-api/internal/service"
)

// AuthHandler exposes the signup and signin endpoints.
//
// The handler's job ends at HTTP: decode + validate the body, call the
// service, translate the result. Credential checking, hashing, and token
// issuance all live in service.AuthService.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// HandleSignup creates a new account.
//
// HTTP: POST /auth/signup
// Body: {"email": "...", "password": "..."}
// 201 → {"access_token": "..."}; 400 invalid body; 409 email taken.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.auth.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{AccessToken: token})
}

// HandleSignin authenticates an existing account.
//
// HTTP: POST /auth/signin
// Body: {"email": "...", "password": "..."}
// 200 → {"access_token": "..."}; 400 invalid body; 403 bad credentials.
func (h *AuthHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.auth.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token})
}
