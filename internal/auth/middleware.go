package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/neonkn1ght/calendar-api/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string,
// ANY package that knows the string can read or shadow your value. Using a
// package-private type prevents collisions: only THIS package can create a
// key of type contextKey, so only this package can write principal values
// into the context.
type contextKey string

const principalKey contextKey = "principal"

// UserResolver looks up a user by their internal ID.
//
// Declared here (and satisfied by the sqlite repository) so the guard can
// confirm that the account behind a token still exists — a valid signature
// is not enough if the user row was deleted after the token was issued.
type UserResolver interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// RequireAuth is the access guard for protected routes.
//
// It reads the JWT from the "Authorization: Bearer <token>" header,
// validates it, resolves the subject to a live user row, and stores the
// resolved principal in the request context. If any step fails, it returns
// 401 Unauthorized and stops the request chain — handlers behind this
// middleware can therefore assume an authenticated principal.
//
// MIDDLEWARE PATTERN IN GO:
// A middleware is a function that takes an http.Handler and returns a new
// http.Handler that wraps it. Chi applies middlewares in a chain:
// req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(tokens *TokenService, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			userID, err := tokens.Validate(tokenStr)
			if err != nil {
				unauthorized(w)
				return
			}

			// The token may outlive the account. Resolving the row here
			// guarantees downstream handlers a principal that exists.
			// Any resolution failure — including a DB outage — answers
			// 401: a guard that cannot confirm the principal does not
			// let the request through.
			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := ContextWithPrincipal(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextWithPrincipal returns a context carrying the given user as the
// authenticated principal. RequireAuth uses it; tests use it to exercise
// protected handlers without minting tokens.
func ContextWithPrincipal(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, principalKey, user)
}

// PrincipalFromContext retrieves the authenticated user from the request
// context.
//
// Returns (nil, false) if the request never passed through RequireAuth.
//
// Usage in handlers:
//
//	user, ok := auth.PrincipalFromContext(r.Context())
//	if !ok {
//	    // not authenticated
//	}
func PrincipalFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(principalKey).(*model.User)
	return user, ok && user != nil
}

// bearerToken extracts the token from an "Authorization: Bearer X" header.
// The scheme comparison is case-insensitive per RFC 7235.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

// unauthorized writes the same JSON shape handler.writeError produces for
// ErrUnauthenticated; this package sits below the handler layer and cannot
// import it.
func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthenticated","message":"valid authentication required"}`))
}
