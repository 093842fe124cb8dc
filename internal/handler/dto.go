package handler

// REQUEST DTOs AND BOUNDARY VALIDATION:
// Every request body has an explicit DTO struct, decoded and validated once
// at the HTTP boundary. By the time a service method runs, the input is
// known-good — services only re-check rules that are business logic (like
// non-empty titles), not syntax.
//
// Validation is declarative via go-playground/validator struct tags:
//   validate:"required,email"  → field must be present and a valid address
//   validate:"omitempty,datetime=..." → if present, must parse as RFC 3339
//
// STRICT WHITELIST:
// decoder.DisallowUnknownFields() rejects bodies containing fields the DTO
// doesn't declare. A typo like {"titel": ...} fails loudly with a 400
// instead of silently creating an untitled event.

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/neonkn1ght/calendar-api/internal/apperror"
)

// rfc3339Layout is the `datetime` tag parameter for startAt/endAt.
// time.Parse with this layout also accepts fractional seconds, so
// JavaScript's Date.toISOString() output ("...T12:00:00.000Z") passes.
const rfc3339Layout = "2006-01-02T15:04:05Z07:00"

var validate = newValidator()

// newValidator builds the shared validator and registers `maxbytes`.
// The built-in `max` tag counts runes for strings, but bcrypt operates on
// bytes and rejects inputs over 72 of them — a 50-rune multibyte password
// would pass `max=72` and then blow up at hashing time.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type signinRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type editUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
}

type createEventRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	StartAt     *string `json:"startAt" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndAt       *string `json:"endAt" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type editEventRequest struct {
	Title       *string `json:"title" validate:"omitempty"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	StartAt     *string `json:"startAt" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndAt       *string `json:"endAt" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// tokenResponse is the body returned by both signup and signin.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// decodeAndValidate reads the JSON body into dst and runs its validate tags.
// Any failure comes back as an apperror.ErrValidation, which writeError
// turns into a 400.
func decodeAndValidate(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return apperror.ValidationFailed("", "invalid JSON body: "+err.Error())
	}

	if err := validate.Struct(dst); err != nil {
		return translateValidation(err)
	}

	return nil
}

// translateValidation converts the library's error into our taxonomy,
// reporting the first failing field with its JSON-style name.
func translateValidation(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := jsonFieldName(fe.Field())
		return apperror.ValidationFailed(field,
			fmt.Sprintf("%s failed validation on the '%s' rule", field, fe.Tag()))
	}
	return apperror.ValidationFailed("", "invalid request body")
}

// jsonFieldName lower-cases the first rune of a Go field name so error
// messages name the field the way the client sent it (Title → title).
func jsonFieldName(goName string) string {
	if goName == "" {
		return goName
	}
	return strings.ToLower(goName[:1]) + goName[1:]
}

// parseTimePtr converts an optional, already-validated RFC 3339 string into
// a *time.Time. It is only called after the datetime tag passed, so the
// parse cannot fail in practice; the error return guards against drift
// between the tag layout and this one.
func parseTimePtr(value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := time.Parse(rfc3339Layout, *value)
	if err != nil {
		return nil, apperror.ValidationFailed("", "invalid timestamp: "+*value)
	}
	return &t, nil
}
