package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/neonkn1ght/calendar-api/internal/apperror"
	"github.com/neonkn1ght/calendar-api/internal/auth"
	"github.com/neonkn1ght/calendar-api/internal/model"
	"github.com/neonkn1ght/calendar-api/internal/repository"
)

// mockUserRepo implements repository.UserRepository in memory, enforcing
// the unique-email constraint the way the sqlite layer does.
type mockUserRepo struct {
	byID    map[string]*model.User
	byEmail map[string]*model.User
	nextID  int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if _, taken := m.byEmail[user.Email]; taken {
		return apperror.Conflict("email already taken")
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	stored := *user
	m.byID[user.ID] = &stored
	m.byEmail[user.Email] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, id string, patch repository.UserPatch) (*model.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	result := *user
	return &result, nil
}

func newTestAuthService(t *testing.T) (*AuthService, *auth.TokenService, *mockUserRepo) {
	t.Helper()
	repo := newMockUserRepo()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordService(bcrypt.MinCost)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewAuthService(repo, passwords, tokens, logger), tokens, repo
}

func TestSignup_ReturnsUsableToken(t *testing.T) {
	svc, tokens, repo := newTestAuthService(t)

	token, err := svc.Signup(context.Background(), "k.derba@gmail.com", "qwerty")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if token == "" {
		t.Fatal("Signup() returned empty token")
	}

	// The token must authenticate as the freshly created account
	userID, err := tokens.Validate(token)
	if err != nil {
		t.Fatalf("Validate() on signup token error = %v", err)
	}
	user, err := repo.GetUserByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("token subject %q does not resolve to a user: %v", userID, err)
	}
	if user.Email != "k.derba@gmail.com" {
		t.Errorf("Email = %q, want %q", user.Email, "k.derba@gmail.com")
	}
}

func TestSignup_HashesPassword(t *testing.T) {
	svc, tokens, repo := newTestAuthService(t)

	token, err := svc.Signup(context.Background(), "hash@example.com", "plaintext-secret")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	userID, _ := tokens.Validate(token)
	user, _ := repo.GetUserByID(context.Background(), userID)

	if user.PasswordHash == "plaintext-secret" {
		t.Fatal("Signup() stored the password in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("plaintext-secret")); err != nil {
		t.Errorf("stored hash does not verify against the original password: %v", err)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	if _, err := svc.Signup(context.Background(), "taken@example.com", "first"); err != nil {
		t.Fatalf("first Signup() error = %v", err)
	}

	_, err := svc.Signup(context.Background(), "taken@example.com", "second")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second Signup() error = %v, want ErrConflict", err)
	}
}

func TestSignin_CorrectCredentials(t *testing.T) {
	svc, tokens, _ := newTestAuthService(t)

	svc.Signup(context.Background(), "me@example.com", "right-password")

	token, err := svc.Signin(context.Background(), "me@example.com", "right-password")
	if err != nil {
		t.Fatalf("Signin() error = %v", err)
	}
	if _, err := tokens.Validate(token); err != nil {
		t.Errorf("Validate() on signin token error = %v", err)
	}
}

// failingUserRepo simulates a persistence outage on every lookup.
type failingUserRepo struct {
	*mockUserRepo
	err error
}

func (f *failingUserRepo) GetUserByEmail(context.Context, string) (*model.User, error) {
	return nil, f.err
}

func TestSignin_RepositoryFailureIsNotBadCredentials(t *testing.T) {
	repo := &failingUserRepo{
		mockUserRepo: newMockUserRepo(),
		err:          errors.New("disk I/O error"),
	}
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewAuthService(repo, auth.NewPasswordService(bcrypt.MinCost), tokens, logger)

	_, err = svc.Signin(context.Background(), "me@example.com", "qwerty")
	if err == nil {
		t.Fatal("Signin() over a failing repository should return an error")
	}
	// A lookup outage is a server-side failure, not a credential problem —
	// reporting it as Forbidden would serve a 403 during a DB outage
	if errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Signin() error = %v, must not map a repository failure to ErrForbidden", err)
	}
}

func TestSignin_Failures(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	svc.Signup(context.Background(), "me@example.com", "right-password")

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "me@example.com", "wrong-password"},
		{"unknown email", "nobody@example.com", "right-password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signin(context.Background(), tt.email, tt.password)
			if !errors.Is(err, apperror.ErrForbidden) {
				t.Fatalf("Signin() error = %v, want ErrForbidden", err)
			}
			// Both failure modes carry the same message, so a caller
			// can't probe which emails are registered
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Message != "credentials incorrect" {
				t.Errorf("Message = %q, want %q", appErr.Message, "credentials incorrect")
			}
		})
	}
}
