package app

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/dacreathor101/simplebank-new/internal/store"
)

func TestSignupLoginRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "diane", "Goodluck60!")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if user.PasswordHash == "Goodluck60!" {
		t.Fatal("password stored in plaintext")
	}

	token, err := svc.Login(ctx, "diane", "Goodluck60!")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("issued token did not validate: %v", err)
	}
	subject, err := parsed.Claims.GetSubject()
	if err != nil {
		t.Fatalf("token has no subject: %v", err)
	}
	if subject != user.ID.String() {
		t.Fatalf("token subject %q does not match user ID %q", subject, user.ID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "diane", "Goodluck60!"); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	if _, err := svc.Login(ctx, "diane", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownUsernameIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Login(context.Background(), "nobody", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown username, got %v", err)
	}
}

func TestSignup_DuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "diane", "Goodluck60!"); err != nil {
		t.Fatalf("first Signup failed: %v", err)
	}
	if _, err := svc.Signup(ctx, "diane", "another"); !errors.Is(err, store.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestSignup_ValidatesInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "   ", "Goodluck60!"); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}
	if _, err := svc.Signup(ctx, "diane", ""); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}
