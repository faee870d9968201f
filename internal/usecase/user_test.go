package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/formhive/formhive/internal/domain"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	users := newMockUserRepo()
	uc := NewUserUsecase(users)
	ctx := context.Background()

	user, err := uc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.PasswordHash == "s3cret" {
		t.Fatalf("password stored in plain text")
	}

	authed, err := uc.Authenticate(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("authenticated wrong user")
	}

	_, err = uc.Authenticate(ctx, "alice@example.com", "wrong")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for bad password, got %v", err)
	}

	_, err = uc.Authenticate(ctx, "nobody@example.com", "s3cret")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for unknown email, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newMockUserRepo()
	uc := NewUserUsecase(users)
	ctx := context.Background()

	if _, err := uc.Register(ctx, "Alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := uc.Register(ctx, "Alice Again", "alice@example.com", "pw")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterEmptyFields(t *testing.T) {
	users := newMockUserRepo()
	uc := NewUserUsecase(users)
	ctx := context.Background()

	_, err := uc.Register(ctx, "", "alice@example.com", "pw")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
