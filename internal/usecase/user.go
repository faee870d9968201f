package usecase

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/formhive/formhive/internal/domain"
)

type UserUsecase struct {
	users UserRepository
}

func NewUserUsecase(users UserRepository) *UserUsecase {
	return &UserUsecase{users: users}
}

// Register creates an account with a bcrypt-hashed password. Duplicate
// emails conflict.
func (uc *UserUsecase) Register(ctx context.Context, fullName, email, password string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "User.Usecase.Register")
	defer span.End()

	if fullName == "" || email == "" || password == "" {
		return nil, domain.ValidationError{Message: "fullName, email and password are required"}
	}

	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ConflictError{Reason: "Email already in use"}
	} else if !errors.Is(err, domain.ErrNotFound) {
		span.RecordError(err)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	saved, err := uc.users.Create(ctx, domain.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &saved, nil
}

// Authenticate verifies credentials and returns the account. Failures are
// indistinguishable between unknown email and wrong password.
func (uc *UserUsecase) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "User.Usecase.Authenticate")
	defer span.End()

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ForbiddenError{Reason: "invalid credentials"}
		}
		span.RecordError(err)
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ForbiddenError{Reason: "invalid credentials"}
	}

	return &user, nil
}

// Get returns one user by id.
func (uc *UserUsecase) Get(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := uc.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
