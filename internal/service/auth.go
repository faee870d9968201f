package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/formhive/formhive/internal/config"
	"github.com/formhive/formhive/internal/domain"
	"github.com/formhive/formhive/jwt"
)

var tracer = otel.Tracer("service")

type AuthService struct {
	config config.Auth
}

func NewAuthService(config config.Auth) *AuthService {
	return &AuthService{
		config: config,
	}
}

// IssueToken creates a bearer token for an authenticated user.
func (s *AuthService) IssueToken(user domain.User) (string, error) {
	now := time.Now()
	claims := jwt.Claims{
		Issuer:         "formhive",
		Subject:        strconv.FormatUint(uint64(user.ID), 10),
		IssuedAt:       strconv.FormatInt(now.Unix(), 10),
		ExpirationTime: strconv.FormatInt(now.Add(s.config.TokenTTL()).Unix(), 10),
	}
	return jwt.Create(claims, s.config.JWTSecret)
}

// AuthJwt validates a bearer token and returns the requester's user id.
func (s *AuthService) AuthJwt(ctx context.Context, token string) (uint, error) {
	_, span := tracer.Start(ctx, "Auth.Service.AuthJwt")
	defer span.End()

	_, claims, err := jwt.Validate(token, s.config.JWTSecret)
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return 0, err
	}

	if claims.Issuer != "formhive" {
		err := fmt.Errorf("invalid issuer")
		span.RecordError(err)
		return 0, err
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		span.RecordError(errors.Wrap(err, "invalid subject"))
		return 0, fmt.Errorf("invalid subject")
	}

	return uint(userID), nil
}
