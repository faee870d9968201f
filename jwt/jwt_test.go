package jwt

import (
	"strconv"
	"testing"
	"time"
)

func TestCreateValidateRoundTrip(t *testing.T) {
	claims := Claims{
		Issuer:         "formhive",
		Subject:        "42",
		ExpirationTime: strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
	}

	token, err := Create(claims, "secret")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, got, err := Validate(token, "secret")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if got.Subject != "42" {
		t.Fatalf("expected subject 42 got %s", got.Subject)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := Create(Claims{Subject: "1"}, "secret")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, _, err := Validate(token, "other"); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	claims := Claims{
		Subject:        "1",
		ExpirationTime: strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10),
	}
	token, err := Create(claims, "secret")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, _, err := Validate(token, "secret"); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	if _, _, err := Validate("not-a-jwt", "secret"); err == nil {
		t.Fatalf("expected format error")
	}
}
