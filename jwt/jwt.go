package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

type Claims struct {
	Issuer         string `json:"iss,omitempty"`
	Subject        string `json:"sub,omitempty"`
	Audience       string `json:"aud,omitempty"`
	ExpirationTime string `json:"exp,omitempty"`
	IssuedAt       string `json:"iat,omitempty"`
	JWTID          string `json:"jti,omitempty"`
}

// Create creates a server-signed JWT (HMAC-SHA256).
func Create(claims Claims, secret string) (string, error) {
	header := Header{
		Type:      "JWT",
		Algorithm: "HS256",
	}
	headerStr, err := json.Marshal(header)
	if err != nil {
		return "", err
	}

	payloadStr, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	headerB64 := base64.RawURLEncoding.EncodeToString(headerStr)
	payloadB64 := base64.RawURLEncoding.EncodeToString(payloadStr)
	target := headerB64 + "." + payloadB64

	signatureB64 := base64.RawURLEncoding.EncodeToString(sign([]byte(target), secret))

	return target + "." + signatureB64, nil
}

// Validate checks the jwt signature and expiry and returns its parts.
func Validate(jwt string, secret string) (*Header, *Claims, error) {

	split := strings.Split(jwt, ".")
	if len(split) != 3 {
		return nil, nil, fmt.Errorf("invalid jwt format")
	}

	var header Header
	headerBytes, err := base64.RawURLEncoding.DecodeString(split[0])
	if err != nil {
		return nil, nil, err
	}
	err = json.Unmarshal(headerBytes, &header)
	if err != nil {
		return nil, nil, err
	}

	if header.Type != "JWT" || header.Algorithm != "HS256" {
		return nil, nil, fmt.Errorf("unsupported jwt type")
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(split[1])
	if err != nil {
		return nil, nil, err
	}

	var claims Claims
	err = json.Unmarshal(payloadBytes, &claims)
	if err != nil {
		return nil, nil, err
	}

	if claims.ExpirationTime != "" {
		exp, err := strconv.ParseInt(claims.ExpirationTime, 10, 64)
		if err != nil {
			return nil, nil, err
		}
		if time.Now().Unix() > exp {
			return nil, nil, fmt.Errorf("jwt expired")
		}
	}

	signature, err := base64.RawURLEncoding.DecodeString(split[2])
	if err != nil {
		return nil, nil, err
	}

	expected := sign([]byte(split[0]+"."+split[1]), secret)
	if !hmac.Equal(signature, expected) {
		return nil, nil, fmt.Errorf("invalid jwt signature")
	}

	return &header, &claims, nil
}

func sign(target []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(target)
	return mac.Sum(nil)
}
