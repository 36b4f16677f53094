package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("not signed in")
	ErrTokenExpired = errors.New("token is expired")
)

// Info is what the client can learn from a bearer token without the
// signing key.
type Info struct {
	Subject   string
	ExpiresAt time.Time
}

// Inspect parses token without verifying its signature. The service remains
// the authority; this only lets the client skip requests that would be
// rejected anyway.
func Inspect(token string) (*Info, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	info := &Info{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

// Check returns ErrTokenExpired if token carries an expiry at or before now.
// Tokens the client cannot parse are passed through to the service.
func Check(token string, now time.Time) error {
	info, err := Inspect(token)
	if errors.Is(err, ErrNoToken) {
		return err
	}
	if err != nil {
		return nil
	}
	if !info.ExpiresAt.IsZero() && !now.Before(info.ExpiresAt) {
		return ErrTokenExpired
	}
	return nil
}
