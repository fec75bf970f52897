// Package auth issues application tokens for the write endpoints of the
// files API.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/radif/blobfiles/internal/config"
)

const tokenTTL = 24 * time.Hour

// ErrInvalidCredentials is returned when the application ID or master key
// does not match the configured application.
var ErrInvalidCredentials = errors.New("invalid application credentials")

// Token is a signed application token.
type Token struct {
	Token     string
	ExpiresAt time.Time
}

// Service issues tokens for the configured application.
type Service struct {
	cfg *config.Config
	now func() time.Time
}

// NewService creates a new auth Service.
func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg, now: time.Now}
}

// IssueToken checks the application credentials and returns a signed JWT
// whose subject is the application ID.
func (s *Service) IssueToken(applicationID, masterKey string) (*Token, error) {
	if s.cfg.MasterKey == "" || applicationID != s.cfg.ApplicationID {
		return nil, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(masterKey), []byte(s.cfg.MasterKey)) != 1 {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   applicationID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Token{Token: signed, ExpiresAt: expiresAt}, nil
}
