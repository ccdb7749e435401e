// Package service implements admin session management.
package service

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"bakery_quote_backend/platform/apperr"
	"bakery_quote_backend/platform/config"
)

// CookieName is the admin session cookie.
const CookieName = "bakery_admin"

// Service issues and verifies admin session tokens. Authentication is a
// single shared password: either a bcrypt hash or, for small deployments,
// the plain password compared in constant time.
type Service struct {
	cfg config.AdminConfig
}

// New creates a new admin service.
func New(cfg config.AdminConfig) *Service {
	return &Service{cfg: cfg}
}

// Login checks the password and returns a signed session token.
func (s *Service) Login(password string) (string, error) {
	if !s.passwordValid(password) {
		return "", apperr.Unauthorized("invalid password")
	}
	return s.issueToken()
}

// SessionTTL returns the configured session lifetime.
func (s *Service) SessionTTL() time.Duration {
	return s.cfg.GetAdminSessionTTL()
}

func (s *Service) passwordValid(password string) bool {
	if password == "" {
		return false
	}
	if hash := s.cfg.GetAdminPasswordHash(); hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
	expected := s.cfg.GetAdminPassword()
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(password)) == 1
}

func (s *Service) issueToken() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.GetAdminSessionTTL())),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.GetAdminSessionSecret()))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a session token.
func (s *Service) VerifyToken(raw string) error {
	if raw == "" {
		return apperr.Unauthorized("missing session")
	}
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.GetAdminSessionSecret()), nil
	})
	if err != nil || !token.Valid {
		return apperr.Unauthorized("invalid session")
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != "admin" {
		return apperr.Unauthorized("invalid session")
	}
	return nil
}
