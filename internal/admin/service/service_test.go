package service

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bakery_quote_backend/platform/apperr"
)

type fakeConfig struct {
	password string
	hash     string
	secret   string
	ttl      time.Duration
}

func (f fakeConfig) GetAdminPassword() string        { return f.password }
func (f fakeConfig) GetAdminPasswordHash() string    { return f.hash }
func (f fakeConfig) GetAdminSessionSecret() string   { return f.secret }
func (f fakeConfig) GetAdminSessionTTL() time.Duration {
	if f.ttl == 0 {
		return time.Hour
	}
	return f.ttl
}

func TestLoginAndVerify(t *testing.T) {
	svc := New(fakeConfig{password: "letmein", secret: "test-secret"})

	token, err := svc.Login("letmein")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.VerifyToken(token); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := New(fakeConfig{password: "letmein", secret: "test-secret"})

	for _, pw := range []string{"", "wrong", "LETMEIN"} {
		_, err := svc.Login(pw)
		if !apperr.Is(err, apperr.KindUnauthorized) {
			t.Fatalf("Login(%q) err = %v, want unauthorized", pw, err)
		}
	}
}

func TestLoginWithBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	svc := New(fakeConfig{hash: string(hash), secret: "test-secret"})

	if _, err := svc.Login("s3cret"); err != nil {
		t.Fatalf("login with correct password failed: %v", err)
	}
	if _, err := svc.Login("nope"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("login with wrong password err = %v, want unauthorized", err)
	}
}

func TestVerifyTokenRejectsGarbageAndForeignSignatures(t *testing.T) {
	svc := New(fakeConfig{password: "pw", secret: "secret-a"})
	other := New(fakeConfig{password: "pw", secret: "secret-b"})

	foreign, err := other.Login("pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	for _, token := range []string{"", "not.a.jwt", foreign} {
		if err := svc.VerifyToken(token); err == nil {
			t.Fatalf("VerifyToken(%q) accepted an invalid token", token)
		}
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := New(fakeConfig{password: "pw", secret: "secret", ttl: -time.Minute})
	token, err := svc.Login("pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.VerifyToken(token); err == nil {
		t.Fatalf("expired token accepted")
	}
}
