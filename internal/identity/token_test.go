package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, secret, subject, email string, ttl time.Duration) string {
	t.Helper()
	now := time.Now().UTC()
	claims := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestTokenProviderValidSession(t *testing.T) {
	p, err := NewTokenProvider("test-secret", nil)
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}

	token := signTestToken(t, "test-secret", "user-42", "Creator@Example.com", time.Hour)
	sess, err := p.GetSession(context.Background(), token)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if sess == nil {
		t.Fatal("expected session")
	}
	if sess.UserID != "user-42" {
		t.Fatalf("unexpected user id: %s", sess.UserID)
	}
	if sess.Email != "creator@example.com" {
		t.Fatalf("expected lower-cased email, got %s", sess.Email)
	}
}

func TestTokenProviderRejectsAsNoSession(t *testing.T) {
	p, err := NewTokenProvider("test-secret", nil)
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	ctx := context.Background()

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"expired":      signTestToken(t, "test-secret", "user-42", "", -time.Minute),
		"wrong secret": signTestToken(t, "other-secret", "user-42", "", time.Hour),
		"no subject":   signTestToken(t, "test-secret", "", "", time.Hour),
	}
	for name, token := range cases {
		sess, err := p.GetSession(ctx, token)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if sess != nil {
			t.Fatalf("%s: expected no session, got %+v", name, sess)
		}
	}
}

func TestTokenProviderSignOutWithoutNextIsNoop(t *testing.T) {
	p, err := NewTokenProvider("test-secret", nil)
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	if err := p.SignOut(context.Background(), "whatever"); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if err := p.ResetPasswordForEmail(context.Background(), "a@b.c", ""); err == nil {
		t.Fatal("expected password reset to fail without a provider client")
	}
}
