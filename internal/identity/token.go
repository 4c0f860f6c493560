package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionClaims mirrors the claims the hosted provider embeds in its HS256
// access tokens. Subject carries the external user id.
type sessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenProvider verifies provider-issued access tokens locally instead of
// calling the provider on every request. Sign-out and password-reset calls
// still require the network-facing provider and are passed through to next.
type TokenProvider struct {
	secret []byte
	next   Provider
}

// NewTokenProvider constructs a TokenProvider. next may be nil; in that case
// SignOut becomes a no-op (the tokens are stateless) and password resets fail.
func NewTokenProvider(secret string, next Provider) (*TokenProvider, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("identity: token secret is required")
	}
	return &TokenProvider{secret: []byte(secret), next: next}, nil
}

// GetSession verifies the access token signature and timestamps. Any
// verification failure means "no session", never an error.
func (p *TokenProvider) GetSession(ctx context.Context, credential string) (*Session, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, nil
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(credential, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, nil
	}
	if err := validateSessionClaims(&claims); err != nil {
		return nil, nil
	}
	return &Session{UserID: claims.Subject, Email: strings.ToLower(claims.Email)}, nil
}

// SignOut delegates to the provider when one is configured. With stateless
// tokens and no provider there is nothing to revoke server-side.
func (p *TokenProvider) SignOut(ctx context.Context, credential string) error {
	if p.next == nil {
		return nil
	}
	return p.next.SignOut(ctx, credential)
}

// ResetPasswordForEmail always needs the provider; local verification cannot
// start a reset flow.
func (p *TokenProvider) ResetPasswordForEmail(ctx context.Context, email, redirectURL string) error {
	if p.next == nil {
		return errors.New("identity: password reset requires a provider client")
	}
	return p.next.ResetPasswordForEmail(ctx, email, redirectURL)
}

func validateSessionClaims(claims *sessionClaims) error {
	if strings.TrimSpace(claims.Subject) == "" {
		return errors.New("subject missing")
	}
	if claims.ExpiresAt == nil {
		return errors.New("expiry missing")
	}
	now := time.Now().UTC()
	if now.After(claims.ExpiresAt.Time) {
		return errors.New("token expired")
	}
	if claims.NotBefore != nil && now.Before(claims.NotBefore.Time) {
		return errors.New("token not yet valid")
	}
	// Allow a small clock skew of 5 seconds when validating issued-at.
	if claims.IssuedAt != nil && claims.IssuedAt.Time.After(now.Add(5*time.Second)) {
		return errors.New("token issued in the future")
	}
	return nil
}
