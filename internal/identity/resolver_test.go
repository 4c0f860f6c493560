package identity

import (
	"context"
	"errors"
	"testing"
)

type stubProvider struct {
	sess *Session
	err  error
}

func (s *stubProvider) GetSession(ctx context.Context, credential string) (*Session, error) {
	return s.sess, s.err
}
func (s *stubProvider) SignOut(ctx context.Context, credential string) error { return s.err }
func (s *stubProvider) ResetPasswordForEmail(ctx context.Context, email, redirectURL string) error {
	return s.err
}

func TestResolveAnonymousIsNotAnError(t *testing.T) {
	r, err := NewResolver(&stubProvider{})
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	// No credential at all.
	id, err := r.Resolve(context.Background(), "")
	if err != nil || id != nil {
		t.Fatalf("expected nil identity without error, got id=%v err=%v", id, err)
	}

	// Credential present but session dead.
	id, err = r.Resolve(context.Background(), "stale-token")
	if err != nil || id != nil {
		t.Fatalf("expected nil identity without error, got id=%v err=%v", id, err)
	}
}

func TestResolveReturnsIdentity(t *testing.T) {
	r, err := NewResolver(&stubProvider{sess: &Session{UserID: "user-1", Email: "a@b.c"}})
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	id, err := r.Resolve(context.Background(), "token")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id == nil || id.ID != "user-1" || id.Email != "a@b.c" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestResolveWrapsProviderFailures(t *testing.T) {
	r, err := NewResolver(&stubProvider{err: errors.New("connection refused")})
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	if _, err := r.Resolve(context.Background(), "token"); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}
