package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Resolver turns a raw request credential into an authenticated Identity.
type Resolver struct {
	provider Provider
}

// NewResolver constructs a Resolver over the given provider client.
func NewResolver(provider Provider) (*Resolver, error) {
	if provider == nil {
		return nil, errors.New("identity: provider is required")
	}
	return &Resolver{provider: provider}, nil
}

// Resolve returns the identity behind the credential, or nil when the request
// is anonymous. "No session present" is an expected nil result, not an error.
func (r *Resolver) Resolve(ctx context.Context, credential string) (*Identity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, nil
	}
	sess, err := r.provider.GetSession(ctx, credential)
	if err != nil {
		if errors.Is(err, ErrProviderUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if sess == nil {
		return nil, nil
	}
	return &Identity{ID: sess.UserID, Email: sess.Email}, nil
}

// SignOut revokes the session behind the credential at the provider.
func (r *Resolver) SignOut(ctx context.Context, credential string) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil
	}
	return r.provider.SignOut(ctx, credential)
}

// ResetPasswordForEmail asks the provider to start a password reset flow.
func (r *Resolver) ResetPasswordForEmail(ctx context.Context, email, redirectURL string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return errors.New("identity: valid email is required")
	}
	return r.provider.ResetPasswordForEmail(ctx, email, redirectURL)
}
