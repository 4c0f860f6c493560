package identity

import "context"

// Provider is the session-facing surface of the hosted auth provider.
//
// GetSession returns (nil, nil) when the credential does not correspond to a
// live session. It returns ErrProviderUnavailable (possibly wrapped) only
// when the provider itself is unreachable or misbehaving.
type Provider interface {
	GetSession(ctx context.Context, credential string) (*Session, error)
	SignOut(ctx context.Context, credential string) error
	ResetPasswordForEmail(ctx context.Context, email, redirectURL string) error
}
