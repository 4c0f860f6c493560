package role

import "context"

// Binding ties an identity to its role and role-specific profile id.
type Binding struct {
	Role      Role   `json:"role"`
	ProfileID string `json:"profile_id"`
}

// Store looks up the role binding for an identity.
//
// GetRole returns (nil, nil) when the identity exists but has no profile yet
// (incomplete onboarding). Callers must treat that distinctly from an
// unauthenticated request. Profile creation enforces uniqueness on the
// identity id, so at most one binding can exist.
type Store interface {
	GetRole(ctx context.Context, identityID string) (*Binding, error)
}
