package market

import (
	"context"
	"errors"

	"github.com/Benjamindyer/brand-influencer-sub001/internal/role"
)

// RoleDirectory adapts the marketplace store to the role lookup interface,
// used when no dedicated role table is available (memory mode). A user's
// role follows from which kind of profile they own.
type RoleDirectory struct {
	store Store
}

var _ role.Store = (*RoleDirectory)(nil)

// NewRoleDirectory wraps a marketplace store.
func NewRoleDirectory(store Store) *RoleDirectory {
	return &RoleDirectory{store: store}
}

// GetRole returns the binding for the identity, or nil when no profile
// exists yet.
func (d *RoleDirectory) GetRole(ctx context.Context, identityID string) (*role.Binding, error) {
	if p, err := d.store.GetBrandProfileByUser(ctx, identityID); err == nil {
		return &role.Binding{Role: role.Brand, ProfileID: p.ID}, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if p, err := d.store.GetCreatorProfileByUser(ctx, identityID); err == nil {
		return &role.Binding{Role: role.Creator, ProfileID: p.ID}, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return nil, nil
}
