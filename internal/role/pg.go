package role

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// PGStore resolves role bindings from the profiles table. The table carries a
// unique constraint on user_id, so the lookup yields at most one row.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

// NewPGStore wraps an existing database handle.
func NewPGStore(db *sql.DB) (*PGStore, error) {
	if db == nil {
		return nil, errors.New("role: db handle is required")
	}
	return &PGStore{db: db}, nil
}

func (s *PGStore) GetRole(ctx context.Context, identityID string) (*Binding, error) {
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return nil, nil
	}

	var (
		roleName  string
		profileID string
	)
	err := s.db.QueryRowContext(ctx,
		`select role, id from profiles where user_id = $1`,
		identityID,
	).Scan(&roleName, &profileID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("role: lookup profile for %s: %w", identityID, err)
	}

	r, err := Parse(roleName)
	if err != nil {
		// A row with an unknown role means the closed enumeration and the
		// schema have drifted; surface it rather than guessing.
		return nil, err
	}
	return &Binding{Role: r, ProfileID: profileID}, nil
}
