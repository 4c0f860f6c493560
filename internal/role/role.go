// Package role maps an authenticated identity onto its marketplace role and
// role-specific profile. Every identity has at most one profile; a missing
// profile is a normal nil result distinct from "unauthenticated".
package role

import (
	"fmt"
	"strings"
)

// Role is a closed enumeration of marketplace roles. The zero value is not a
// valid role; authorization treats it as "no role established".
type Role uint8

const (
	Creator Role = iota + 1
	Brand
	Admin
)

// All lists every valid role; tests and exhaustive checks iterate over it.
var All = []Role{Creator, Brand, Admin}

// Parse converts the stored role string into a Role.
func Parse(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "creator":
		return Creator, nil
	case "brand":
		return Brand, nil
	case "admin":
		return Admin, nil
	default:
		return 0, fmt.Errorf("role: unknown role %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case Creator:
		return "creator"
	case Brand:
		return "brand"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the closed set of roles.
func (r Role) Valid() bool {
	switch r {
	case Creator, Brand, Admin:
		return true
	default:
		return false
	}
}

// MarshalText makes Role render as its lower-case name in JSON payloads.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("role: cannot marshal invalid role %d", r)
	}
	return []byte(r.String()), nil
}

// UnmarshalText parses the lower-case role name.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
