// Package authz is the authorization guard: a pure decision over a resolved
// role and a required role set. Every handler goes through this single gate.
package authz

import (
	"github.com/Benjamindyer/brand-influencer-sub001/internal/role"
)

// DenyReason distinguishes the two deny outcomes; callers map them to
// distinct observable responses (401 vs 403).
type DenyReason uint8

const (
	// ReasonUnauthenticated: no role could be established for the caller.
	ReasonUnauthenticated DenyReason = iota + 1
	// ReasonForbidden: the caller has a role, but not one of the required ones.
	ReasonForbidden
)

func (r DenyReason) String() string {
	switch r {
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason // set only when !Allowed
}

// Authorize decides whether actual may act where one of required is needed.
// Rules, in order: no valid role denies as unauthenticated; membership in the
// required set allows; anything else denies as forbidden. A role outside the
// closed set always lands in the default branch and denies.
func Authorize(actual role.Role, required ...role.Role) Decision {
	switch actual {
	case role.Creator, role.Brand, role.Admin:
	default:
		return Decision{Reason: ReasonUnauthenticated}
	}

	for _, req := range required {
		if actual == req {
			return Decision{Allowed: true}
		}
	}
	return Decision{Reason: ReasonForbidden}
}
