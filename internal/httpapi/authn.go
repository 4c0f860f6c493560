package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Benjamindyer/brand-influencer-sub001/internal/authz"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/identity"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/obs"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/role"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// withAuth resolves the bearer credential into an identity and, when a
// profile exists, a role binding. Anonymous requests pass through with an
// empty context; each route decides what it requires.
func (a *API) withAuth(next http.Handler) http.Handler {
	if a.resolver == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		cred := bearerToken(r.Header.Get(authHeader))
		if cred == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := a.resolver.Resolve(r.Context(), cred)
		if err != nil {
			logger := obs.Logger()
			logger.Error().Err(err).Msg("identity resolution failed")
			writeError(w, r, http.StatusInternalServerError, "authentication unavailable")
			return
		}
		if id == nil {
			// Stale or revoked token: treat as anonymous rather than erroring,
			// so public routes still work with an expired session.
			next.ServeHTTP(w, r)
			return
		}

		ctx := identity.ContextWithIdentity(r.Context(), *id)
		if a.roles != nil {
			binding, err := a.roles.GetRole(ctx, id.ID)
			if err != nil {
				logger := obs.Logger()
				logger.Error().Err(err).Str("user_id", id.ID).Msg("role lookup failed")
				writeError(w, r, http.StatusInternalServerError, "authorization unavailable")
				return
			}
			if binding != nil {
				ctx = role.ContextWithBinding(ctx, *binding)
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireIdentity returns the authenticated identity or writes a 401.
func (a *API) requireIdentity(w http.ResponseWriter, r *http.Request) (identity.Identity, bool) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		writeErrorCode(w, r, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return identity.Identity{}, false
	}
	return id, true
}

// requireRole enforces that the caller holds one of the required roles.
// An authenticated caller without a profile gets a 403 with a
// profile_required code so clients can route to onboarding.
func (a *API) requireRole(w http.ResponseWriter, r *http.Request, required ...role.Role) (role.Binding, bool) {
	b, ok := role.BindingFromContext(r.Context())
	if !ok {
		if _, authed := identity.FromContext(r.Context()); authed {
			writeErrorCode(w, r, http.StatusForbidden, "profile_required", "create a profile to continue")
		} else {
			writeErrorCode(w, r, http.StatusUnauthorized, "unauthenticated", "authentication required")
		}
		return role.Binding{}, false
	}
	d := authz.Authorize(b.Role, required...)
	if !d.Allowed {
		switch d.Reason {
		case authz.ReasonUnauthenticated:
			writeErrorCode(w, r, http.StatusUnauthorized, "unauthenticated", "authentication required")
		default:
			writeErrorCode(w, r, http.StatusForbidden, "forbidden", "insufficient role")
		}
		return role.Binding{}, false
	}
	return b, true
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return ""
	}
	return strings.TrimSpace(header[len(bearer):])
}

var errNoCredential = errors.New("httpapi: no credential")

// credentialFromRequest returns the raw bearer token for provider calls
// (sign-out needs the original credential, not the resolved identity).
func credentialFromRequest(r *http.Request) (string, error) {
	cred := bearerToken(r.Header.Get(authHeader))
	if cred == "" {
		return "", errNoCredential
	}
	return cred, nil
}
