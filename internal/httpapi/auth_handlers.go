package httpapi

import (
	"net/http"

	"github.com/Benjamindyer/brand-influencer-sub001/internal/audit"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/obs"
)

type passwordResetRequest struct {
	Email       string `json:"email"`
	RedirectURL string `json:"redirect_url"`
}

// signOut revokes the caller's session at the identity provider.
func (a *API) signOut(w http.ResponseWriter, r *http.Request) {
	cred, err := credentialFromRequest(r)
	if err != nil {
		writeErrorCode(w, r, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}
	if err := a.resolver.SignOut(r.Context(), cred); err != nil {
		logger := obs.Logger()
		logger.Error().Err(err).Msg("sign-out failed")
		writeError(w, r, http.StatusInternalServerError, "sign-out unavailable")
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.signout", nil)
	w.WriteHeader(http.StatusNoContent)
}

// passwordReset starts the provider's reset flow. The response does not
// reveal whether the address has an account.
func (a *API) passwordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.resolver.ResetPasswordForEmail(r.Context(), req.Email, req.RedirectURL); err != nil {
		logger := obs.Logger()
		logger.Warn().Err(err).Msg("password reset request failed")
		writeError(w, r, http.StatusBadRequest, "could not start password reset")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "sent"})
}
