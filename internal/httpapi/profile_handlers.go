package httpapi

import (
	"net/http"

	"github.com/Benjamindyer/brand-influencer-sub001/internal/audit"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/market"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/role"
)

type meResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	ProfileID string `json:"profile_id,omitempty"`
}

// me reports who the caller is. A missing role means the account exists but
// onboarding has not finished.
func (a *API) me(w http.ResponseWriter, r *http.Request) {
	id, ok := a.requireIdentity(w, r)
	if !ok {
		return
	}
	resp := meResponse{UserID: id.ID, Email: id.Email}
	if b, ok := role.BindingFromContext(r.Context()); ok {
		resp.Role = b.Role.String()
		resp.ProfileID = b.ProfileID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) createBrandProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := a.requireIdentity(w, r)
	if !ok {
		return
	}
	var req market.BrandProfileInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	p, err := a.market.CreateBrandProfile(r.Context(), id.ID, req)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "profile.brand.create", map[string]any{
		"profile_id": p.ID,
	})

	w.Header().Set("Location", "/v1/profiles/brand/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) getBrandProfile(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireRole(w, r, role.All...); !ok {
		return
	}
	p, err := a.market.GetBrandProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) updateBrandProfile(w http.ResponseWriter, r *http.Request) {
	b, ok := a.requireRole(w, r, role.Brand, role.Admin)
	if !ok {
		return
	}
	var req market.BrandProfileInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := a.market.UpdateBrandProfile(r.Context(), b, r.PathValue("id"), req)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) createCreatorProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := a.requireIdentity(w, r)
	if !ok {
		return
	}
	var req market.CreatorProfileInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	p, err := a.market.CreateCreatorProfile(r.Context(), id.ID, req)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "profile.creator.create", map[string]any{
		"profile_id": p.ID,
	})

	w.Header().Set("Location", "/v1/profiles/creator/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) getCreatorProfile(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireRole(w, r, role.All...); !ok {
		return
	}
	p, err := a.market.GetCreatorProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) updateCreatorProfile(w http.ResponseWriter, r *http.Request) {
	b, ok := a.requireRole(w, r, role.Creator, role.Admin)
	if !ok {
		return
	}
	var req market.CreatorProfileInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := a.market.UpdateCreatorProfile(r.Context(), b, r.PathValue("id"), req)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
