package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Benjamindyer/brand-influencer-sub001/internal/audit"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/credits"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/role"
)

type balanceResponse struct {
	BrandProfileID  string `json:"brand_profile_id"`
	CampaignCredits int    `json:"campaign_credits"`
}

type billingRequest struct {
	BrandProfileID string `json:"brand_profile_id"`
	PriceID        string `json:"price_id"`
}

type billingResponse struct {
	BrandProfileID string `json:"brand_profile_id"`
	Credits        int    `json:"credits"`
}

// creditBalance reports the caller's own balance; admins may inspect any
// brand via the brand_profile_id query parameter.
func (a *API) creditBalance(w http.ResponseWriter, r *http.Request) {
	b, ok := a.requireRole(w, r, role.Brand, role.Admin)
	if !ok {
		return
	}

	target := b.ProfileID
	if b.Role == role.Admin {
		target = strings.TrimSpace(r.URL.Query().Get("brand_profile_id"))
		if target == "" {
			writeError(w, r, http.StatusBadRequest, "brand_profile_id query parameter is required")
			return
		}
	}

	bal, err := a.ledger.Balance(r.Context(), target)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{BrandProfileID: target, CampaignCredits: bal})
}

// billingActivation provisions a subscription after checkout. Driven by the
// payment provider's webhook relay, hence admin-only.
func (a *API) billingActivation(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireRole(w, r, role.Admin); !ok {
		return
	}
	req, ok := a.decodeBillingRequest(w, r)
	if !ok {
		return
	}

	granted, err := a.renewer.Activate(r.Context(), req.BrandProfileID, req.PriceID)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "billing.activate", map[string]any{
		"brand_profile_id": req.BrandProfileID,
		"credits":          granted,
	})

	writeJSON(w, http.StatusCreated, billingResponse{BrandProfileID: req.BrandProfileID, Credits: granted})
}

// billingRenewal applies a period renewal's credit allowance.
func (a *API) billingRenewal(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireRole(w, r, role.Admin); !ok {
		return
	}
	req, ok := a.decodeBillingRequest(w, r)
	if !ok {
		return
	}

	granted, err := a.renewer.Renew(r.Context(), req.BrandProfileID, req.PriceID)
	if err != nil {
		if errors.Is(err, credits.ErrNoSubscription) {
			writeError(w, r, http.StatusNotFound, "no subscription for brand")
			return
		}
		handleMarketError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "billing.renew", map[string]any{
		"brand_profile_id": req.BrandProfileID,
		"credits":          granted,
	})

	writeJSON(w, http.StatusOK, billingResponse{BrandProfileID: req.BrandProfileID, Credits: granted})
}

func (a *API) decodeBillingRequest(w http.ResponseWriter, r *http.Request) (billingRequest, bool) {
	if a.renewer == nil {
		writeError(w, r, http.StatusServiceUnavailable, "billing disabled")
		return billingRequest{}, false
	}
	var req billingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return billingRequest{}, false
	}
	if strings.TrimSpace(req.BrandProfileID) == "" || strings.TrimSpace(req.PriceID) == "" {
		writeError(w, r, http.StatusBadRequest, "brand_profile_id and price_id are required")
		return billingRequest{}, false
	}
	return req, true
}
