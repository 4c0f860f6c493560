package httpapi

import (
	"net/http"
	"time"

	"github.com/Benjamindyer/brand-influencer-sub001/internal/audit"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/market"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/role"
)

type applyRequest struct {
	Message string `json:"message"`
}

type listBriefsResponse struct {
	Items []market.Brief `json:"items"`
	AsOf  time.Time      `json:"as_of"`
}

type listApplicationsResponse struct {
	Items []market.Application `json:"items"`
	AsOf  time.Time            `json:"as_of"`
}

type acceptResponse struct {
	Brief       market.Brief       `json:"brief"`
	Application market.Application `json:"application"`
}

func (a *API) createBrief(w http.ResponseWriter, r *http.Request) {
	b, ok := a.requireRole(w, r, role.Brand)
	if !ok {
		return
	}
	var req market.BriefInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	brief, err := a.market.CreateBrief(r.Context(), b.ProfileID, req)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "brief.create", map[string]any{
		"brief_id":         brief.ID,
		"brand_profile_id": brief.BrandProfileID,
	})

	w.Header().Set("Location", "/v1/briefs/"+brief.ID)
	writeJSON(w, http.StatusCreated, brief)
}

// listBriefs is role-aware: creators get their targeted feed, brands their
// own postings, admins everything open.
func (a *API) listBriefs(w http.ResponseWriter, r *http.Request) {
	b, ok := a.requireRole(w, r, role.All...)
	if !ok {
		return
	}

	var (
		items []market.Brief
		err   error
	)
	switch b.Role {
	case role.Creator:
		items, err = a.market.ListBriefsForCreator(r.Context(), b.ProfileID)
	case role.Brand:
		items, err = a.market.ListBriefsForBrand(r.Context(), b.ProfileID)
	case role.Admin:
		items, err = a.market.ListOpenBriefs(r.Context())
	}
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listBriefsResponse{Items: items, AsOf: time.Now().UTC()})
}

func (a *API) getBrief(w http.ResponseWriter, r *http.Request) {
	b, ok := a.requireRole(w, r, role.All...)
	if !ok {
		return
	}
	brief, err := a.market.GetBrief(r.Context(), b, r.PathValue("id"))
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, brief)
}

func (a *API) completeBrief(w http.ResponseWriter, r *http.Request) {
	b, ok := a.requireRole(w, r, role.Brand, role.Admin)
	if !ok {
		return
	}
	brief, err := a.market.CompleteBrief(r.Context(), b, r.PathValue("id"))
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "brief.complete", map[string]any{"brief_id": brief.ID})
	writeJSON(w, http.StatusOK, brief)
}

func (a *API) cancelBrief(w http.ResponseWriter, r *http.Request) {
	b, ok := a.requireRole(w, r, role.Brand, role.Admin)
	if !ok {
		return
	}
	brief, err := a.market.CancelBrief(r.Context(), b, r.PathValue("id"))
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "brief.cancel", map[string]any{"brief_id": brief.ID})
	writeJSON(w, http.StatusOK, brief)
}

func (a *API) applyToBrief(w http.ResponseWriter, r *http.Request) {
	b, ok := a.requireRole(w, r, role.Creator)
	if !ok {
		return
	}
	var req applyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	app, err := a.market.Apply(r.Context(), b.ProfileID, r.PathValue("id"), req.Message)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "application.submit", map[string]any{
		"application_id":     app.ID,
		"brief_id":           app.BriefID,
		"creator_profile_id": app.CreatorProfileID,
	})

	writeJSON(w, http.StatusCreated, app)
}

func (a *API) listApplications(w http.ResponseWriter, r *http.Request) {
	b, ok := a.requireRole(w, r, role.Brand, role.Admin)
	if !ok {
		return
	}
	items, err := a.market.ListApplications(r.Context(), b, r.PathValue("id"))
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listApplicationsResponse{Items: items, AsOf: time.Now().UTC()})
}

func (a *API) acceptApplication(w http.ResponseWriter, r *http.Request) {
	b, ok := a.requireRole(w, r, role.Brand, role.Admin)
	if !ok {
		return
	}
	brief, app, err := a.market.AcceptApplication(r.Context(), b, r.PathValue("id"), r.PathValue("appID"))
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "application.accept", map[string]any{
		"application_id": app.ID,
		"brief_id":       brief.ID,
		"brief_status":   string(brief.Status),
	})
	writeJSON(w, http.StatusOK, acceptResponse{Brief: brief, Application: app})
}

func (a *API) rejectApplication(w http.ResponseWriter, r *http.Request) {
	b, ok := a.requireRole(w, r, role.Brand, role.Admin)
	if !ok {
		return
	}
	app, err := a.market.RejectApplication(r.Context(), b, r.PathValue("id"), r.PathValue("appID"))
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "application.reject", map[string]any{
		"application_id": app.ID,
		"brief_id":       app.BriefID,
	})
	writeJSON(w, http.StatusOK, app)
}
