// Package httpapi is the HTTP surface of the marketplace: authentication,
// role-gated routing and JSON handlers over the market service.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Benjamindyer/brand-influencer-sub001/internal/billing"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/credits"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/identity"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/market"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/obs"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/role"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/stream"
)

// ReadyProbe checks dependencies before the service reports ready.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Deps carries the wiring for the API. Everything is injected; the package
// holds no globals beyond the metrics registry.
type Deps struct {
	Resolver *identity.Resolver
	Roles    role.Store
	Market   *market.Service
	Ledger   credits.Ledger
	Renewer  *billing.Renewer
	Events   *stream.Stream
	Ready    ReadyProbe
	Version  string
}

// API is the HTTP layer.
type API struct {
	mux      *http.ServeMux
	resolver *identity.Resolver
	roles    role.Store
	market   *market.Service
	ledger   credits.Ledger
	renewer  *billing.Renewer
	events   *stream.Stream
	ready    ReadyProbe
	version  string
}

func New(d Deps) *API {
	a := &API{
		mux:      http.NewServeMux(),
		resolver: d.Resolver,
		roles:    d.Roles,
		market:   d.Market,
		ledger:   d.Ledger,
		renewer:  d.Renewer,
		events:   d.Events,
		ready:    d.Ready,
		version:  d.Version,
	}

	// health/ready/info
	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.HandleFunc("GET /readyz", a.Ready)
	a.mux.HandleFunc("GET /v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("GET /metrics", obs.Handler())

	// session
	a.mux.HandleFunc("GET /v1/me", a.me)
	a.mux.HandleFunc("POST /v1/auth/signout", a.signOut)
	a.mux.HandleFunc("POST /v1/auth/password-reset", a.passwordReset)

	// profiles
	a.mux.HandleFunc("POST /v1/profiles/brand", a.createBrandProfile)
	a.mux.HandleFunc("GET /v1/profiles/brand/{id}", a.getBrandProfile)
	a.mux.HandleFunc("PUT /v1/profiles/brand/{id}", a.updateBrandProfile)
	a.mux.HandleFunc("POST /v1/profiles/creator", a.createCreatorProfile)
	a.mux.HandleFunc("GET /v1/profiles/creator/{id}", a.getCreatorProfile)
	a.mux.HandleFunc("PUT /v1/profiles/creator/{id}", a.updateCreatorProfile)

	// briefs and applications
	a.mux.HandleFunc("POST /v1/briefs", a.createBrief)
	a.mux.HandleFunc("GET /v1/briefs", a.listBriefs)
	a.mux.HandleFunc("GET /v1/briefs/{id}", a.getBrief)
	a.mux.HandleFunc("POST /v1/briefs/{id}/complete", a.completeBrief)
	a.mux.HandleFunc("POST /v1/briefs/{id}/cancel", a.cancelBrief)
	a.mux.HandleFunc("POST /v1/briefs/{id}/applications", a.applyToBrief)
	a.mux.HandleFunc("GET /v1/briefs/{id}/applications", a.listApplications)
	a.mux.HandleFunc("POST /v1/briefs/{id}/applications/{appID}/accept", a.acceptApplication)
	a.mux.HandleFunc("POST /v1/briefs/{id}/applications/{appID}/reject", a.rejectApplication)

	// credits and billing
	a.mux.HandleFunc("GET /v1/credits/balance", a.creditBalance)
	a.mux.HandleFunc("POST /v1/billing/activations", a.billingActivation)
	a.mux.HandleFunc("POST /v1/billing/renewals", a.billingRenewal)

	// live activity stream
	a.mux.HandleFunc("GET /v1/stream", a.streamEvents)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the full middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- service handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "marketplace-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.ready.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "marketplace-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
