package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Benjamindyer/brand-influencer-sub001/internal/role"
)

// streamEvents handles Server-Sent Events for marketplace activity. Brands
// only receive events for their own briefs; admins see everything.
func (a *API) streamEvents(w http.ResponseWriter, r *http.Request) {
	b, ok := a.requireRole(w, r, role.Brand, role.Admin)
	if !ok {
		return
	}
	if a.events == nil {
		http.Error(w, "streaming disabled", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ch := a.events.Subscribe(ctx)

	// Send an initial comment to establish the stream
	_, _ = w.Write([]byte(": stream started\n\n"))
	flusher.Flush()

	for event := range ch {
		if b.Role == role.Brand && event.BrandProfileID != b.ProfileID {
			continue
		}
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		_, _ = w.Write([]byte("data: "))
		_, _ = w.Write(payload)
		_, _ = w.Write([]byte("\n\n"))
		flusher.Flush()
	}
}
