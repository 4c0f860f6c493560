// Package audit emits structured audit entries for sensitive marketplace
// actions (credit movements, application decisions, profile changes).
package audit

import (
	"context"
	"errors"
	"strings"

	"github.com/Benjamindyer/brand-influencer-sub001/internal/identity"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/obs"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the audit request id from context if present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// LogEvent writes an audit log entry enriched with request and actor context.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("audit: event name is required")
	}

	logger := obs.Logger()
	entry := logger.Info().Str("type", "audit").Str("event", event)
	if rid := RequestIDFromContext(ctx); rid != "" {
		entry = entry.Str("request_id", rid)
	}
	if id, ok := identity.FromContext(ctx); ok {
		entry = entry.Str("user_id", id.ID)
	}
	for k, v := range fields {
		entry = entry.Interface(k, v)
	}
	entry.Msg("audit")
	return nil
}
