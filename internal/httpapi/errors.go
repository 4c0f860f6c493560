package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Benjamindyer/brand-influencer-sub001/internal/audit"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/billing"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/market"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/obs"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// handleMarketError maps domain sentinels onto status codes. Anything
// unrecognised is an infrastructure failure: log it, answer a generic 500.
func handleMarketError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, market.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, market.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, market.ErrForbidden):
		writeErrorCode(w, r, http.StatusForbidden, "forbidden", "not allowed")
	case errors.Is(err, market.ErrInsufficientCredits):
		writeErrorCode(w, r, http.StatusPaymentRequired, "insufficient_credits", "no campaign credits remaining")
	case errors.Is(err, market.ErrProfileExists):
		writeErrorCode(w, r, http.StatusConflict, "profile_exists", "a profile already exists for this account")
	case errors.Is(err, market.ErrAlreadyApplied):
		writeErrorCode(w, r, http.StatusConflict, "already_applied", "application already submitted")
	case errors.Is(err, market.ErrAlreadyDecided):
		writeErrorCode(w, r, http.StatusConflict, "already_decided", "application already decided")
	case errors.Is(err, market.ErrBriefNotOpen):
		writeErrorCode(w, r, http.StatusConflict, "brief_not_open", "brief is not accepting applications")
	case errors.Is(err, market.ErrBriefFull):
		writeErrorCode(w, r, http.StatusConflict, "brief_full", "all slots are filled")
	case errors.Is(err, market.ErrInvalidTransition):
		writeErrorCode(w, r, http.StatusConflict, "invalid_transition", "brief cannot move to that status")
	case errors.Is(err, billing.ErrUnknownPrice):
		writeError(w, r, http.StatusBadRequest, "unknown price id")
	default:
		logger := obs.Logger()
		logger.Error().Err(err).
			Str("path", r.URL.Path).
			Str("request_id", audit.RequestIDFromContext(r.Context())).
			Msg("request failed")
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := audit.RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func writeErrorCode(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	payload := map[string]any{
		"error": msg,
		"code":  code,
	}
	if rid := audit.RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, status, payload)
}
