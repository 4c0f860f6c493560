package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPProvider talks to the hosted auth provider over its REST surface.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// HTTPOption configures an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithHTTPClient overrides the underlying http.Client (useful in tests).
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		if c != nil {
			p.client = c
		}
	}
}

// NewHTTPProvider constructs a provider client for the given base URL.
func NewHTTPProvider(baseURL, apiKey string, opts ...HTTPOption) (*HTTPProvider, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("identity: provider base URL is required")
	}
	p := &HTTPProvider{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// GetSession asks the provider who owns the credential. A 401/403/404
// response is a normal "no session" result.
func (p *HTTPProvider) GetSession(ctx context.Context, credential string) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	p.decorate(req, credential)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode user: %v", ErrProviderUnavailable, err)
	}
	if strings.TrimSpace(payload.ID) == "" {
		return nil, fmt.Errorf("%w: user response missing id", ErrProviderUnavailable)
	}
	return &Session{UserID: payload.ID, Email: strings.ToLower(payload.Email)}, nil
}

// SignOut revokes the session at the provider.
func (p *HTTPProvider) SignOut(ctx context.Context, credential string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	p.decorate(req, credential)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	// An already-dead session is fine; only provider failures are errors.
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: unexpected status %d", ErrProviderUnavailable, resp.StatusCode)
	}
	return nil
}

// ResetPasswordForEmail starts the provider's password recovery flow.
func (p *HTTPProvider) ResetPasswordForEmail(ctx context.Context, email, redirectURL string) error {
	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return err
	}

	endpoint := p.baseURL + "/auth/v1/recover"
	if redirectURL != "" {
		endpoint += "?redirect_to=" + url.QueryEscape(redirectURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	p.decorate(req, "")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: unexpected status %d", ErrProviderUnavailable, resp.StatusCode)
	}
	return nil
}

func (p *HTTPProvider) decorate(req *http.Request, credential string) {
	if p.apiKey != "" {
		req.Header.Set("apikey", p.apiKey)
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}
}
