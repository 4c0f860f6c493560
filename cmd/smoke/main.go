// Command smoke exercises a running marketplace API end to end: onboarding,
// subscription activation, brief posting, application and acceptance. It
// needs the server's JWT secret to mint test sessions, so it is only usable
// against development deployments.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type client struct {
	base string
	http *http.Client
}

func (c *client) do(method, path, token string, body, out any) (int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, err
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w (%s)", method, path, err, data)
		}
	}
	return resp.StatusCode, nil
}

func mintToken(secret, subject string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": subject + "@smoke.test",
		"iat":   now.Unix(),
		"exp":   now.Add(15 * time.Minute).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func main() {
	base := os.Getenv("MKT_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	secret := os.Getenv("MKT_AUTH_JWT_SECRET")
	if secret == "" {
		log.Fatal("MKT_AUTH_JWT_SECRET is required to mint smoke sessions")
	}
	priceID := os.Getenv("MKT_SMOKE_PRICE_ID")
	if priceID == "" {
		log.Fatal("MKT_SMOKE_PRICE_ID is required (any configured tier price id)")
	}

	c := &client{base: base, http: &http.Client{Timeout: 10 * time.Second}}
	run := rand.Int63()

	brandToken, err := mintToken(secret, fmt.Sprintf("smoke-brand-%d", run))
	if err != nil {
		log.Fatalf("mint brand token: %v", err)
	}
	creatorToken, err := mintToken(secret, fmt.Sprintf("smoke-creator-%d", run))
	if err != nil {
		log.Fatalf("mint creator token: %v", err)
	}
	// The seeded development admin drives billing endpoints.
	adminToken, err := mintToken(secret, "dev-admin")
	if err != nil {
		log.Fatalf("mint admin token: %v", err)
	}

	var brand struct {
		ID string `json:"id"`
	}
	code, err := c.do(http.MethodPost, "/v1/profiles/brand", brandToken,
		map[string]string{"company_name": fmt.Sprintf("Smoke Co %d", run)}, &brand)
	if err != nil || code != http.StatusCreated {
		log.Fatalf("create brand profile: code=%d err=%v", code, err)
	}

	var creator struct {
		ID string `json:"id"`
	}
	code, err = c.do(http.MethodPost, "/v1/profiles/creator", creatorToken, map[string]any{
		"display_name": "Smoke Creator",
		"trade":        "plumbing",
		"followers":    5000,
	}, &creator)
	if err != nil || code != http.StatusCreated {
		log.Fatalf("create creator profile: code=%d err=%v", code, err)
	}

	code, err = c.do(http.MethodPost, "/v1/billing/activations", adminToken, map[string]string{
		"brand_profile_id": brand.ID,
		"price_id":         priceID,
	}, nil)
	if err != nil || code != http.StatusCreated {
		log.Fatalf("activate subscription: code=%d err=%v", code, err)
	}

	var brief struct {
		ID string `json:"id"`
	}
	code, err = c.do(http.MethodPost, "/v1/briefs", brandToken, map[string]any{
		"title":                 "Smoke brief",
		"targeting":             map[string]any{"trade": "plumbing"},
		"num_creators_required": 1,
	}, &brief)
	if err != nil || code != http.StatusCreated {
		log.Fatalf("create brief: code=%d err=%v", code, err)
	}

	var feed struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	code, err = c.do(http.MethodGet, "/v1/briefs", creatorToken, nil, &feed)
	if err != nil || code != http.StatusOK {
		log.Fatalf("creator feed: code=%d err=%v", code, err)
	}
	found := false
	for _, item := range feed.Items {
		if item.ID == brief.ID {
			found = true
		}
	}
	if !found {
		log.Fatalf("brief %s missing from creator feed", brief.ID)
	}

	var app struct {
		ID string `json:"id"`
	}
	code, err = c.do(http.MethodPost, "/v1/briefs/"+brief.ID+"/applications", creatorToken,
		map[string]string{"message": "smoke"}, &app)
	if err != nil || code != http.StatusCreated {
		log.Fatalf("apply: code=%d err=%v", code, err)
	}

	var accepted struct {
		Brief struct {
			Status string `json:"status"`
		} `json:"brief"`
	}
	code, err = c.do(http.MethodPost, "/v1/briefs/"+brief.ID+"/applications/"+app.ID+"/accept", brandToken, nil, &accepted)
	if err != nil || code != http.StatusOK {
		log.Fatalf("accept: code=%d err=%v", code, err)
	}
	if accepted.Brief.Status != "full" {
		log.Fatalf("expected full brief after acceptance, got %q", accepted.Brief.Status)
	}

	var bal struct {
		CampaignCredits int `json:"campaign_credits"`
	}
	code, err = c.do(http.MethodGet, "/v1/credits/balance", brandToken, nil, &bal)
	if err != nil || code != http.StatusOK {
		log.Fatalf("balance: code=%d err=%v", code, err)
	}

	fmt.Printf("smoke test passed: brief=%s application=%s credits_left=%d\n", brief.ID, app.ID, bal.CampaignCredits)
}
