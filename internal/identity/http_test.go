package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPProviderGetSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("apikey") != "anon-key" {
			t.Fatalf("missing apikey header")
		}
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"user-9","email":"Brand@Example.com"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(srv.URL, "anon-key", WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewHTTPProvider: %v", err)
	}

	sess, err := p.GetSession(context.Background(), "good")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if sess == nil || sess.UserID != "user-9" || sess.Email != "brand@example.com" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	sess, err = p.GetSession(context.Background(), "bad")
	if err != nil {
		t.Fatalf("GetSession with dead credential: %v", err)
	}
	if sess != nil {
		t.Fatalf("expected no session, got %+v", sess)
	}
}

func TestHTTPProviderSurfacesOutage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(srv.URL, "", WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewHTTPProvider: %v", err)
	}

	if _, err := p.GetSession(context.Background(), "token"); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestHTTPProviderResetPassword(t *testing.T) {
	var gotRedirect string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/recover" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		gotRedirect = r.URL.Query().Get("redirect_to")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(srv.URL, "", WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewHTTPProvider: %v", err)
	}
	if err := p.ResetPasswordForEmail(context.Background(), "x@y.z", "https://app.example/reset"); err != nil {
		t.Fatalf("ResetPasswordForEmail: %v", err)
	}
	if gotRedirect != "https://app.example/reset" {
		t.Fatalf("unexpected redirect_to: %s", gotRedirect)
	}
}
