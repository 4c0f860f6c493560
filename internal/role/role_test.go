package role

import (
	"context"
	"encoding/json"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	for _, r := range All {
		parsed, err := Parse(r.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", r.String(), err)
		}
		if parsed != r {
			t.Fatalf("round trip mismatch: %v != %v", parsed, r)
		}
	}
	if _, err := Parse("superuser"); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if Role(0).Valid() {
		t.Fatal("zero role must not be valid")
	}
}

func TestRoleJSON(t *testing.T) {
	b, err := json.Marshal(Brand)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"brand"` {
		t.Fatalf("unexpected JSON: %s", b)
	}

	var r Role
	if err := json.Unmarshal([]byte(`"creator"`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r != Creator {
		t.Fatalf("unexpected role: %v", r)
	}
}

func TestMemoryStoreDistinguishesMissingProfile(t *testing.T) {
	s := NewMemoryStore()
	s.Put("user-with-profile", Binding{Role: Creator, ProfileID: "prf_1"})

	b, err := s.GetRole(context.Background(), "user-with-profile")
	if err != nil {
		t.Fatalf("GetRole: %v", err)
	}
	if b == nil || b.Role != Creator || b.ProfileID != "prf_1" {
		t.Fatalf("unexpected binding: %+v", b)
	}

	// Identity exists upstream but never completed onboarding.
	b, err = s.GetRole(context.Background(), "user-without-profile")
	if err != nil {
		t.Fatalf("GetRole: %v", err)
	}
	if b != nil {
		t.Fatalf("expected nil binding for profile-less identity, got %+v", b)
	}
}
