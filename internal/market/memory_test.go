package market

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedBrief(t *testing.T, m *MemoryStore, id string, status BriefStatus, created time.Time) Brief {
	t.Helper()
	b := Brief{
		ID:                  id,
		BrandProfileID:      "prf_brand",
		Title:               id,
		Targeting:           Targeting{Trade: "plumbing"},
		NumCreatorsRequired: 1,
		Status:              status,
		CreatedAt:           created,
		UpdatedAt:           created,
	}
	if err := m.CreateBrief(context.Background(), &b); err != nil {
		t.Fatalf("CreateBrief: %v", err)
	}
	return b
}

func TestMemoryListOpenBriefsNewestFirst(t *testing.T) {
	m := NewMemoryStore()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	seedBrief(t, m, "brf_old", BriefOpen, base)
	seedBrief(t, m, "brf_new", BriefOpen, base.Add(time.Hour))
	seedBrief(t, m, "brf_done", BriefCompleted, base.Add(2*time.Hour))

	got, err := m.ListOpenBriefs(context.Background(), BriefFilter{})
	if err != nil {
		t.Fatalf("ListOpenBriefs: %v", err)
	}
	if len(got) != 2 || got[0].ID != "brf_new" || got[1].ID != "brf_old" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestMemoryAcceptChecksBriefMembership(t *testing.T) {
	m := NewMemoryStore()
	now := time.Now().UTC()
	seedBrief(t, m, "brf_a", BriefOpen, now)
	seedBrief(t, m, "brf_b", BriefOpen, now)

	a := Application{ID: "app_1", BriefID: "brf_a", CreatorProfileID: "prf_c", Status: ApplicationPending, CreatedAt: now}
	if err := m.CreateApplication(context.Background(), &a); err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}

	// The application belongs to brf_a; accepting it under brf_b must fail.
	if _, _, err := m.AcceptApplication(context.Background(), "brf_b", "app_1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := m.RejectApplication(context.Background(), "brf_b", "app_1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryApplicationOnMissingBrief(t *testing.T) {
	m := NewMemoryStore()
	a := Application{ID: "app_1", BriefID: "brf_ghost", CreatorProfileID: "prf_c", Status: ApplicationPending}
	if err := m.CreateApplication(context.Background(), &a); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryTransitionGuard(t *testing.T) {
	m := NewMemoryStore()
	seedBrief(t, m, "brf_a", BriefOpen, time.Now().UTC())

	if _, err := m.TransitionBrief(context.Background(), "brf_a", []BriefStatus{BriefFull}, BriefCompleted); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	b, err := m.TransitionBrief(context.Background(), "brf_a", []BriefStatus{BriefOpen, BriefFull}, BriefCancelled)
	if err != nil {
		t.Fatalf("TransitionBrief: %v", err)
	}
	if b.Status != BriefCancelled {
		t.Fatalf("expected cancelled, got %s", b.Status)
	}
}
