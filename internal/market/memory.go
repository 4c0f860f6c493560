package market

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-process Store. It backs tests and the
// no-database development mode and honours the same invariants as the
// Postgres store, including the atomic slot re-check on acceptance.
type MemoryStore struct {
	mu sync.Mutex

	brands         map[string]BrandProfile
	brandsByUser   map[string]string
	creators       map[string]CreatorProfile
	creatorsByUser map[string]string

	briefs       map[string]Brief
	applications map[string]Application
	// applied de-duplicates (briefID, creatorProfileID) pairs.
	applied map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		brands:         make(map[string]BrandProfile),
		brandsByUser:   make(map[string]string),
		creators:       make(map[string]CreatorProfile),
		creatorsByUser: make(map[string]string),
		briefs:         make(map[string]Brief),
		applications:   make(map[string]Application),
		applied:        make(map[string]string),
	}
}

func (m *MemoryStore) CreateBrandProfile(_ context.Context, p *BrandProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.brandsByUser[p.UserID]; ok {
		return ErrProfileExists
	}
	if _, ok := m.creatorsByUser[p.UserID]; ok {
		return ErrProfileExists
	}
	m.brands[p.ID] = *p
	m.brandsByUser[p.UserID] = p.ID
	return nil
}

func (m *MemoryStore) GetBrandProfile(_ context.Context, id string) (BrandProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.brands[id]
	if !ok {
		return BrandProfile{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) GetBrandProfileByUser(_ context.Context, userID string) (BrandProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.brandsByUser[userID]
	if !ok {
		return BrandProfile{}, ErrNotFound
	}
	return m.brands[id], nil
}

func (m *MemoryStore) UpdateBrandProfile(_ context.Context, p *BrandProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.brands[p.ID]; !ok {
		return ErrNotFound
	}
	m.brands[p.ID] = *p
	return nil
}

func (m *MemoryStore) CreateCreatorProfile(_ context.Context, p *CreatorProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.creatorsByUser[p.UserID]; ok {
		return ErrProfileExists
	}
	if _, ok := m.brandsByUser[p.UserID]; ok {
		return ErrProfileExists
	}
	m.creators[p.ID] = *p
	m.creatorsByUser[p.UserID] = p.ID
	return nil
}

func (m *MemoryStore) GetCreatorProfile(_ context.Context, id string) (CreatorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.creators[id]
	if !ok {
		return CreatorProfile{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) GetCreatorProfileByUser(_ context.Context, userID string) (CreatorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.creatorsByUser[userID]
	if !ok {
		return CreatorProfile{}, ErrNotFound
	}
	return m.creators[id], nil
}

func (m *MemoryStore) UpdateCreatorProfile(_ context.Context, p *CreatorProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.creators[p.ID]; !ok {
		return ErrNotFound
	}
	m.creators[p.ID] = *p
	return nil
}

func (m *MemoryStore) CreateBrief(_ context.Context, b *Brief) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.briefs[b.ID] = *b
	return nil
}

func (m *MemoryStore) GetBrief(_ context.Context, id string) (Brief, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.briefs[id]
	if !ok {
		return Brief{}, ErrNotFound
	}
	return b, nil
}

func (m *MemoryStore) ListOpenBriefs(_ context.Context, f BriefFilter) ([]Brief, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Brief
	for _, b := range m.briefs {
		if b.Status != BriefOpen {
			continue
		}
		if f.Trade != "" && b.Targeting.Trade != f.Trade {
			continue
		}
		if f.Platform != "" && b.Targeting.Platform != "" && b.Targeting.Platform != f.Platform {
			continue
		}
		out = append(out, b)
	}
	sortBriefsNewestFirst(out)
	return out, nil
}

func (m *MemoryStore) ListBriefsByBrand(_ context.Context, brandProfileID string) ([]Brief, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Brief
	for _, b := range m.briefs {
		if b.BrandProfileID == brandProfileID {
			out = append(out, b)
		}
	}
	sortBriefsNewestFirst(out)
	return out, nil
}

func (m *MemoryStore) TransitionBrief(_ context.Context, briefID string, from []BriefStatus, to BriefStatus) (Brief, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.briefs[briefID]
	if !ok {
		return Brief{}, ErrNotFound
	}
	if !statusIn(b.Status, from) {
		return Brief{}, ErrInvalidTransition
	}
	b.Status = to
	b.UpdatedAt = time.Now().UTC()
	m.briefs[briefID] = b
	return b, nil
}

func (m *MemoryStore) CreateApplication(_ context.Context, a *Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.briefs[a.BriefID]
	if !ok {
		return ErrNotFound
	}
	if b.Status != BriefOpen {
		return ErrBriefNotOpen
	}
	key := a.BriefID + "/" + a.CreatorProfileID
	if _, ok := m.applied[key]; ok {
		return ErrAlreadyApplied
	}
	m.applications[a.ID] = *a
	m.applied[key] = a.ID
	return nil
}

func (m *MemoryStore) GetApplication(_ context.Context, id string) (Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applications[id]
	if !ok {
		return Application{}, ErrNotFound
	}
	return a, nil
}

func (m *MemoryStore) ListApplicationsByBrief(_ context.Context, briefID string) ([]Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Application
	for _, a := range m.applications {
		if a.BriefID == briefID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) AcceptApplication(_ context.Context, briefID, applicationID string) (Brief, Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.briefs[briefID]
	if !ok {
		return Brief{}, Application{}, ErrNotFound
	}
	a, ok := m.applications[applicationID]
	if !ok || a.BriefID != briefID {
		return Brief{}, Application{}, ErrNotFound
	}
	if a.Status != ApplicationPending {
		return Brief{}, Application{}, ErrAlreadyDecided
	}
	if b.Status.Terminal() {
		return Brief{}, Application{}, ErrBriefNotOpen
	}
	if b.SlotsFilled >= b.NumCreatorsRequired {
		return Brief{}, Application{}, ErrBriefFull
	}

	now := time.Now().UTC()
	b.SlotsFilled++
	if b.SlotsFilled == b.NumCreatorsRequired {
		b.Status = BriefFull
	}
	b.UpdatedAt = now
	a.Status = ApplicationAccepted
	a.DecidedAt = &now

	m.briefs[briefID] = b
	m.applications[applicationID] = a
	return b, a, nil
}

func (m *MemoryStore) RejectApplication(_ context.Context, briefID, applicationID string) (Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.applications[applicationID]
	if !ok || a.BriefID != briefID {
		return Application{}, ErrNotFound
	}
	if a.Status != ApplicationPending {
		return Application{}, ErrAlreadyDecided
	}
	now := time.Now().UTC()
	a.Status = ApplicationRejected
	a.DecidedAt = &now
	m.applications[applicationID] = a
	return a, nil
}

func sortBriefsNewestFirst(bs []Brief) {
	sort.Slice(bs, func(i, j int) bool {
		if bs[i].CreatedAt.Equal(bs[j].CreatedAt) {
			return bs[i].ID > bs[j].ID
		}
		return bs[i].CreatedAt.After(bs[j].CreatedAt)
	})
}

func statusIn(s BriefStatus, set []BriefStatus) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
