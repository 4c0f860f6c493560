package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Benjamindyer/brand-influencer-sub001/internal/credits"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/ids"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/obs"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/role"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/stream"
)

// Service implements the marketplace operations on top of a Store, the
// credit ledger and the activity stream. Ownership and role filtering happen
// here so every caller (page rendering, API handlers) behaves identically.
type Service struct {
	store  Store
	ledger credits.Ledger
	events *stream.Stream
}

// NewService wires the marketplace service. events may be nil when no live
// stream is needed (tests, CLI tooling).
func NewService(store Store, ledger credits.Ledger, events *stream.Stream) (*Service, error) {
	if store == nil {
		return nil, errors.New("market: store is required")
	}
	if ledger == nil {
		return nil, errors.New("market: credit ledger is required")
	}
	return &Service{store: store, ledger: ledger, events: events}, nil
}

// --- Profiles ---

// BrandProfileInput carries caller-supplied brand profile fields.
type BrandProfileInput struct {
	CompanyName string `json:"company_name"`
	Website     string `json:"website"`
	Industry    string `json:"industry"`
}

// CreatorProfileInput carries caller-supplied creator profile fields.
type CreatorProfileInput struct {
	DisplayName    string  `json:"display_name"`
	Trade          string  `json:"trade"`
	Platform       string  `json:"platform"`
	Followers      int     `json:"followers"`
	EngagementRate float64 `json:"engagement_rate"`
	Bio            string  `json:"bio"`
}

// CreateBrandProfile creates the brand profile owned by userID.
func (s *Service) CreateBrandProfile(ctx context.Context, userID string, in BrandProfileInput) (BrandProfile, error) {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	if in.CompanyName == "" {
		return BrandProfile{}, fmt.Errorf("%w: company_name is required", ErrInvalidInput)
	}
	now := time.Now().UTC()
	p := BrandProfile{
		ID:          ids.NewPrefixed("prf"),
		UserID:      userID,
		CompanyName: in.CompanyName,
		Website:     strings.TrimSpace(in.Website),
		Industry:    strings.TrimSpace(in.Industry),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateBrandProfile(ctx, &p); err != nil {
		return BrandProfile{}, err
	}
	return p, nil
}

// CreateCreatorProfile creates the creator profile owned by userID.
func (s *Service) CreateCreatorProfile(ctx context.Context, userID string, in CreatorProfileInput) (CreatorProfile, error) {
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Trade = normalizeTrade(in.Trade)
	if in.DisplayName == "" {
		return CreatorProfile{}, fmt.Errorf("%w: display_name is required", ErrInvalidInput)
	}
	if in.Trade == "" {
		return CreatorProfile{}, fmt.Errorf("%w: trade is required", ErrInvalidInput)
	}
	if in.Followers < 0 || in.EngagementRate < 0 {
		return CreatorProfile{}, fmt.Errorf("%w: followers and engagement_rate must be >= 0", ErrInvalidInput)
	}
	now := time.Now().UTC()
	p := CreatorProfile{
		ID:             ids.NewPrefixed("prf"),
		UserID:         userID,
		DisplayName:    in.DisplayName,
		Trade:          in.Trade,
		Platform:       strings.TrimSpace(in.Platform),
		Followers:      in.Followers,
		EngagementRate: in.EngagementRate,
		Bio:            strings.TrimSpace(in.Bio),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateCreatorProfile(ctx, &p); err != nil {
		return CreatorProfile{}, err
	}
	return p, nil
}

// GetBrandProfile returns a brand profile. Any profiled caller may read a
// brand profile; it is the public face of the brand.
func (s *Service) GetBrandProfile(ctx context.Context, id string) (BrandProfile, error) {
	return s.store.GetBrandProfile(ctx, id)
}

// GetCreatorProfile returns a creator profile.
func (s *Service) GetCreatorProfile(ctx context.Context, id string) (CreatorProfile, error) {
	return s.store.GetCreatorProfile(ctx, id)
}

// UpdateBrandProfile applies owner-initiated changes. Only the owner (or an
// admin) may write.
func (s *Service) UpdateBrandProfile(ctx context.Context, actor role.Binding, id string, in BrandProfileInput) (BrandProfile, error) {
	p, err := s.store.GetBrandProfile(ctx, id)
	if err != nil {
		return BrandProfile{}, err
	}
	if actor.Role != role.Admin && actor.ProfileID != p.ID {
		return BrandProfile{}, ErrForbidden
	}
	if name := strings.TrimSpace(in.CompanyName); name != "" {
		p.CompanyName = name
	}
	p.Website = strings.TrimSpace(in.Website)
	p.Industry = strings.TrimSpace(in.Industry)
	p.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateBrandProfile(ctx, &p); err != nil {
		return BrandProfile{}, err
	}
	return p, nil
}

// UpdateCreatorProfile applies owner-initiated changes.
func (s *Service) UpdateCreatorProfile(ctx context.Context, actor role.Binding, id string, in CreatorProfileInput) (CreatorProfile, error) {
	p, err := s.store.GetCreatorProfile(ctx, id)
	if err != nil {
		return CreatorProfile{}, err
	}
	if actor.Role != role.Admin && actor.ProfileID != p.ID {
		return CreatorProfile{}, ErrForbidden
	}
	if name := strings.TrimSpace(in.DisplayName); name != "" {
		p.DisplayName = name
	}
	if trade := normalizeTrade(in.Trade); trade != "" {
		p.Trade = trade
	}
	if in.Followers >= 0 {
		p.Followers = in.Followers
	}
	if in.EngagementRate >= 0 {
		p.EngagementRate = in.EngagementRate
	}
	p.Platform = strings.TrimSpace(in.Platform)
	p.Bio = strings.TrimSpace(in.Bio)
	p.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateCreatorProfile(ctx, &p); err != nil {
		return CreatorProfile{}, err
	}
	return p, nil
}

// --- Briefs ---

// BriefInput carries caller-supplied brief fields.
type BriefInput struct {
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Targeting           Targeting `json:"targeting"`
	NumCreatorsRequired int       `json:"num_creators_required"`
}

// CreateBrief posts a new brief for the brand, consuming one campaign
// credit. An exhausted (or absent) subscription is a normal
// ErrInsufficientCredits outcome, not an infrastructure error.
func (s *Service) CreateBrief(ctx context.Context, brandProfileID string, in BriefInput) (Brief, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Targeting.Trade = normalizeTrade(in.Targeting.Trade)
	if in.Title == "" {
		return Brief{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Targeting.Trade == "" {
		return Brief{}, fmt.Errorf("%w: targeting.trade is required", ErrInvalidInput)
	}
	if in.NumCreatorsRequired < 1 {
		return Brief{}, fmt.Errorf("%w: num_creators_required must be >= 1", ErrInvalidInput)
	}
	if in.Targeting.MinFollowers < 0 || in.Targeting.MinEngagement < 0 {
		return Brief{}, fmt.Errorf("%w: targeting thresholds must be >= 0", ErrInvalidInput)
	}

	deducted, err := s.ledger.Deduct(ctx, brandProfileID)
	if err != nil {
		obs.ObserveCreditDeduction("error")
		return Brief{}, err
	}
	if !deducted {
		obs.ObserveCreditDeduction("insufficient")
		return Brief{}, ErrInsufficientCredits
	}
	obs.ObserveCreditDeduction("deducted")

	now := time.Now().UTC()
	b := Brief{
		ID:                  ids.NewPrefixed("brf"),
		BrandProfileID:      brandProfileID,
		Title:               in.Title,
		Description:         strings.TrimSpace(in.Description),
		Targeting:           in.Targeting,
		NumCreatorsRequired: in.NumCreatorsRequired,
		Status:              BriefOpen,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.store.CreateBrief(ctx, &b); err != nil {
		// The credit was already spent; hand it back rather than leaking it.
		if grantErr := s.ledger.Grant(ctx, brandProfileID, 1); grantErr != nil {
			logger := obs.Logger()
			logger.Error().Err(grantErr).
				Str("brand_profile_id", brandProfileID).
				Msg("refund after failed brief insert")
		}
		return Brief{}, err
	}
	return b, nil
}

// GetBrief fetches one brief with role-based visibility: admins see all,
// creators see any brief (brand-facing view), brands only their own.
func (s *Service) GetBrief(ctx context.Context, viewer role.Binding, id string) (Brief, error) {
	b, err := s.store.GetBrief(ctx, id)
	if err != nil {
		return Brief{}, err
	}
	if viewer.Role == role.Brand && b.BrandProfileID != viewer.ProfileID {
		return Brief{}, ErrForbidden
	}
	return b, nil
}

// ListBriefsForCreator returns the open briefs matching the creator's trade
// and targeting thresholds, newest first.
func (s *Service) ListBriefsForCreator(ctx context.Context, creatorProfileID string) ([]Brief, error) {
	creator, err := s.store.GetCreatorProfile(ctx, creatorProfileID)
	if err != nil {
		return nil, err
	}
	briefs, err := s.store.ListOpenBriefs(ctx, BriefFilter{Trade: creator.Trade})
	if err != nil {
		return nil, err
	}
	matched := briefs[:0]
	for _, b := range briefs {
		if !targetingMatches(b.Targeting, creator) {
			continue
		}
		matched = append(matched, b)
	}
	return matched, nil
}

// ListOpenBriefs returns every open brief, newest first. Admin view.
func (s *Service) ListOpenBriefs(ctx context.Context) ([]Brief, error) {
	return s.store.ListOpenBriefs(ctx, BriefFilter{})
}

// ListBriefsForBrand returns all briefs owned by the brand, newest first.
func (s *Service) ListBriefsForBrand(ctx context.Context, brandProfileID string) ([]Brief, error) {
	return s.store.ListBriefsByBrand(ctx, brandProfileID)
}

// CompleteBrief marks a filled brief as completed. Terminal.
func (s *Service) CompleteBrief(ctx context.Context, actor role.Binding, briefID string) (Brief, error) {
	if err := s.requireBriefOwner(ctx, actor, briefID); err != nil {
		return Brief{}, err
	}
	return s.store.TransitionBrief(ctx, briefID, []BriefStatus{BriefFull}, BriefCompleted)
}

// CancelBrief cancels an open or full brief. Terminal.
func (s *Service) CancelBrief(ctx context.Context, actor role.Binding, briefID string) (Brief, error) {
	if err := s.requireBriefOwner(ctx, actor, briefID); err != nil {
		return Brief{}, err
	}
	return s.store.TransitionBrief(ctx, briefID, []BriefStatus{BriefOpen, BriefFull}, BriefCancelled)
}

// --- Applications ---

// Apply submits a creator's application to an open brief.
func (s *Service) Apply(ctx context.Context, creatorProfileID, briefID, message string) (Application, error) {
	b, err := s.store.GetBrief(ctx, briefID)
	if err != nil {
		return Application{}, err
	}
	if b.Status != BriefOpen {
		return Application{}, ErrBriefNotOpen
	}
	now := time.Now().UTC()
	a := Application{
		ID:               ids.NewPrefixed("app"),
		BriefID:          briefID,
		CreatorProfileID: creatorProfileID,
		Status:           ApplicationPending,
		Message:          strings.TrimSpace(message),
		CreatedAt:        now,
	}
	if err := s.store.CreateApplication(ctx, &a); err != nil {
		return Application{}, err
	}
	s.publish(stream.Event{
		Type:             stream.EventApplicationSubmitted,
		BriefID:          b.ID,
		BrandProfileID:   b.BrandProfileID,
		CreatorProfileID: creatorProfileID,
		ApplicationID:    a.ID,
	})
	return a, nil
}

// ListApplications returns a brief's applications for the owning brand
// (or an admin).
func (s *Service) ListApplications(ctx context.Context, viewer role.Binding, briefID string) ([]Application, error) {
	if err := s.requireBriefOwner(ctx, viewer, briefID); err != nil {
		return nil, err
	}
	return s.store.ListApplicationsByBrief(ctx, briefID)
}

// AcceptApplication accepts a pending application, filling one slot. The
// slot re-check runs inside the store's atomic step, so concurrent
// acceptances cannot overfill the brief.
func (s *Service) AcceptApplication(ctx context.Context, actor role.Binding, briefID, applicationID string) (Brief, Application, error) {
	if err := s.requireBriefOwner(ctx, actor, briefID); err != nil {
		return Brief{}, Application{}, err
	}
	b, a, err := s.store.AcceptApplication(ctx, briefID, applicationID)
	if err != nil {
		return Brief{}, Application{}, err
	}
	s.publish(stream.Event{
		Type:             stream.EventApplicationAccepted,
		BriefID:          b.ID,
		BrandProfileID:   b.BrandProfileID,
		CreatorProfileID: a.CreatorProfileID,
		ApplicationID:    a.ID,
	})
	if b.Status == BriefFull {
		s.publish(stream.Event{
			Type:           stream.EventBriefFull,
			BriefID:        b.ID,
			BrandProfileID: b.BrandProfileID,
		})
	}
	return b, a, nil
}

// RejectApplication rejects a pending application.
func (s *Service) RejectApplication(ctx context.Context, actor role.Binding, briefID, applicationID string) (Application, error) {
	if err := s.requireBriefOwner(ctx, actor, briefID); err != nil {
		return Application{}, err
	}
	a, err := s.store.RejectApplication(ctx, briefID, applicationID)
	if err != nil {
		return Application{}, err
	}
	s.publish(stream.Event{
		Type:             stream.EventApplicationRejected,
		BriefID:          briefID,
		CreatorProfileID: a.CreatorProfileID,
		ApplicationID:    a.ID,
	})
	return a, nil
}

// --- helpers ---

func (s *Service) requireBriefOwner(ctx context.Context, actor role.Binding, briefID string) error {
	b, err := s.store.GetBrief(ctx, briefID)
	if err != nil {
		return err
	}
	if actor.Role == role.Admin {
		return nil
	}
	if actor.Role != role.Brand || b.BrandProfileID != actor.ProfileID {
		return ErrForbidden
	}
	return nil
}

func (s *Service) publish(evt stream.Event) {
	if s.events == nil {
		return
	}
	s.events.Publish(evt)
}

func targetingMatches(t Targeting, c CreatorProfile) bool {
	if t.Trade != "" && t.Trade != c.Trade {
		return false
	}
	if t.Platform != "" && c.Platform != "" && t.Platform != c.Platform {
		return false
	}
	if c.Followers < t.MinFollowers {
		return false
	}
	if c.EngagementRate < t.MinEngagement {
		return false
	}
	return true
}

func normalizeTrade(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
