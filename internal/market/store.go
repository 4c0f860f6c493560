package market

import "context"

// BriefFilter narrows the open-brief listing. Zero values match everything.
type BriefFilter struct {
	Trade    string
	Platform string
}

// Store describes persistence operations required by the marketplace.
//
// Single-row reads return ErrNotFound when the row is absent. List reads
// propagate query failures; an empty result is a nil slice with a nil error,
// never a silent default.
//
// AcceptApplication is the one mutation with a cross-row invariant: it must
// re-check slots_filled < num_creators_required and flip the application,
// the counter and (possibly) the brief status as one atomic step, so two
// concurrent acceptances cannot overfill a brief.
type Store interface {
	CreateBrandProfile(ctx context.Context, p *BrandProfile) error
	GetBrandProfile(ctx context.Context, id string) (BrandProfile, error)
	GetBrandProfileByUser(ctx context.Context, userID string) (BrandProfile, error)
	UpdateBrandProfile(ctx context.Context, p *BrandProfile) error

	CreateCreatorProfile(ctx context.Context, p *CreatorProfile) error
	GetCreatorProfile(ctx context.Context, id string) (CreatorProfile, error)
	GetCreatorProfileByUser(ctx context.Context, userID string) (CreatorProfile, error)
	UpdateCreatorProfile(ctx context.Context, p *CreatorProfile) error

	CreateBrief(ctx context.Context, b *Brief) error
	GetBrief(ctx context.Context, id string) (Brief, error)
	// ListOpenBriefs returns open briefs matching the filter, newest first.
	ListOpenBriefs(ctx context.Context, f BriefFilter) ([]Brief, error)
	// ListBriefsByBrand returns all of a brand's briefs, newest first.
	ListBriefsByBrand(ctx context.Context, brandProfileID string) ([]Brief, error)
	// TransitionBrief moves a brief to status to, but only when its current
	// status is one of from; otherwise ErrInvalidTransition.
	TransitionBrief(ctx context.Context, briefID string, from []BriefStatus, to BriefStatus) (Brief, error)

	CreateApplication(ctx context.Context, a *Application) error
	GetApplication(ctx context.Context, id string) (Application, error)
	ListApplicationsByBrief(ctx context.Context, briefID string) ([]Application, error)
	AcceptApplication(ctx context.Context, briefID, applicationID string) (Brief, Application, error)
	RejectApplication(ctx context.Context, briefID, applicationID string) (Application, error)
}
