// Package market holds the marketplace domain: briefs posted by brands,
// applications submitted by creators, and the role-specific profiles both
// sides operate through.
package market

import "time"

// BriefStatus is the brief lifecycle state.
//
// Transitions: open -> full (last slot filled), full -> completed (brand
// action, terminal), open|full -> cancelled (brand action, terminal).
type BriefStatus string

const (
	BriefOpen      BriefStatus = "open"
	BriefFull      BriefStatus = "full"
	BriefCompleted BriefStatus = "completed"
	BriefCancelled BriefStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s BriefStatus) Terminal() bool {
	return s == BriefCompleted || s == BriefCancelled
}

// ApplicationStatus is the application lifecycle state.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Targeting is the brief-side filter used to match candidate creators.
type Targeting struct {
	Trade         string  `json:"trade"`
	Platform      string  `json:"platform,omitempty"`
	MinFollowers  int     `json:"min_followers,omitempty"`
	MinEngagement float64 `json:"min_engagement,omitempty"`
}

// Brief is a brand-posted engagement opportunity.
type Brief struct {
	ID                  string      `json:"id"`
	BrandProfileID      string      `json:"brand_profile_id"`
	Title               string      `json:"title"`
	Description         string      `json:"description,omitempty"`
	Targeting           Targeting   `json:"targeting"`
	NumCreatorsRequired int         `json:"num_creators_required"`
	SlotsFilled         int         `json:"slots_filled"`
	Status              BriefStatus `json:"status"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// Application links a creator to a brief slot.
type Application struct {
	ID               string            `json:"id"`
	BriefID          string            `json:"brief_id"`
	CreatorProfileID string            `json:"creator_profile_id"`
	Status           ApplicationStatus `json:"status"`
	Message          string            `json:"message,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	DecidedAt        *time.Time        `json:"decided_at,omitempty"`
}

// CreatorProfile is the creator-side attribute bag, owned by one identity.
type CreatorProfile struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	DisplayName    string    `json:"display_name"`
	Trade          string    `json:"trade"`
	Platform       string    `json:"platform,omitempty"`
	Followers      int       `json:"followers"`
	EngagementRate float64   `json:"engagement_rate"`
	Bio            string    `json:"bio,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BrandProfile is the brand-side attribute bag, owned by one identity.
type BrandProfile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CompanyName string    `json:"company_name"`
	Website     string    `json:"website,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
