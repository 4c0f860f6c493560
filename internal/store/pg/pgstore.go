// Package pg implements the marketplace store on Postgres. Mutations with
// cross-row invariants run inside transactions with row locks, so the slot
// accounting on briefs holds under concurrent requests.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Benjamindyer/brand-influencer-sub001/internal/market"
)

// Store holds the shared database handle. The same handle also backs the
// credit ledger and the role store.
type Store struct {
	db *sql.DB
}

var _ market.Store = (*Store)(nil)

// Open dials Postgres and configures the connection pool.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// New wraps an existing handle (tests, shared pools).
func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// --- profiles ---

func (s *Store) CreateBrandProfile(ctx context.Context, p *market.BrandProfile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		insert into profiles(id, user_id, role, created_at, updated_at)
		values ($1, $2, 'brand', $3, $3)
	`, p.ID, p.UserID, p.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return market.ErrProfileExists
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		insert into brand_profiles(id, company_name, website, industry)
		values ($1, $2, $3, $4)
	`, p.ID, p.CompanyName, p.Website, p.Industry); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) GetBrandProfile(ctx context.Context, id string) (market.BrandProfile, error) {
	return s.scanBrandProfile(ctx, `p.id = $1`, id)
}

func (s *Store) GetBrandProfileByUser(ctx context.Context, userID string) (market.BrandProfile, error) {
	return s.scanBrandProfile(ctx, `p.user_id = $1`, userID)
}

func (s *Store) scanBrandProfile(ctx context.Context, where, arg string) (market.BrandProfile, error) {
	var p market.BrandProfile
	err := s.db.QueryRowContext(ctx, `
		select p.id, p.user_id, b.company_name, b.website, b.industry, p.created_at, p.updated_at
		from profiles p
		join brand_profiles b on b.id = p.id
		where `+where,
		arg,
	).Scan(&p.ID, &p.UserID, &p.CompanyName, &p.Website, &p.Industry, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return market.BrandProfile{}, market.ErrNotFound
	}
	if err != nil {
		return market.BrandProfile{}, fmt.Errorf("pg: brand profile: %w", err)
	}
	return p, nil
}

func (s *Store) UpdateBrandProfile(ctx context.Context, p *market.BrandProfile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update brand_profiles
		set company_name = $2, website = $3, industry = $4
		where id = $1
	`, p.ID, p.CompanyName, p.Website, p.Industry)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return market.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx,
		`update profiles set updated_at = $2 where id = $1`,
		p.ID, p.UpdatedAt,
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) CreateCreatorProfile(ctx context.Context, p *market.CreatorProfile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		insert into profiles(id, user_id, role, created_at, updated_at)
		values ($1, $2, 'creator', $3, $3)
	`, p.ID, p.UserID, p.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return market.ErrProfileExists
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		insert into creator_profiles(id, display_name, trade, platform, followers, engagement_rate, bio)
		values ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.DisplayName, p.Trade, p.Platform, p.Followers, p.EngagementRate, p.Bio); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) GetCreatorProfile(ctx context.Context, id string) (market.CreatorProfile, error) {
	return s.scanCreatorProfile(ctx, `p.id = $1`, id)
}

func (s *Store) GetCreatorProfileByUser(ctx context.Context, userID string) (market.CreatorProfile, error) {
	return s.scanCreatorProfile(ctx, `p.user_id = $1`, userID)
}

func (s *Store) scanCreatorProfile(ctx context.Context, where, arg string) (market.CreatorProfile, error) {
	var p market.CreatorProfile
	err := s.db.QueryRowContext(ctx, `
		select p.id, p.user_id, c.display_name, c.trade, c.platform, c.followers, c.engagement_rate, c.bio, p.created_at, p.updated_at
		from profiles p
		join creator_profiles c on c.id = p.id
		where `+where,
		arg,
	).Scan(&p.ID, &p.UserID, &p.DisplayName, &p.Trade, &p.Platform, &p.Followers, &p.EngagementRate, &p.Bio, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return market.CreatorProfile{}, market.ErrNotFound
	}
	if err != nil {
		return market.CreatorProfile{}, fmt.Errorf("pg: creator profile: %w", err)
	}
	return p, nil
}

func (s *Store) UpdateCreatorProfile(ctx context.Context, p *market.CreatorProfile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update creator_profiles
		set display_name = $2, trade = $3, platform = $4, followers = $5, engagement_rate = $6, bio = $7
		where id = $1
	`, p.ID, p.DisplayName, p.Trade, p.Platform, p.Followers, p.EngagementRate, p.Bio)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return market.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx,
		`update profiles set updated_at = $2 where id = $1`,
		p.ID, p.UpdatedAt,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// --- briefs ---

const briefColumns = `id, brand_profile_id, title, description, trade, platform, min_followers, min_engagement,
	num_creators_required, slots_filled, status, created_at, updated_at`

func scanBrief(row interface{ Scan(...any) error }) (market.Brief, error) {
	var b market.Brief
	err := row.Scan(
		&b.ID, &b.BrandProfileID, &b.Title, &b.Description,
		&b.Targeting.Trade, &b.Targeting.Platform, &b.Targeting.MinFollowers, &b.Targeting.MinEngagement,
		&b.NumCreatorsRequired, &b.SlotsFilled, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func (s *Store) CreateBrief(ctx context.Context, b *market.Brief) error {
	_, err := s.db.ExecContext(ctx, `
		insert into briefs(`+briefColumns+`)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, b.ID, b.BrandProfileID, b.Title, b.Description,
		b.Targeting.Trade, b.Targeting.Platform, b.Targeting.MinFollowers, b.Targeting.MinEngagement,
		b.NumCreatorsRequired, b.SlotsFilled, b.Status, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pg: create brief: %w", err)
	}
	return nil
}

func (s *Store) GetBrief(ctx context.Context, id string) (market.Brief, error) {
	b, err := scanBrief(s.db.QueryRowContext(ctx,
		`select `+briefColumns+` from briefs where id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return market.Brief{}, market.ErrNotFound
	}
	if err != nil {
		return market.Brief{}, fmt.Errorf("pg: get brief: %w", err)
	}
	return b, nil
}

func (s *Store) ListOpenBriefs(ctx context.Context, f market.BriefFilter) ([]market.Brief, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+briefColumns+`
		from briefs
		where status = 'open'
		  and ($1 = '' or trade = $1)
		  and ($2 = '' or platform = '' or platform = $2)
		order by created_at desc, id desc
	`, f.Trade, f.Platform)
	if err != nil {
		return nil, fmt.Errorf("pg: list open briefs: %w", err)
	}
	return collectBriefs(rows)
}

func (s *Store) ListBriefsByBrand(ctx context.Context, brandProfileID string) ([]market.Brief, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+briefColumns+`
		from briefs
		where brand_profile_id = $1
		order by created_at desc, id desc
	`, brandProfileID)
	if err != nil {
		return nil, fmt.Errorf("pg: list briefs by brand: %w", err)
	}
	return collectBriefs(rows)
}

func collectBriefs(rows *sql.Rows) ([]market.Brief, error) {
	defer rows.Close()
	var out []market.Brief
	for rows.Next() {
		b, err := scanBrief(rows)
		if err != nil {
			return nil, fmt.Errorf("pg: scan brief: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pg: iterate briefs: %w", err)
	}
	return out, nil
}

func (s *Store) TransitionBrief(ctx context.Context, briefID string, from []market.BriefStatus, to market.BriefStatus) (market.Brief, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return market.Brief{}, err
	}
	defer func() { _ = tx.Rollback() }()

	b, err := lockBrief(ctx, tx, briefID)
	if err != nil {
		return market.Brief{}, err
	}
	allowed := false
	for _, st := range from {
		if b.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return market.Brief{}, market.ErrInvalidTransition
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`update briefs set status = $2, updated_at = $3 where id = $1`,
		briefID, to, now,
	); err != nil {
		return market.Brief{}, err
	}
	if err := tx.Commit(); err != nil {
		return market.Brief{}, err
	}
	b.Status = to
	b.UpdatedAt = now
	return b, nil
}

func lockBrief(ctx context.Context, tx *sql.Tx, briefID string) (market.Brief, error) {
	b, err := scanBrief(tx.QueryRowContext(ctx,
		`select `+briefColumns+` from briefs where id = $1 for update`, briefID))
	if errors.Is(err, sql.ErrNoRows) {
		return market.Brief{}, market.ErrNotFound
	}
	if err != nil {
		return market.Brief{}, fmt.Errorf("pg: lock brief: %w", err)
	}
	return b, nil
}

// --- applications ---

const applicationColumns = `id, brief_id, creator_profile_id, status, message, created_at, decided_at`

func scanApplication(row interface{ Scan(...any) error }) (market.Application, error) {
	var a market.Application
	var decided sql.NullTime
	err := row.Scan(&a.ID, &a.BriefID, &a.CreatorProfileID, &a.Status, &a.Message, &a.CreatedAt, &decided)
	if decided.Valid {
		t := decided.Time
		a.DecidedAt = &t
	}
	return a, err
}

func (s *Store) CreateApplication(ctx context.Context, a *market.Application) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	b, err := lockBrief(ctx, tx, a.BriefID)
	if err != nil {
		return err
	}
	if b.Status != market.BriefOpen {
		return market.ErrBriefNotOpen
	}

	if _, err := tx.ExecContext(ctx, `
		insert into applications(id, brief_id, creator_profile_id, status, message, created_at)
		values ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.BriefID, a.CreatorProfileID, a.Status, a.Message, a.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return market.ErrAlreadyApplied
		}
		return fmt.Errorf("pg: create application: %w", err)
	}
	return tx.Commit()
}

func (s *Store) GetApplication(ctx context.Context, id string) (market.Application, error) {
	a, err := scanApplication(s.db.QueryRowContext(ctx,
		`select `+applicationColumns+` from applications where id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return market.Application{}, market.ErrNotFound
	}
	if err != nil {
		return market.Application{}, fmt.Errorf("pg: get application: %w", err)
	}
	return a, nil
}

func (s *Store) ListApplicationsByBrief(ctx context.Context, briefID string) ([]market.Application, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+applicationColumns+`
		from applications
		where brief_id = $1
		order by created_at asc, id asc
	`, briefID)
	if err != nil {
		return nil, fmt.Errorf("pg: list applications: %w", err)
	}
	defer rows.Close()

	var out []market.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("pg: scan application: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pg: iterate applications: %w", err)
	}
	return out, nil
}

// AcceptApplication locks the brief row first so concurrent acceptances
// serialize on the slot counter; the filled check and both row updates then
// commit or roll back together.
func (s *Store) AcceptApplication(ctx context.Context, briefID, applicationID string) (market.Brief, market.Application, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return market.Brief{}, market.Application{}, err
	}
	defer func() { _ = tx.Rollback() }()

	b, err := lockBrief(ctx, tx, briefID)
	if err != nil {
		return market.Brief{}, market.Application{}, err
	}

	a, err := scanApplication(tx.QueryRowContext(ctx,
		`select `+applicationColumns+` from applications where id = $1 and brief_id = $2 for update`,
		applicationID, briefID))
	if errors.Is(err, sql.ErrNoRows) {
		return market.Brief{}, market.Application{}, market.ErrNotFound
	}
	if err != nil {
		return market.Brief{}, market.Application{}, fmt.Errorf("pg: lock application: %w", err)
	}

	if a.Status != market.ApplicationPending {
		return market.Brief{}, market.Application{}, market.ErrAlreadyDecided
	}
	if b.Status.Terminal() {
		return market.Brief{}, market.Application{}, market.ErrBriefNotOpen
	}
	if b.SlotsFilled >= b.NumCreatorsRequired {
		return market.Brief{}, market.Application{}, market.ErrBriefFull
	}

	now := time.Now().UTC()
	b.SlotsFilled++
	if b.SlotsFilled == b.NumCreatorsRequired {
		b.Status = market.BriefFull
	}
	b.UpdatedAt = now
	a.Status = market.ApplicationAccepted
	a.DecidedAt = &now

	if _, err := tx.ExecContext(ctx, `
		update applications set status = $2, decided_at = $3 where id = $1
	`, a.ID, a.Status, now); err != nil {
		return market.Brief{}, market.Application{}, err
	}
	if _, err := tx.ExecContext(ctx, `
		update briefs set slots_filled = $2, status = $3, updated_at = $4 where id = $1
	`, b.ID, b.SlotsFilled, b.Status, now); err != nil {
		return market.Brief{}, market.Application{}, err
	}
	if err := tx.Commit(); err != nil {
		return market.Brief{}, market.Application{}, err
	}
	return b, a, nil
}

func (s *Store) RejectApplication(ctx context.Context, briefID, applicationID string) (market.Application, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return market.Application{}, err
	}
	defer func() { _ = tx.Rollback() }()

	a, err := scanApplication(tx.QueryRowContext(ctx,
		`select `+applicationColumns+` from applications where id = $1 and brief_id = $2 for update`,
		applicationID, briefID))
	if errors.Is(err, sql.ErrNoRows) {
		return market.Application{}, market.ErrNotFound
	}
	if err != nil {
		return market.Application{}, fmt.Errorf("pg: lock application: %w", err)
	}
	if a.Status != market.ApplicationPending {
		return market.Application{}, market.ErrAlreadyDecided
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		update applications set status = $2, decided_at = $3 where id = $1
	`, a.ID, market.ApplicationRejected, now); err != nil {
		return market.Application{}, err
	}
	if err := tx.Commit(); err != nil {
		return market.Application{}, err
	}
	a.Status = market.ApplicationRejected
	a.DecidedAt = &now
	return a, nil
}
