package credits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PG implements Ledger on the subscriptions table. The decrement is a single
// conditional UPDATE, so the balance >= 0 invariant holds under concurrent
// requests without an explicit transaction.
type PG struct {
	db *sql.DB
}

var _ Ledger = (*PG)(nil)

// NewPG wraps an existing database handle.
func NewPG(db *sql.DB) (*PG, error) {
	if db == nil {
		return nil, errors.New("credits: db handle is required")
	}
	return &PG{db: db}, nil
}

func (l *PG) Deduct(ctx context.Context, brandProfileID string) (bool, error) {
	res, err := l.db.ExecContext(ctx, `
		update subscriptions
		set campaign_credits = campaign_credits - 1, updated_at = now()
		where brand_profile_id = $1 and campaign_credits > 0
	`, brandProfileID)
	if err != nil {
		return false, fmt.Errorf("credits: deduct for %s: %w", brandProfileID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("credits: deduct for %s: %w", brandProfileID, err)
	}
	// Zero rows means no subscription or an exhausted balance; both are
	// normal false outcomes.
	return rows == 1, nil
}

func (l *PG) Balance(ctx context.Context, brandProfileID string) (int, error) {
	var balance int
	err := l.db.QueryRowContext(ctx,
		`select campaign_credits from subscriptions where brand_profile_id = $1`,
		brandProfileID,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("credits: balance for %s: %w", brandProfileID, err)
	}
	if balance < 0 {
		// Only reachable after a manual data fix; clamp to zero.
		return 0, nil
	}
	return balance, nil
}

func (l *PG) Activate(ctx context.Context, brandProfileID, priceID string, initial int) error {
	if initial < 0 {
		return errors.New("credits: initial balance must be >= 0")
	}
	_, err := l.db.ExecContext(ctx, `
		insert into subscriptions (brand_profile_id, price_id, campaign_credits)
		values ($1, $2, $3)
		on conflict (brand_profile_id) do update
		set price_id = excluded.price_id,
		    campaign_credits = excluded.campaign_credits,
		    updated_at = now()
	`, brandProfileID, priceID, initial)
	if err != nil {
		return fmt.Errorf("credits: activate for %s: %w", brandProfileID, err)
	}
	return nil
}

func (l *PG) Grant(ctx context.Context, brandProfileID string, amount int) error {
	if amount <= 0 {
		return errors.New("credits: grant amount must be > 0")
	}
	res, err := l.db.ExecContext(ctx, `
		update subscriptions
		set campaign_credits = campaign_credits + $2, updated_at = now()
		where brand_profile_id = $1
	`, brandProfileID, amount)
	if err != nil {
		return fmt.Errorf("credits: grant for %s: %w", brandProfileID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("credits: grant for %s: %w", brandProfileID, err)
	}
	if rows == 0 {
		return ErrNoSubscription
	}
	return nil
}
