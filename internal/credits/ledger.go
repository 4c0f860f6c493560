// Package credits tracks the campaign credit balance attached to each brand
// subscription. Balances are non-negative integers; the only mutation paths
// are an atomic decrement-if-positive and an atomic grant, so concurrent
// requests can never double-spend or lose updates.
package credits

import (
	"context"
	"errors"
)

// ErrNoSubscription indicates a grant targeted a brand without a
// subscription row. Deductions treat the same condition as a normal false.
var ErrNoSubscription = errors.New("credits: no subscription")

// Ledger defines the credit accounting operations.
//
// Deduct returns (false, nil) when the brand has no subscription or no
// credits left; that is a normal outcome, not an error. Two concurrent
// Deduct calls against a balance of 1 must not both succeed.
//
// Balance defaults to 0 for brands without a subscription; it never reports
// a negative value.
//
// Activate upserts the brand's subscription row, recording the purchased
// price id and resetting the balance to the tier's allowance. It backs both
// first-time checkout and tier changes.
type Ledger interface {
	Deduct(ctx context.Context, brandProfileID string) (bool, error)
	Balance(ctx context.Context, brandProfileID string) (int, error)
	Grant(ctx context.Context, brandProfileID string, amount int) error
	Activate(ctx context.Context, brandProfileID, priceID string, initial int) error
}
