// Package billing is the boundary to the hosted payments provider. The core
// only consumes the mapping from a subscription's price id to its tier and
// per-period credit allowance; the payment flow itself lives with the
// provider.
package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Benjamindyer/brand-influencer-sub001/internal/credits"
)

// Tier is a closed enumeration of subscription tiers.
type Tier uint8

const (
	Tier1 Tier = iota + 1
	Tier2
	Tier3
)

// ErrUnknownPrice indicates a price id outside the configured catalogue.
var ErrUnknownPrice = errors.New("billing: unknown price id")

// Credits returns the campaign credits granted per billing period.
func (t Tier) Credits() int {
	switch t {
	case Tier1:
		return 3
	case Tier2:
		return 6
	case Tier3:
		return 12
	default:
		return 0
	}
}

func (t Tier) String() string {
	switch t {
	case Tier1:
		return "tier1"
	case Tier2:
		return "tier2"
	case Tier3:
		return "tier3"
	default:
		return "unknown"
	}
}

// PriceMap resolves the provider's price ids onto tiers.
type PriceMap struct {
	byPrice map[string]Tier
}

// NewPriceMap builds the catalogue from the three configured price ids.
// Empty ids are allowed (the tier is then simply unsellable).
func NewPriceMap(tier1ID, tier2ID, tier3ID string) PriceMap {
	m := PriceMap{byPrice: make(map[string]Tier, 3)}
	for id, tier := range map[string]Tier{
		strings.TrimSpace(tier1ID): Tier1,
		strings.TrimSpace(tier2ID): Tier2,
		strings.TrimSpace(tier3ID): Tier3,
	} {
		if id != "" {
			m.byPrice[id] = tier
		}
	}
	return m
}

// TierForPrice resolves a price id to its tier.
func (m PriceMap) TierForPrice(priceID string) (Tier, error) {
	t, ok := m.byPrice[strings.TrimSpace(priceID)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPrice, priceID)
	}
	return t, nil
}

// Renewer applies a billing period's credit allowance to a brand's ledger
// balance. It is driven by the provider's renewal notifications.
type Renewer struct {
	prices PriceMap
	ledger credits.Ledger
}

// NewRenewer constructs a Renewer.
func NewRenewer(prices PriceMap, ledger credits.Ledger) (*Renewer, error) {
	if ledger == nil {
		return nil, errors.New("billing: ledger is required")
	}
	return &Renewer{prices: prices, ledger: ledger}, nil
}

// Renew grants the tier's credit allowance to the brand and returns the
// number of credits granted.
func (r *Renewer) Renew(ctx context.Context, brandProfileID, priceID string) (int, error) {
	brandProfileID = strings.TrimSpace(brandProfileID)
	if brandProfileID == "" {
		return 0, errors.New("billing: brand profile id is required")
	}
	tier, err := r.prices.TierForPrice(priceID)
	if err != nil {
		return 0, err
	}
	amount := tier.Credits()
	if err := r.ledger.Grant(ctx, brandProfileID, amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// Activate provisions (or re-tiers) the brand's subscription after a
// successful checkout, setting the balance to the tier's full allowance. It
// returns the new balance.
func (r *Renewer) Activate(ctx context.Context, brandProfileID, priceID string) (int, error) {
	brandProfileID = strings.TrimSpace(brandProfileID)
	if brandProfileID == "" {
		return 0, errors.New("billing: brand profile id is required")
	}
	tier, err := r.prices.TierForPrice(priceID)
	if err != nil {
		return 0, err
	}
	amount := tier.Credits()
	if err := r.ledger.Activate(ctx, brandProfileID, priceID, amount); err != nil {
		return 0, err
	}
	return amount, nil
}
