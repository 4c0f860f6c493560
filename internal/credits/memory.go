package credits

import (
	"context"
	"errors"
	"sync"
)

// InMemory implements Ledger with in-process concurrency safety. Used in
// tests and DSN-less development runs.
type InMemory struct {
	mu       sync.Mutex
	balances map[string]int
	prices   map[string]string
}

var _ Ledger = (*InMemory)(nil)

// NewInMemory creates an empty ledger.
func NewInMemory() *InMemory {
	return &InMemory{
		balances: make(map[string]int),
		prices:   make(map[string]string),
	}
}

// CreateSubscription registers a subscription with an initial balance.
func (l *InMemory) CreateSubscription(brandProfileID string, initial int) error {
	if initial < 0 {
		return errors.New("credits: initial balance must be >= 0")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[brandProfileID] = initial
	return nil
}

func (l *InMemory) Activate(ctx context.Context, brandProfileID, priceID string, initial int) error {
	if initial < 0 {
		return errors.New("credits: initial balance must be >= 0")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[brandProfileID] = initial
	l.prices[brandProfileID] = priceID
	return nil
}

func (l *InMemory) Deduct(ctx context.Context, brandProfileID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, ok := l.balances[brandProfileID]
	if !ok || bal <= 0 {
		return false, nil
	}
	l.balances[brandProfileID] = bal - 1
	return true, nil
}

func (l *InMemory) Balance(ctx context.Context, brandProfileID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[brandProfileID], nil
}

func (l *InMemory) Grant(ctx context.Context, brandProfileID string, amount int) error {
	if amount <= 0 {
		return errors.New("credits: grant amount must be > 0")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.balances[brandProfileID]; !ok {
		return ErrNoSubscription
	}
	l.balances[brandProfileID] += amount
	return nil
}
