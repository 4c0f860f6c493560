package credits

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestDeductStopsAtZero(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	if err := l.CreateSubscription("brand-1", 2); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}

	for i := 0; i < 2; i++ {
		ok, err := l.Deduct(ctx, "brand-1")
		if err != nil {
			t.Fatalf("Deduct: %v", err)
		}
		if !ok {
			t.Fatalf("deduct %d should succeed", i)
		}
	}

	ok, err := l.Deduct(ctx, "brand-1")
	if err != nil {
		t.Fatalf("Deduct: %v", err)
	}
	if ok {
		t.Fatal("deduct on empty balance must fail")
	}

	bal, err := l.Balance(ctx, "brand-1")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if bal != 0 {
		t.Fatalf("expected balance 0, got %d", bal)
	}
}

// Concurrent deductions against balance B < N succeed exactly B times and
// never push the balance negative.
func TestConcurrentDeductNoDoubleSpend(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	const (
		initial = 7
		workers = 50
	)
	if err := l.CreateSubscription("brand-1", initial); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.Deduct(ctx, "brand-1")
			if err != nil {
				t.Errorf("Deduct: %v", err)
				return
			}
			if ok {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := succeeded.Load(); got != initial {
		t.Fatalf("expected exactly %d successful deductions, got %d", initial, got)
	}
	bal, err := l.Balance(ctx, "brand-1")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if bal != 0 {
		t.Fatalf("expected final balance 0, got %d", bal)
	}
}

func TestDeductWithoutSubscription(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	ok, err := l.Deduct(ctx, "brand-unknown")
	if err != nil {
		t.Fatalf("Deduct: %v", err)
	}
	if ok {
		t.Fatal("deduct without subscription must return false")
	}

	// And it must not have created a row as a side effect.
	bal, err := l.Balance(ctx, "brand-unknown")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if bal != 0 {
		t.Fatalf("expected default balance 0, got %d", bal)
	}
	l.mu.Lock()
	_, created := l.balances["brand-unknown"]
	l.mu.Unlock()
	if created {
		t.Fatal("deduct must not create a subscription")
	}
}

func TestGrant(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	if err := l.CreateSubscription("brand-1", 1); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}

	if err := l.Grant(ctx, "brand-1", 6); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	bal, _ := l.Balance(ctx, "brand-1")
	if bal != 7 {
		t.Fatalf("expected balance 7, got %d", bal)
	}

	if err := l.Grant(ctx, "brand-missing", 3); !errors.Is(err, ErrNoSubscription) {
		t.Fatalf("expected ErrNoSubscription, got %v", err)
	}
	if err := l.Grant(ctx, "brand-1", 0); err == nil {
		t.Fatal("expected error for non-positive grant")
	}
}
