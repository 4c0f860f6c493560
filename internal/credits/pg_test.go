package credits

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newPGLedger(t *testing.T) (*PG, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	l, err := NewPG(db)
	if err != nil {
		t.Fatalf("NewPG: %v", err)
	}
	return l, mock
}

func TestPGDeductSuccess(t *testing.T) {
	l, mock := newPGLedger(t)

	mock.ExpectExec("update subscriptions").
		WithArgs("brand-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := l.Deduct(context.Background(), "brand-1")
	if err != nil {
		t.Fatalf("Deduct: %v", err)
	}
	if !ok {
		t.Fatal("expected deduction to succeed")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// The conditional WHERE clause makes "no credits left" and "no subscription"
// indistinguishable at the SQL level: zero rows affected, false, no error.
func TestPGDeductNoRowsIsFalse(t *testing.T) {
	l, mock := newPGLedger(t)

	mock.ExpectExec("update subscriptions").
		WithArgs("brand-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := l.Deduct(context.Background(), "brand-1")
	if err != nil {
		t.Fatalf("Deduct: %v", err)
	}
	if ok {
		t.Fatal("expected deduction to fail")
	}
}

func TestPGDeductPropagatesFailure(t *testing.T) {
	l, mock := newPGLedger(t)

	mock.ExpectExec("update subscriptions").
		WithArgs("brand-1").
		WillReturnError(errors.New("connection reset"))

	if _, err := l.Deduct(context.Background(), "brand-1"); err == nil {
		t.Fatal("expected infrastructure error to propagate")
	}
}

func TestPGBalanceDefaultsToZero(t *testing.T) {
	l, mock := newPGLedger(t)

	mock.ExpectQuery("select campaign_credits from subscriptions").
		WithArgs("brand-1").
		WillReturnError(sql.ErrNoRows)

	bal, err := l.Balance(context.Background(), "brand-1")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if bal != 0 {
		t.Fatalf("expected 0, got %d", bal)
	}
}

func TestPGBalance(t *testing.T) {
	l, mock := newPGLedger(t)

	mock.ExpectQuery("select campaign_credits from subscriptions").
		WithArgs("brand-1").
		WillReturnRows(sqlmock.NewRows([]string{"campaign_credits"}).AddRow(5))

	bal, err := l.Balance(context.Background(), "brand-1")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if bal != 5 {
		t.Fatalf("expected 5, got %d", bal)
	}
}

func TestPGGrant(t *testing.T) {
	l, mock := newPGLedger(t)

	mock.ExpectExec("update subscriptions").
		WithArgs("brand-1", 6).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := l.Grant(context.Background(), "brand-1", 6); err != nil {
		t.Fatalf("Grant: %v", err)
	}

	mock.ExpectExec("update subscriptions").
		WithArgs("brand-missing", 3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := l.Grant(context.Background(), "brand-missing", 3); !errors.Is(err, ErrNoSubscription) {
		t.Fatalf("expected ErrNoSubscription, got %v", err)
	}
}

func TestPGActivateUpserts(t *testing.T) {
	l, mock := newPGLedger(t)

	mock.ExpectExec("insert into subscriptions").
		WithArgs("brand-1", "price_b", 6).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := l.Activate(context.Background(), "brand-1", "price_b", 6); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}

	if err := l.Activate(context.Background(), "brand-1", "price_b", -1); err == nil {
		t.Fatal("expected error for negative initial balance")
	}
}
