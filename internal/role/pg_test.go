package role

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreGetRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select role, id from profiles").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"role", "id"}).AddRow("brand", "prf_9"))

	s, err := NewPGStore(db)
	if err != nil {
		t.Fatalf("NewPGStore: %v", err)
	}
	b, err := s.GetRole(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetRole: %v", err)
	}
	if b == nil || b.Role != Brand || b.ProfileID != "prf_9" {
		t.Fatalf("unexpected binding: %+v", b)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreGetRoleNoProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select role, id from profiles").
		WithArgs("user-2").
		WillReturnError(sql.ErrNoRows)

	s, err := NewPGStore(db)
	if err != nil {
		t.Fatalf("NewPGStore: %v", err)
	}
	b, err := s.GetRole(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("GetRole: %v", err)
	}
	if b != nil {
		t.Fatalf("expected nil binding, got %+v", b)
	}
}

func TestPGStoreGetRolePropagatesFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select role, id from profiles").
		WithArgs("user-3").
		WillReturnError(errors.New("connection reset"))

	s, err := NewPGStore(db)
	if err != nil {
		t.Fatalf("NewPGStore: %v", err)
	}
	if _, err := s.GetRole(context.Background(), "user-3"); err == nil {
		t.Fatal("expected infrastructure error to propagate")
	}
}
