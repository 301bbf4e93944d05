package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
	"github.com/dipeshss4/tripgo-auth/internal/repository"
)

func TestUserRepository_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC().Add(-90 * 24 * time.Hour)
	rows := pgxmock.NewRows([]string{
		"id", "tenant_id", "email", "name", "password_hash", "role", "is_active", "mfa_enabled", "created_at", "last_login",
	}).AddRow(
		"user-1", "tenant-1", "agent@wanderlust.test", "Avery Agent", "hash", domain.RoleAgent, true, false, createdAt, nil,
	)

	mock.ExpectQuery(`SELECT .+ FROM tripgo\.users WHERE`).
		WithArgs("agent@wanderlust.test", "tenant-1").
		WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "tenant-1", "agent@wanderlust.test")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if got.Role != domain.RoleAgent {
		t.Fatalf("role = %q, want %q", got.Role, domain.RoleAgent)
	}
	if got.LastLogin != nil {
		t.Fatalf("last login = %v, want nil", got.LastLogin)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM tripgo\.users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "tenant_id", "email", "name", "password_hash", "role", "is_active", "mfa_enabled", "created_at", "last_login",
		}))

	_, err = repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUserRepository_UpdateLastLogin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	at := time.Now().UTC()
	mock.ExpectExec(`UPDATE tripgo\.users SET last_login = \$1 WHERE id = \$2`).
		WithArgs(at, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdateLastLogin(context.Background(), "user-1", at); err != nil {
		t.Fatalf("UpdateLastLogin returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_UpdateLastLogin_Missing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE tripgo\.users`).
		WithArgs(pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateLastLogin(context.Background(), "missing", time.Now())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
