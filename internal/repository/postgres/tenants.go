package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
	"github.com/dipeshss4/tripgo-auth/internal/repository"
)

// TenantRepository implements port.TenantRepository using PostgreSQL.
type TenantRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTenantRepository wires a PostgreSQL-backed tenant repository.
func NewTenantRepository(exec pgExecutor) *TenantRepository {
	return &TenantRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var tenantColumns = []string{
	"id",
	"name",
	"subdomain",
	"custom_domain",
	"slug",
	"plan_tier",
	"status",
	"settings",
	"created_at",
	"updated_at",
}

// GetByID retrieves a tenant by identifier.
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	stmt, args, err := r.builder.
		Select(tenantColumns...).
		From("tripgo.tenants").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select tenant sql: %w", err)
	}

	return r.scanTenant(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByRoutingKey matches a tenant by subdomain, custom domain, or slug.
func (r *TenantRepository) GetByRoutingKey(ctx context.Context, key string) (*domain.Tenant, error) {
	stmt, args, err := r.builder.
		Select(tenantColumns...).
		From("tripgo.tenants").
		Where(squirrel.Or{
			squirrel.Eq{"subdomain": key},
			squirrel.Eq{"custom_domain": key},
			squirrel.Eq{"slug": key},
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select tenant by routing key sql: %w", err)
	}

	return r.scanTenant(r.exec.QueryRow(ctx, stmt, args...))
}

// GetBySlug retrieves a tenant by its slug.
func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	stmt, args, err := r.builder.
		Select(tenantColumns...).
		From("tripgo.tenants").
		Where(squirrel.Eq{"slug": slug}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select tenant by slug sql: %w", err)
	}

	return r.scanTenant(r.exec.QueryRow(ctx, stmt, args...))
}

// GetAnyActive returns the oldest active tenant.
func (r *TenantRepository) GetAnyActive(ctx context.Context) (*domain.Tenant, error) {
	stmt, args, err := r.builder.
		Select(tenantColumns...).
		From("tripgo.tenants").
		Where(squirrel.Eq{"status": domain.TenantStatusActive}).
		OrderBy("created_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select active tenant sql: %w", err)
	}

	return r.scanTenant(r.exec.QueryRow(ctx, stmt, args...))
}

func (r *TenantRepository) scanTenant(row pgx.Row) (*domain.Tenant, error) {
	var (
		tenant       domain.Tenant
		customDomain sql.NullString
		settings     []byte
	)

	if err := row.Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Subdomain,
		&customDomain,
		&tenant.Slug,
		&tenant.PlanTier,
		&tenant.Status,
		&settings,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan tenant: %w", err)
	}

	if customDomain.Valid {
		val := customDomain.String
		tenant.CustomDomain = &val
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &tenant.Settings); err != nil {
			return nil, fmt.Errorf("decode tenant settings: %w", err)
		}
	}

	return &tenant, nil
}
