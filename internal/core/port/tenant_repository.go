package port

import (
	"context"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
)

// TenantRepository exposes persistence behavior for tenants.
type TenantRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	// GetByRoutingKey matches a tenant by subdomain, custom domain, or slug.
	GetByRoutingKey(ctx context.Context, key string) (*domain.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error)
	// GetAnyActive returns an arbitrary active tenant. Reached only when
	// strict tenant resolution is disabled.
	GetAnyActive(ctx context.Context) (*domain.Tenant, error)
}
