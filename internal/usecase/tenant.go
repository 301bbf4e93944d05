package usecase

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
	"github.com/dipeshss4/tripgo-auth/internal/core/port"
	"github.com/dipeshss4/tripgo-auth/internal/infra/config"
	"github.com/dipeshss4/tripgo-auth/internal/repository"
)

// TenantService resolves exactly one active tenant per request.
type TenantService struct {
	tenants     port.TenantRepository
	defaultSlug string
	strict      bool
}

// NewTenantService constructs a tenant resolver from tenant settings.
func NewTenantService(tenants port.TenantRepository, cfg config.TenantSettings) *TenantService {
	slug := strings.TrimSpace(cfg.DefaultSlug)
	if slug == "" {
		slug = "main"
	}
	return &TenantService{
		tenants:     tenants,
		defaultSlug: slug,
		strict:      cfg.StrictResolution,
	}
}

// ResolveInput carries the request routing data the resolver consumes.
type ResolveInput struct {
	// HeaderID is the explicit X-Tenant-ID header value.
	HeaderID string
	// Host is the request Host header, possibly with a port.
	Host string
	// Query is the ?tenant= query parameter.
	Query string
}

// Resolve returns the tenant for the request, first match wins: explicit
// header, host subdomain, query parameter, the default slug, then any active
// tenant unless strict resolution is on. A suspended tenant fails the whole
// resolution even when a later source might have matched.
func (s *TenantService) Resolve(ctx context.Context, input ResolveInput) (*domain.Tenant, error) {
	if id := strings.TrimSpace(input.HeaderID); id != "" {
		tenant, err := s.lookup(ctx, id, true)
		if err == nil {
			return s.checkStatus(tenant)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	if sub := subdomainOf(input.Host); sub != "" {
		tenant, err := s.lookup(ctx, sub, false)
		if err == nil {
			return s.checkStatus(tenant)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	if q := strings.TrimSpace(input.Query); q != "" {
		tenant, err := s.lookup(ctx, q, false)
		if err == nil {
			return s.checkStatus(tenant)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	tenant, err := s.tenants.GetBySlug(ctx, s.defaultSlug)
	if err == nil {
		return s.checkStatus(tenant)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup default tenant: %w", err)
	}

	if s.strict {
		return nil, ErrTenantNotFound
	}

	// Development convenience only: with more than one tenant present this
	// fallback would break isolation, which is why strict mode removes it.
	tenant, err = s.tenants.GetAnyActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("lookup fallback tenant: %w", err)
	}
	return s.checkStatus(tenant)
}

func (s *TenantService) lookup(ctx context.Context, key string, tryID bool) (*domain.Tenant, error) {
	if tryID {
		tenant, err := s.tenants.GetByID(ctx, key)
		if err == nil {
			return tenant, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("lookup tenant by id: %w", err)
		}
	}

	tenant, err := s.tenants.GetByRoutingKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("lookup tenant by routing key: %w", err)
	}
	return tenant, nil
}

func (s *TenantService) checkStatus(tenant *domain.Tenant) (*domain.Tenant, error) {
	if !tenant.IsActive() {
		return nil, ErrTenantSuspended
	}
	return tenant, nil
}

// subdomainOf extracts the leftmost host label when the host has a usable
// subdomain. Bare domains, localhost, and IP literals yield nothing.
func subdomainOf(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if net.ParseIP(host) != nil {
		return ""
	}

	labels := strings.Split(host, ".")
	if len(labels) < 3 {
		return ""
	}
	sub := labels[0]
	if sub == "" || sub == "www" || sub == "api" {
		return ""
	}
	return strings.ToLower(sub)
}
