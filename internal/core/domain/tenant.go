package domain

import "time"

// TenantStatus is the lifecycle state of a tenant.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant is an isolated customer organization. All user lookups and issued
// tokens are scoped to exactly one tenant.
type Tenant struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Subdomain    string         `json:"subdomain"`
	CustomDomain *string        `json:"custom_domain,omitempty"`
	Slug         string         `json:"slug"`
	PlanTier     string         `json:"plan_tier"`
	Status       TenantStatus   `json:"status"`
	Settings     map[string]any `json:"settings,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// IsActive reports whether the tenant may serve logins.
func (t Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
