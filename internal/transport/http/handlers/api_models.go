package handlers

import (
	"time"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
)

// APIResponse is the uniform envelope for every endpoint.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK wraps a success payload.
func OK(data any) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// OKMessage wraps a success message without a payload.
func OKMessage(message string) APIResponse {
	return APIResponse{Success: true, Message: message}
}

// Fail wraps a taxonomy error code with a human-readable message.
func Fail(code, message string) APIResponse {
	return APIResponse{Success: false, Error: code, Message: message}
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	// TenantHint is an optional routing key overriding host resolution.
	TenantHint string `json:"tenantHint"`
}

// RefreshRequest is the payload for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UserSummary is the user view returned by login and /auth/me.
type UserSummary struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	TenantID  string      `json:"tenantId"`
	LastLogin *time.Time  `json:"lastLogin,omitempty"`
}

// TenantSummary is the tenant view returned by login.
type TenantSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Plan string `json:"plan"`
}

// SessionSummary is the compact session view in list responses.
type SessionSummary struct {
	ID           string    `json:"id"`
	Device       string    `json:"device"`
	Browser      string    `json:"browser"`
	OS           string    `json:"os"`
	IP           string    `json:"ip"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	Current      bool      `json:"current"`
}

// SecuritySummary is the risk view in /auth/me responses.
type SecuritySummary struct {
	TrustScore      int             `json:"trustScore"`
	RiskTier        domain.RiskTier `json:"riskTier"`
	SessionDuration string          `json:"sessionDuration"`
	RecentFailures  int             `json:"recentFailures"`
	Suspicious      bool            `json:"suspicious"`
}

// LoginResponse is the payload returned on a successful login or refresh.
type LoginResponse struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	ExpiresIn    int            `json:"expiresIn"`
	User         UserSummary    `json:"user"`
	Tenant       *TenantSummary `json:"tenant,omitempty"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"startedAt"`
}

// ReadinessResponse reports dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func newUserSummary(user *domain.User) UserSummary {
	return UserSummary{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		TenantID:  user.TenantID,
		LastLogin: user.LastLogin,
	}
}

func newTenantSummary(tenant *domain.Tenant) *TenantSummary {
	if tenant == nil {
		return nil
	}
	return &TenantSummary{
		ID:   tenant.ID,
		Name: tenant.Name,
		Slug: tenant.Slug,
		Plan: tenant.PlanTier,
	}
}

func newSessionSummary(session domain.Session, currentID string) SessionSummary {
	return SessionSummary{
		ID:           session.ID,
		Device:       string(session.Device.Type),
		Browser:      session.Device.Browser,
		OS:           session.Device.OS,
		IP:           session.Device.IP,
		CreatedAt:    session.CreatedAt,
		LastActivity: session.LastActivity,
		Current:      session.ID == currentID,
	}
}

func newSecuritySummary(sec domain.SecurityContext) SecuritySummary {
	return SecuritySummary{
		TrustScore:      sec.TrustScore,
		RiskTier:        sec.RiskTier,
		SessionDuration: sec.SessionDuration.String(),
		RecentFailures:  sec.RecentFailures,
		Suspicious:      sec.Suspicious,
	}
}
