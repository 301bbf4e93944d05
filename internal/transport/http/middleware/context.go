package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
	"github.com/dipeshss4/tripgo-auth/internal/usecase"
)

const (
	// TenantKey is the gin context key for the resolved tenant.
	TenantKey = "tenant"
	// AuthKey is the gin context key for the authorization gate outcome.
	AuthKey = "auth_context"
)

// errorBody matches the handlers envelope for failures raised in middleware.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func newErrorBody(code, message string) errorBody {
	return errorBody{Error: code, Message: message}
}

// TenantFromContext returns the tenant attached by ResolveTenant, or nil.
func TenantFromContext(c *gin.Context) *domain.Tenant {
	value, ok := c.Get(TenantKey)
	if !ok {
		return nil
	}
	tenant, _ := value.(*domain.Tenant)
	return tenant
}

// AuthFromContext returns the gate outcome attached by Authenticate, or nil.
func AuthFromContext(c *gin.Context) *usecase.AuthContext {
	value, ok := c.Get(AuthKey)
	if !ok {
		return nil
	}
	authCtx, _ := value.(*usecase.AuthContext)
	return authCtx
}

// RequestMeta collects the request attributes the device profiler consumes.
func RequestMeta(c *gin.Context) domain.RequestMetadata {
	return domain.RequestMetadata{
		UserAgent:      c.Request.UserAgent(),
		AcceptLanguage: c.GetHeader("Accept-Language"),
		AcceptEncoding: c.GetHeader("Accept-Encoding"),
		IP:             c.ClientIP(),
	}
}

// BearerToken extracts the bearer token from the Authorization header.
// Returns empty for a missing or malformed header.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
