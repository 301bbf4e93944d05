package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dipeshss4/tripgo-auth/internal/usecase"
)

// ResolveTenant resolves the request's tenant and attaches it to the context.
// Every request below it sees exactly one active tenant or an error response.
func ResolveTenant(tenants *usecase.TenantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, err := tenants.Resolve(c.Request.Context(), usecase.ResolveInput{
			HeaderID: c.GetHeader("X-Tenant-ID"),
			Host:     c.Request.Host,
			Query:    c.Query("tenant"),
		})
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrTenantNotFound):
				c.AbortWithStatusJSON(http.StatusNotFound,
					newErrorBody("TenantNotFound", "tenant not found"))
			case errors.Is(err, usecase.ErrTenantSuspended):
				c.AbortWithStatusJSON(http.StatusForbidden,
					newErrorBody("TenantSuspended", "tenant is suspended"))
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					newErrorBody("InternalError", "tenant resolution failed"))
			}
			return
		}

		c.Set(TenantKey, tenant)
		c.Next()
	}
}
