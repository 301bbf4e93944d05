package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
	"github.com/dipeshss4/tripgo-auth/internal/infra/security"
	"github.com/dipeshss4/tripgo-auth/internal/usecase"
)

// Authenticate runs the authorization gate and attaches its outcome to the
// context. Requests failing any transition are rejected with the matching
// taxonomy code.
func Authenticate(auth *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)

		authCtx, err := auth.Authenticate(c.Request.Context(), token, TenantFromContext(c), RequestMeta(c))
		if err != nil {
			abortAuthError(c, err)
			return
		}

		c.Set(AuthKey, authCtx)
		c.Next()
	}
}

// RequireMFA refuses the request when the risk evaluation demands step-up
// authentication. The caller may retry the same request after completing MFA.
func RequireMFA() gin.HandlerFunc {
	return func(c *gin.Context) {
		authCtx := AuthFromContext(c)
		if authCtx == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorBody("MissingToken", "authentication required"))
			return
		}

		if authCtx.Security.RequiresStepUp() {
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorBody("MFARequired", "step-up authentication required"))
			return
		}

		c.Next()
	}
}

// RequirePermission gates the handler on a granted permission. Runs after
// Authenticate and fails closed.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authCtx := AuthFromContext(c)
		if authCtx == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorBody("MissingToken", "authentication required"))
			return
		}

		if !domain.HasPermission(authCtx.Claims.Permissions, permission) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorBody("InsufficientPermissions", "permission denied"))
			return
		}

		c.Next()
	}
}

// RequireRole gates the handler on any of the listed roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		authCtx := AuthFromContext(c)
		if authCtx == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorBody("MissingToken", "authentication required"))
			return
		}

		for _, role := range roles {
			if authCtx.User.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			newErrorBody("InsufficientPermissions", "role not permitted"))
	}
}

func abortAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrMissingToken):
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			newErrorBody("MissingToken", "missing bearer token"))
	case errors.Is(err, usecase.ErrTokenRevoked):
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			newErrorBody("TokenRevoked", "token has been revoked"))
	case errors.Is(err, security.ErrTokenExpired):
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			newErrorBody("TokenExpired", "token expired"))
	case errors.Is(err, security.ErrWrongTokenType):
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			newErrorBody("WrongTokenType", "wrong token type"))
	case errors.Is(err, security.ErrInvalidToken):
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			newErrorBody("InvalidToken", "invalid token"))
	case errors.Is(err, usecase.ErrSessionExpired):
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			newErrorBody("SessionExpired", "session expired, log in again"))
	case errors.Is(err, usecase.ErrTenantMismatch):
		c.AbortWithStatusJSON(http.StatusForbidden,
			newErrorBody("TenantMismatch", "token does not belong to this tenant"))
	case errors.Is(err, usecase.ErrUserNotFound):
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			newErrorBody("UserNotFound", "user no longer exists"))
	case errors.Is(err, usecase.ErrAccountInactive):
		c.AbortWithStatusJSON(http.StatusForbidden,
			newErrorBody("AccountInactive", "account is inactive"))
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			newErrorBody("InternalError", "authentication failed"))
	}
}
