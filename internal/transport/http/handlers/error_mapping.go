package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dipeshss4/tripgo-auth/internal/infra/security"
	"github.com/dipeshss4/tripgo-auth/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status, taxonomy code, and
// response message.
type ErrorCase struct {
	Err     error
	Status  int
	Code    string
	Message string
}

// authErrorCases is the shared taxonomy table for auth endpoints.
var authErrorCases = []ErrorCase{
	{Err: usecase.ErrTenantNotFound, Status: http.StatusNotFound, Code: "TenantNotFound", Message: "tenant not found"},
	{Err: usecase.ErrTenantSuspended, Status: http.StatusForbidden, Code: "TenantSuspended", Message: "tenant is suspended"},
	{Err: usecase.ErrTenantMismatch, Status: http.StatusForbidden, Code: "TenantMismatch", Message: "token does not belong to this tenant"},
	{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Code: "InvalidCredentials", Message: "invalid email or password"},
	{Err: usecase.ErrAccountInactive, Status: http.StatusForbidden, Code: "AccountInactive", Message: "account is inactive"},
	{Err: usecase.ErrMissingToken, Status: http.StatusUnauthorized, Code: "MissingToken", Message: "missing bearer token"},
	{Err: usecase.ErrTokenRevoked, Status: http.StatusUnauthorized, Code: "TokenRevoked", Message: "token has been revoked"},
	{Err: usecase.ErrSessionExpired, Status: http.StatusUnauthorized, Code: "SessionExpired", Message: "session expired, log in again"},
	{Err: usecase.ErrUserNotFound, Status: http.StatusUnauthorized, Code: "UserNotFound", Message: "user no longer exists"},
	{Err: usecase.ErrMFARequired, Status: http.StatusForbidden, Code: "MFARequired", Message: "step-up authentication required"},
	{Err: usecase.ErrInsufficientPermissions, Status: http.StatusForbidden, Code: "InsufficientPermissions", Message: "permission denied"},
	{Err: security.ErrTokenExpired, Status: http.StatusUnauthorized, Code: "TokenExpired", Message: "token expired"},
	{Err: security.ErrWrongTokenType, Status: http.StatusUnauthorized, Code: "WrongTokenType", Message: "wrong token type"},
	{Err: security.ErrInvalidToken, Status: http.StatusUnauthorized, Code: "InvalidToken", Message: "invalid token"},
}

// RespondWithMappedError resolves the error against the taxonomy or falls
// back to a generic response. Lockouts carry the remaining seconds so the UI
// can show a countdown.
func RespondWithMappedError(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	var locked *usecase.AccountLockedError
	if errors.As(err, &locked) {
		seconds := locked.RetrySeconds()
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.JSON(http.StatusTooManyRequests, APIResponse{
			Success: false,
			Error:   "AccountLocked",
			Message: locked.Error(),
			Data:    gin.H{"retryAfterSeconds": seconds},
		})
		return
	}

	for _, cs := range authErrorCases {
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, Fail(cs.Code, cs.Message))
			return
		}
	}

	c.JSON(http.StatusInternalServerError, Fail("InternalError", "internal server error"))
}
