package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dipeshss4/tripgo-auth/internal/transport/http/middleware"
	"github.com/dipeshss4/tripgo-auth/internal/usecase"
)

// AuthHandler exposes the authentication endpoints.
type AuthHandler struct {
	auth     *usecase.AuthService
	sessions *usecase.SessionService
	tenants  *usecase.TenantService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, sessions *usecase.SessionService, tenants *usecase.TenantService) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		tenants:  tenants,
	}
}

// RegisterRoutes binds authentication routes onto the group. The group is
// expected to already run tenant resolution.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/login", h.login)
	r.POST("/logout", h.logout)
	r.POST("/refresh", h.refresh)

	authed := r.Group("", middleware.Authenticate(h.auth))
	authed.GET("/me", h.me)
	authed.GET("/sessions", h.listSessions)
	authed.DELETE("/sessions", h.revokeAllSessions)
	authed.DELETE("/sessions/:id", h.revokeSession)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Fail("InvalidRequest", "email and password are required"))
		return
	}

	tenant := middleware.TenantFromContext(c)
	if hint := req.TenantHint; hint != "" {
		resolved, err := h.tenants.Resolve(c.Request.Context(), usecase.ResolveInput{Query: hint})
		if err != nil {
			RespondWithMappedError(c, err)
			return
		}
		tenant = resolved
	}

	result, err := h.auth.Login(c.Request.Context(), usecase.LoginInput{
		Tenant:   tenant,
		Email:    req.Email,
		Password: req.Password,
		Metadata: middleware.RequestMeta(c),
	})
	if err != nil {
		RespondWithMappedError(c, err)
		return
	}

	c.JSON(http.StatusOK, OK(LoginResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		ExpiresIn:    result.Tokens.ExpiresIn,
		User:         newUserSummary(result.User),
		Tenant:       newTenantSummary(result.Tenant),
	}))
}

// logout always succeeds: revoking an absent or already-revoked token is a
// no-op, not an error.
func (h *AuthHandler) logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		RespondWithMappedError(c, err)
		return
	}

	c.JSON(http.StatusOK, OKMessage("logged out"))
}

func (h *AuthHandler) refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Fail("InvalidRequest", "refreshToken is required"))
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		RespondWithMappedError(c, err)
		return
	}

	c.JSON(http.StatusOK, OK(LoginResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		ExpiresIn:    result.Tokens.ExpiresIn,
		User:         newUserSummary(result.User),
	}))
}

func (h *AuthHandler) me(c *gin.Context) {
	authCtx := middleware.AuthFromContext(c)
	if authCtx == nil {
		c.JSON(http.StatusUnauthorized, Fail("MissingToken", "authentication required"))
		return
	}

	c.JSON(http.StatusOK, OK(gin.H{
		"user":     newUserSummary(authCtx.User),
		"session":  newSessionSummary(*authCtx.Session, authCtx.Session.ID),
		"security": newSecuritySummary(authCtx.Security),
	}))
}

func (h *AuthHandler) listSessions(c *gin.Context) {
	authCtx := middleware.AuthFromContext(c)
	if authCtx == nil {
		c.JSON(http.StatusUnauthorized, Fail("MissingToken", "authentication required"))
		return
	}

	sessions, err := h.sessions.ListForUser(c.Request.Context(), authCtx.User.ID)
	if err != nil {
		RespondWithMappedError(c, err)
		return
	}

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, newSessionSummary(session, authCtx.Session.ID))
	}

	c.JSON(http.StatusOK, OK(gin.H{"sessions": summaries}))
}

func (h *AuthHandler) revokeSession(c *gin.Context) {
	authCtx := middleware.AuthFromContext(c)
	if authCtx == nil {
		c.JSON(http.StatusUnauthorized, Fail("MissingToken", "authentication required"))
		return
	}

	if err := h.sessions.Revoke(c.Request.Context(), authCtx.User.ID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err)
		return
	}

	c.JSON(http.StatusOK, OKMessage("session revoked"))
}

func (h *AuthHandler) revokeAllSessions(c *gin.Context) {
	authCtx := middleware.AuthFromContext(c)
	if authCtx == nil {
		c.JSON(http.StatusUnauthorized, Fail("MissingToken", "authentication required"))
		return
	}

	removed, err := h.sessions.RevokeAll(c.Request.Context(), authCtx.User.ID)
	if err != nil {
		RespondWithMappedError(c, err)
		return
	}

	c.JSON(http.StatusOK, OK(gin.H{"revoked": removed}))
}
