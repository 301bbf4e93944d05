package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dipeshss4/tripgo-auth/internal/usecase"
)

// AdminHandler exposes operator endpoints for session hygiene.
type AdminHandler struct {
	sessions *usecase.SessionService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(sessions *usecase.SessionService) *AdminHandler {
	return &AdminHandler{sessions: sessions}
}

// SweepSessions removes idle sessions immediately instead of waiting for the
// background sweeper.
func (h *AdminHandler) SweepSessions(c *gin.Context) {
	removed, err := h.sessions.SweepSessions(c.Request.Context())
	if err != nil {
		RespondWithMappedError(c, err)
		return
	}

	c.JSON(http.StatusOK, OK(gin.H{"removed": removed}))
}

// SweepRevocations evicts expired blacklist entries immediately.
func (h *AdminHandler) SweepRevocations(c *gin.Context) {
	removed, err := h.sessions.SweepRevocations(c.Request.Context())
	if err != nil {
		RespondWithMappedError(c, err)
		return
	}

	c.JSON(http.StatusOK, OK(gin.H{"removed": removed}))
}

// ListUserSessions lists every active session for a given user.
func (h *AdminHandler) ListUserSessions(c *gin.Context) {
	userID := c.Param("id")

	sessions, err := h.sessions.ListForUser(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err)
		return
	}

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, newSessionSummary(session, ""))
	}

	c.JSON(http.StatusOK, OK(gin.H{"sessions": summaries}))
}

// RevokeUserSessions force-logs-out a user everywhere.
func (h *AdminHandler) RevokeUserSessions(c *gin.Context) {
	removed, err := h.sessions.RevokeAll(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err)
		return
	}

	c.JSON(http.StatusOK, OK(gin.H{"revoked": removed}))
}
