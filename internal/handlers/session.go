package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clarivo/clarivo-backend/internal/apierr"
	"github.com/clarivo/clarivo-backend/internal/repos"
	"github.com/clarivo/clarivo-backend/internal/services"
)

type SessionHandler struct {
	sessionService services.SessionService
	statsService   services.StatsService
}

func NewSessionHandler(sessionService services.SessionService, statsService services.StatsService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, statsService: statsService}
}

// GET /api/sessions?language=&limit=&offset=
// Newest first; limit/offset beyond range fall back to defaults.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	filter := repos.SessionFilter{
		Language: c.Query("language"),
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	sessions, err := h.sessionService.List(c.Request.Context(), filter)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondList(c, len(sessions), sessions)
}

// GET /api/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.InvalidInput(fmt.Errorf("invalid session id")))
		return
	}

	session, err := h.sessionService.Get(c.Request.Context(), sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, session)
}

// DELETE /api/sessions/:id
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.InvalidInput(fmt.Errorf("invalid session id")))
		return
	}

	if err := h.sessionService.Delete(c.Request.Context(), sessionID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "session deleted"})
}

// GET /api/stats
func (h *SessionHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.ComputeStats(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, stats)
}
