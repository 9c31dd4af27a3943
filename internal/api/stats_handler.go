package api

import (
	"fitcoach/platform/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatsHandler serves aggregated read-only views. The service holds no
// store; peer failures propagate with their original status.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) GetLastUpdated(c *gin.Context) {
	memberUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	last, err := h.statsService.LastUpdated(c.Request.Context(), getTokenFromContext(c), memberUID)
	if err != nil {
		if abortWithPeerError(c, err) {
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load last update")
		return
	}
	c.JSON(http.StatusOK, gin.H{"last_session_update": last})
}

func (h *StatsHandler) GetWeeklyProgress(c *gin.Context) {
	memberUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	progress, err := h.statsService.WeeklyProgress(c.Request.Context(), getTokenFromContext(c), memberUID)
	if err != nil {
		if abortWithPeerError(c, err) {
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load weekly progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}
