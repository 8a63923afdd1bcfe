package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GetEventHistory handles GET /api/accounts/{account_id}/events/history.
// Unlike the snapshot endpoint this serves the archive, which outlives the
// portal's rolling log window.
func (h *Handler) GetEventHistory(c *gin.Context) {
	accountID, _, ok := h.account(c)
	if !ok {
		return
	}
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event archive is not configured"})
		return
	}

	var since time.Time
	if daysParam := c.Query("days"); daysParam != "" {
		days, err := strconv.Atoi(daysParam)
		if err != nil || days <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid days parameter"})
			return
		}
		since = time.Now().AddDate(0, 0, -days)
	}

	rows, err := h.store.EventHistory(c.Request.Context(), accountID, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve event history"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
