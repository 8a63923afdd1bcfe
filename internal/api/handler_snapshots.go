package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alarm-status-backend/internal/session"
)

func (h *Handler) account(c *gin.Context) (string, session.Client, bool) {
	accountID := c.Param("account_id")
	client, ok := h.sessions.Get(accountID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown account"})
		return "", nil, false
	}
	return accountID, client, true
}

// GetStatus handles GET /api/accounts/{account_id}/status. A 404 with
// "no data" means no poll has succeeded yet; consumers treat the previous
// reading as stale rather than erroring.
func (h *Handler) GetStatus(c *gin.Context) {
	accountID, _, ok := h.account(c)
	if !ok {
		return
	}
	snap, ok := h.snapshots.Status(accountID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no status data available yet"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetTemperatures handles GET /api/accounts/{account_id}/temperatures.
func (h *Handler) GetTemperatures(c *gin.Context) {
	accountID, _, ok := h.account(c)
	if !ok {
		return
	}
	snap, ok := h.snapshots.Temperatures(accountID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no temperature data available yet"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetEvents handles GET /api/accounts/{account_id}/events, serving the
// latest polled window in the portal's own ordering.
func (h *Handler) GetEvents(c *gin.Context) {
	accountID, _, ok := h.account(c)
	if !ok {
		return
	}
	snap, ok := h.snapshots.Events(accountID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no event data available yet"})
		return
	}
	c.JSON(http.StatusOK, snap)
}
