package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"alarm-status-backend/internal/portal"
)

type commandRequest struct {
	Action string `json:"action" binding:"required"`
}

// PostAlarmCommand handles POST /api/accounts/{account_id}/alarm. On success
// a background status refresh is triggered; the command itself does not
// return the new state.
func (h *Handler) PostAlarmCommand(c *gin.Context) {
	accountID, client, ok := h.account(c)
	if !ok {
		return
	}

	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := client.SetStatus(c.Request.Context(), portal.Action(req.Action))
	switch {
	case err == nil:
		h.refreshStatus(accountID)
		c.JSON(http.StatusAccepted, gin.H{"dispatched": true})
	case errors.Is(err, portal.ErrInputInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, portal.ErrCredentialsInvalid):
		// The one condition surfaced synchronously: the account is
		// misconfigured and no amount of retrying will help.
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
