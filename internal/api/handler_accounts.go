package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// accountResponse describes one configured account and its session health.
type accountResponse struct {
	ID              string     `json:"id"`
	Authenticated   bool       `json:"authenticated"`
	LastAuthSuccess *time.Time `json:"last_auth_success"`
}

// GetAccounts handles the GET /api/accounts request.
func (h *Handler) GetAccounts(c *gin.Context) {
	ids := h.sessions.AccountIDs()
	responses := make([]accountResponse, 0, len(ids))
	for _, id := range ids {
		client, ok := h.sessions.Get(id)
		if !ok {
			continue
		}
		resp := accountResponse{ID: id, Authenticated: client.Authenticated()}
		if t := client.LastAuthSuccess(); !t.IsZero() {
			resp.LastAuthSuccess = &t
		}
		responses = append(responses, resp)
	}
	c.JSON(http.StatusOK, responses)
}
