package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"alarm-status-backend/internal/session"
	"alarm-status-backend/internal/snapshot"
	"alarm-status-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	sessions  *session.Manager
	snapshots *snapshot.Registry
	store     store.Store
	webpush   *webpush.Options

	// refreshStatus re-polls an account's status in the background after a
	// control command; the command response never carries the new state.
	refreshStatus func(accountID string)
}

// NewHandler creates a new API handler. store, webpushOptions and refresh
// may be nil.
func NewHandler(sessions *session.Manager, snapshots *snapshot.Registry, st store.Store, webpushOptions *webpush.Options, refresh func(accountID string)) *Handler {
	if refresh == nil {
		refresh = func(string) {}
	}
	return &Handler{
		sessions:      sessions,
		snapshots:     snapshots,
		store:         st,
		webpush:       webpushOptions,
		refreshStatus: refresh,
	}
}
