package snapshot

import (
	"sync"

	"alarm-status-backend/internal/model"
)

// Registry holds the latest snapshot of each resource per account. A poll
// that yields no data leaves the previous snapshot in place, so consumers
// see stale-but-present readings rather than errors.
type Registry struct {
	mu           sync.RWMutex
	status       map[string]model.StatusSnapshot
	temperatures map[string]model.TemperatureSnapshot
	events       map[string]model.EventSnapshot
}

// NewRegistry creates an empty snapshot registry.
func NewRegistry() *Registry {
	return &Registry{
		status:       make(map[string]model.StatusSnapshot),
		temperatures: make(map[string]model.TemperatureSnapshot),
		events:       make(map[string]model.EventSnapshot),
	}
}

// SetStatus stores the latest status snapshot for an account.
func (r *Registry) SetStatus(accountID string, s model.StatusSnapshot) {
	r.mu.Lock()
	r.status[accountID] = s
	r.mu.Unlock()
}

// Status returns the latest status snapshot for an account.
func (r *Registry) Status(accountID string) (model.StatusSnapshot, bool) {
	r.mu.RLock()
	s, ok := r.status[accountID]
	r.mu.RUnlock()
	return s, ok
}

// SetTemperatures stores the latest temperature snapshot for an account.
func (r *Registry) SetTemperatures(accountID string, s model.TemperatureSnapshot) {
	r.mu.Lock()
	r.temperatures[accountID] = s
	r.mu.Unlock()
}

// Temperatures returns the latest temperature snapshot for an account.
func (r *Registry) Temperatures(accountID string) (model.TemperatureSnapshot, bool) {
	r.mu.RLock()
	s, ok := r.temperatures[accountID]
	r.mu.RUnlock()
	return s, ok
}

// SetEvents stores the latest event snapshot for an account.
func (r *Registry) SetEvents(accountID string, s model.EventSnapshot) {
	r.mu.Lock()
	r.events[accountID] = s
	r.mu.Unlock()
}

// Events returns the latest event snapshot for an account.
func (r *Registry) Events(accountID string) (model.EventSnapshot, bool) {
	r.mu.RLock()
	s, ok := r.events[accountID]
	r.mu.RUnlock()
	return s, ok
}
