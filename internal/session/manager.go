package session

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"alarm-status-backend/internal/model"
	"alarm-status-backend/internal/portal"
)

// Client is the portal surface the host layers consume. *portal.Client
// satisfies it; tests substitute mocks.
type Client interface {
	Authenticate(ctx context.Context) (bool, error)
	GetStatus(ctx context.Context) (*model.StatusSnapshot, error)
	GetTemperatures(ctx context.Context) (*model.TemperatureSnapshot, error)
	GetEvents(ctx context.Context, days int) (*model.EventSnapshot, error)
	SetStatus(ctx context.Context, action portal.Action) error
	Logout(ctx context.Context, force bool) error
	Authenticated() bool
	LastAuthSuccess() time.Time
}

// Manager owns one portal client per configured account. It replaces any
// ambient process-wide registry: the orchestrator creates it and injects it
// where needed.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]Client
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{clients: make(map[string]Client)}
}

// Put registers the client for an account, replacing any previous one.
func (m *Manager) Put(accountID string, c Client) {
	m.mu.Lock()
	m.clients[accountID] = c
	m.mu.Unlock()
}

// Get returns the client for an account.
func (m *Manager) Get(accountID string) (Client, bool) {
	m.mu.RLock()
	c, ok := m.clients[accountID]
	m.mu.RUnlock()
	return c, ok
}

// AccountIDs returns the registered account identifiers, sorted.
func (m *Manager) AccountIDs() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.clients))
	for id := range m.clients {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Dispose logs every session out, best effort. Called on shutdown to release
// the server-side sessions; failures are logged and ignored.
func (m *Manager) Dispose(ctx context.Context) {
	m.mu.RLock()
	clients := make(map[string]Client, len(m.clients))
	for id, c := range m.clients {
		clients[id] = c
	}
	m.mu.RUnlock()

	for id, c := range clients {
		if err := c.Logout(ctx, false); err != nil {
			log.Printf("session: logout for account %s failed: %v", id, err)
		}
	}
}
