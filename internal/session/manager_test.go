package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alarm-status-backend/internal/model"
	"alarm-status-backend/internal/portal"
)

type mockClient struct {
	AuthenticateFunc    func(ctx context.Context) (bool, error)
	GetStatusFunc       func(ctx context.Context) (*model.StatusSnapshot, error)
	GetTemperaturesFunc func(ctx context.Context) (*model.TemperatureSnapshot, error)
	GetEventsFunc       func(ctx context.Context, days int) (*model.EventSnapshot, error)
	SetStatusFunc       func(ctx context.Context, action portal.Action) error
	LogoutFunc          func(ctx context.Context, force bool) error
}

func (m *mockClient) Authenticate(ctx context.Context) (bool, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx)
	}
	return true, nil
}

func (m *mockClient) GetStatus(ctx context.Context) (*model.StatusSnapshot, error) {
	if m.GetStatusFunc != nil {
		return m.GetStatusFunc(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockClient) GetTemperatures(ctx context.Context) (*model.TemperatureSnapshot, error) {
	if m.GetTemperaturesFunc != nil {
		return m.GetTemperaturesFunc(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockClient) GetEvents(ctx context.Context, days int) (*model.EventSnapshot, error) {
	if m.GetEventsFunc != nil {
		return m.GetEventsFunc(ctx, days)
	}
	return nil, errors.New("not implemented")
}

func (m *mockClient) SetStatus(ctx context.Context, action portal.Action) error {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, action)
	}
	return nil
}

func (m *mockClient) Logout(ctx context.Context, force bool) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, force)
	}
	return nil
}

func (m *mockClient) Authenticated() bool        { return true }
func (m *mockClient) LastAuthSuccess() time.Time { return time.Time{} }

func TestManagerPutGet(t *testing.T) {
	m := NewManager()

	_, ok := m.Get("primary")
	assert.False(t, ok)

	client := &mockClient{}
	m.Put("primary", client)

	got, ok := m.Get("primary")
	require.True(t, ok)
	assert.Same(t, client, got)

	// Put replaces any previous registration.
	replacement := &mockClient{}
	m.Put("primary", replacement)
	got, ok = m.Get("primary")
	require.True(t, ok)
	assert.Same(t, replacement, got)
}

func TestManagerAccountIDsSorted(t *testing.T) {
	m := NewManager()
	m.Put("zulu", &mockClient{})
	m.Put("alpha", &mockClient{})
	m.Put("mike", &mockClient{})

	assert.Equal(t, []string{"alpha", "mike", "zulu"}, m.AccountIDs())
}

func TestManagerDisposeLogsOutEveryClient(t *testing.T) {
	m := NewManager()

	loggedOut := make(map[string]bool)
	for _, id := range []string{"first", "second"} {
		id := id
		m.Put(id, &mockClient{
			LogoutFunc: func(ctx context.Context, force bool) error {
				assert.False(t, force)
				loggedOut[id] = true
				return nil
			},
		})
	}
	// A failing logout must not stop the others.
	m.Put("broken", &mockClient{
		LogoutFunc: func(ctx context.Context, force bool) error {
			loggedOut["broken"] = true
			return errors.New("connection refused")
		},
	})

	m.Dispose(context.Background())

	assert.Equal(t, map[string]bool{"first": true, "second": true, "broken": true}, loggedOut)
}
