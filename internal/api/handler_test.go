package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alarm-status-backend/internal/model"
	"alarm-status-backend/internal/portal"
	"alarm-status-backend/internal/session"
	"alarm-status-backend/internal/snapshot"
)

type mockClient struct {
	SetStatusFunc   func(ctx context.Context, action portal.Action) error
	authenticated   bool
	lastAuthSuccess time.Time
}

func (m *mockClient) Authenticate(ctx context.Context) (bool, error) { return true, nil }

func (m *mockClient) GetStatus(ctx context.Context) (*model.StatusSnapshot, error) {
	return nil, errors.New("not implemented")
}

func (m *mockClient) GetTemperatures(ctx context.Context) (*model.TemperatureSnapshot, error) {
	return nil, errors.New("not implemented")
}

func (m *mockClient) GetEvents(ctx context.Context, days int) (*model.EventSnapshot, error) {
	return nil, errors.New("not implemented")
}

func (m *mockClient) SetStatus(ctx context.Context, action portal.Action) error {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, action)
	}
	return nil
}

func (m *mockClient) Logout(ctx context.Context, force bool) error { return nil }
func (m *mockClient) Authenticated() bool                          { return m.authenticated }
func (m *mockClient) LastAuthSuccess() time.Time                   { return m.lastAuthSuccess }

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/accounts", h.GetAccounts)
	r.GET("/api/accounts/:account_id/status", h.GetStatus)
	r.GET("/api/accounts/:account_id/temperatures", h.GetTemperatures)
	r.GET("/api/accounts/:account_id/events", h.GetEvents)
	r.POST("/api/accounts/:account_id/alarm", h.PostAlarmCommand)
	return r
}

func TestGetAccounts(t *testing.T) {
	sessions := session.NewManager()
	ts := time.Date(2026, 1, 12, 14, 30, 0, 0, time.UTC)
	sessions.Put("home", &mockClient{authenticated: true, lastAuthSuccess: ts})
	sessions.Put("cottage", &mockClient{})

	router := setupRouter(NewHandler(sessions, snapshot.NewRegistry(), nil, nil, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/accounts", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"id":"cottage","authenticated":false,"last_auth_success":null},
		{"id":"home","authenticated":true,"last_auth_success":"2026-01-12T14:30:00Z"}
	]`, w.Body.String())
}

func TestGetStatus_UnknownAccount(t *testing.T) {
	router := setupRouter(NewHandler(session.NewManager(), snapshot.NewRegistry(), nil, nil, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/accounts/nope/status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"unknown account"}`, w.Body.String())
}

func TestGetStatus_NoDataYet(t *testing.T) {
	sessions := session.NewManager()
	sessions.Put("home", &mockClient{})
	router := setupRouter(NewHandler(sessions, snapshot.NewRegistry(), nil, nil, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/accounts/home/status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"no status data available yet"}`, w.Body.String())
}

func TestGetStatus_ServesSnapshot(t *testing.T) {
	sessions := session.NewManager()
	sessions.Put("home", &mockClient{})
	snapshots := snapshot.NewRegistry()
	snapshots.SetStatus("home", model.StatusSnapshot{
		Alarm:      model.AlarmStatus{StatusText: "Alarme activée", Armed: true},
		ObservedAt: time.Date(2026, 1, 12, 14, 30, 0, 0, time.UTC),
	})
	router := setupRouter(NewHandler(sessions, snapshots, nil, nil, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/accounts/home/status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Alarme activée"`)
	assert.Contains(t, w.Body.String(), `"is_armed":true`)
}

func TestGetTemperatures_ServesSnapshot(t *testing.T) {
	sessions := session.NewManager()
	sessions.Put("home", &mockClient{})
	snapshots := snapshot.NewRegistry()
	snapshots.SetTemperatures("home", model.TemperatureSnapshot{
		Readings: map[string]model.TemperatureReading{
			"sejour": {SensorID: "sejour", Name: "Séjour", Value: 21.5, Unit: "°C"},
		},
		ObservedAt: time.Now().UTC(),
	})
	router := setupRouter(NewHandler(sessions, snapshots, nil, nil, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/accounts/home/temperatures", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sejour"`)
	assert.Contains(t, w.Body.String(), `21.5`)
}

func TestGetEvents_NoDataYet(t *testing.T) {
	sessions := session.NewManager()
	sessions.Put("home", &mockClient{})
	router := setupRouter(NewHandler(sessions, snapshot.NewRegistry(), nil, nil, nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/accounts/home/events", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"no event data available yet"}`, w.Body.String())
}

func TestPostAlarmCommand(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		setStatusErr error
		wantCode     int
		wantRefresh  bool
	}{
		{
			name:        "arm command accepted",
			body:        `{"action":"arm"}`,
			wantCode:    http.StatusAccepted,
			wantRefresh: true,
		},
		{
			name:     "missing action",
			body:     `{}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:         "invalid action rejected by client",
			body:         `{"action":"explode"}`,
			setStatusErr: fmt.Errorf("%w: %q", portal.ErrInputInvalid, "explode"),
			wantCode:     http.StatusBadRequest,
		},
		{
			name:         "bad credentials",
			body:         `{"action":"arm"}`,
			setStatusErr: portal.ErrCredentialsInvalid,
			wantCode:     http.StatusUnauthorized,
		},
		{
			name:         "portal unreachable",
			body:         `{"action":"arm"}`,
			setStatusErr: &portal.TransportError{Op: "set status", Err: errors.New("connection refused")},
			wantCode:     http.StatusBadGateway,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sessions := session.NewManager()
			var gotAction portal.Action
			sessions.Put("home", &mockClient{
				SetStatusFunc: func(ctx context.Context, action portal.Action) error {
					gotAction = action
					return tc.setStatusErr
				},
			})

			refreshed := false
			h := NewHandler(sessions, snapshot.NewRegistry(), nil, nil, func(accountID string) {
				assert.Equal(t, "home", accountID)
				refreshed = true
			})
			router := setupRouter(h)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/api/accounts/home/alarm", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantCode, w.Code)
			assert.Equal(t, tc.wantRefresh, refreshed)
			if tc.name == "arm command accepted" {
				require.Equal(t, portal.Action("arm"), gotAction)
			}
		})
	}
}
