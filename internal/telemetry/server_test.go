package telemetry_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manvi18ux/assistive-har-system/internal/alert"
	"github.com/manvi18ux/assistive-har-system/internal/telemetry"
)

type staticLogs struct {
	entries []json.RawMessage
}

func (l staticLogs) Read(int) ([]json.RawMessage, error) {
	return l.entries, nil
}

func newTestServer(t *testing.T, cfg telemetry.ServerConfig) (*telemetry.Store, http.Handler) {
	t.Helper()

	store := newTestStore(t)
	server := telemetry.NewServer(store, cfg)

	return store, server.Handler()
}

func doRequest(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	store, handler := newTestServer(t, telemetry.ServerConfig{})

	store.RecordAlert(alert.NewEvent(alert.KindFall, "Fall detected!", alert.PriorityCritical, 30))

	rec := doRequest(handler, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot telemetry.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, "Active", snapshot.SystemStatus)
	require.Len(t, snapshot.Alerts, 1)
	assert.Equal(t, 1, snapshot.Statistics.FallsToday)

	assert.Equal(t, http.StatusMethodNotAllowed, doRequest(handler, http.MethodPost, "/api/status", "").Code)
}

func TestAlertEndpoint(t *testing.T) {
	store, handler := newTestServer(t, telemetry.ServerConfig{})

	rec := doRequest(handler, http.MethodPost, "/api/alert",
		`{"type":"fall","message":"Fall detected!","priority":"critical","cooldown":30}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())

	assert.Equal(t, 1, store.Statistics().FallsToday)
}

func TestAlertEndpointValidation(t *testing.T) {
	_, handler := newTestServer(t, telemetry.ServerConfig{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"type":`},
		{"missing kind", `{"message":"hello"}`},
		{"missing message", `{"type":"fall"}`},
		{"negative cooldown", `{"type":"fall","message":"x","cooldown":-1}`},
		{"unknown priority", `{"type":"fall","message":"x","priority":"urgent"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(handler, http.MethodPost, "/api/alert", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestEventEndpoint(t *testing.T) {
	var mu sync.Mutex
	var received []alert.Event
	accept := true

	_, handler := newTestServer(t, telemetry.ServerConfig{
		OnEvent: func(event alert.Event) bool {
			mu.Lock()
			defer mu.Unlock()
			received = append(received, event)
			return accept
		},
	})

	rec := doRequest(handler, http.MethodPost, "/api/event",
		`{"type":"help","message":"Help requested!","priority":"critical","cooldown":30,"speak":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","accepted":true}`, rec.Body.String())

	mu.Lock()
	require.Len(t, received, 1)
	assert.Equal(t, "help", received[0].Kind)
	assert.False(t, received[0].Speak)
	assert.Equal(t, alert.PriorityCritical, received[0].Priority)
	mu.Unlock()

	accept = false
	rec = doRequest(handler, http.MethodPost, "/api/event",
		`{"type":"help","message":"Help requested!","cooldown":30}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","accepted":false}`, rec.Body.String())
}

func TestEventEndpointUnconfigured(t *testing.T) {
	_, handler := newTestServer(t, telemetry.ServerConfig{})

	rec := doRequest(handler, http.MethodPost, "/api/event",
		`{"type":"help","message":"Help requested!"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestActivityEndpoint(t *testing.T) {
	var mu sync.Mutex
	var labels []string

	store, handler := newTestServer(t, telemetry.ServerConfig{
		OnActivity: func(activity string, _ time.Time) {
			mu.Lock()
			defer mu.Unlock()
			labels = append(labels, activity)
		},
	})

	rec := doRequest(handler, http.MethodPost, "/api/activity", `{"activity":"Walking"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "Walking", store.Snapshot().CurrentActivity)
	mu.Lock()
	assert.Equal(t, []string{"Walking"}, labels)
	mu.Unlock()

	assert.Equal(t, http.StatusBadRequest, doRequest(handler, http.MethodPost, "/api/activity", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(handler, http.MethodPost, "/api/activity", `not json`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, doRequest(handler, http.MethodGet, "/api/activity", "").Code)
}

func TestActivityDurationEndpoint(t *testing.T) {
	store, handler := newTestServer(t, telemetry.ServerConfig{})

	rec := doRequest(handler, http.MethodPost, "/api/activity_duration",
		`{"current_activity":"Sitting","daily_stats":{"total_sitting":500}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(handler, http.MethodPost, "/api/activity_duration",
		`{"daily_stats":{"total_walking":60}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	block := store.Snapshot().ActivityDuration
	assert.Equal(t, "Sitting", block.CurrentActivity)
	assert.Equal(t, 500.0, block.DailyStats["total_sitting"])
	assert.Equal(t, 60.0, block.DailyStats["total_walking"])
}

func TestLogsEndpoint(t *testing.T) {
	_, handler := newTestServer(t, telemetry.ServerConfig{
		Logs: staticLogs{entries: []json.RawMessage{
			json.RawMessage(`{"type":"fall"}`),
			json.RawMessage(`{"type":"help"}`),
		}},
	})

	rec := doRequest(handler, http.MethodGet, "/api/logs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"type":"fall"},{"type":"help"}]`, rec.Body.String())
}

func TestLogsEndpointWithoutReader(t *testing.T) {
	_, handler := newTestServer(t, telemetry.ServerConfig{})

	rec := doRequest(handler, http.MethodGet, "/api/logs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestStatsEndpoint(t *testing.T) {
	statsPath := filepath.Join(t.TempDir(), "session_stats.json")
	require.NoError(t, os.WriteFile(statsPath, []byte(`{"falls_detected":2}`), 0o644))

	_, handler := newTestServer(t, telemetry.ServerConfig{StatsPath: statsPath})

	rec := doRequest(handler, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"falls_detected":2}`, rec.Body.String())
}

func TestStatsEndpointMissingFile(t *testing.T) {
	_, handler := newTestServer(t, telemetry.ServerConfig{
		StatsPath: filepath.Join(t.TempDir(), "missing.json"),
	})

	rec := doRequest(handler, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}
