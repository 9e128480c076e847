package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/vitality/internal/progression"
	"github.com/abhisek/vitality/internal/rewards"
	"github.com/abhisek/vitality/internal/store"
)

type testServer struct {
	ts  *httptest.Server
	now time.Time
}

func setupServer(t *testing.T, mutate ...func(*progression.Config)) *testServer {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := progression.DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	engine, err := progression.NewEngine(cfg, progression.Deps{
		Snapshots: st.SnapshotRepo(),
		Events:    st.EventRepo(),
		Seasons:   progression.FixedSeason(rewards.Spring),
	})
	require.NoError(t, err)

	s := &testServer{now: time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)}
	srv := NewServer(engine, nil)
	srv.SetClock(func() time.Time { return s.now })
	srv.EnableMetrics()
	s.ts = httptest.NewServer(srv.Handler())
	t.Cleanup(s.ts.Close)
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.ts.URL+path, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	s := setupServer(t)
	code, body := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupServer(t)
	resp, err := http.Get(s.ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOnboardAndState(t *testing.T) {
	s := setupServer(t)

	code, body := s.do(t, http.MethodPost, "/api/users/u1/onboard", nil)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, float64(50), body["capacity"])
	assert.Equal(t, "medium", body["capacityBand"])

	code, body = s.do(t, http.MethodPost, "/api/users/u1/onboard", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "user_exists", body["kind"])

	code, body = s.do(t, http.MethodGet, "/api/users/u1/state", nil)
	require.Equal(t, http.StatusOK, code)
	energy := body["energy"].(map[string]any)
	assert.Equal(t, float64(70), energy["current"])

	code, body = s.do(t, http.MethodGet, "/api/users/ghost/state", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "user_not_found", body["kind"])
}

func TestRecordActivity(t *testing.T) {
	s := setupServer(t)
	s.do(t, http.MethodPost, "/api/users/u1/onboard", nil)

	code, body := s.do(t, http.MethodPost, "/api/users/u1/activities", map[string]any{
		"activityType": "work_project",
		"description":  "quarterly report",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, float64(30), body["energySpent"])
	assert.Equal(t, float64(600), body["overallXPGained"])
	assert.NotEmpty(t, body["id"])

	code, _ = s.do(t, http.MethodPost, "/api/users/u1/activities", map[string]any{"activityType": "work_project"})
	require.Equal(t, http.StatusCreated, code)

	code, body = s.do(t, http.MethodPost, "/api/users/u1/activities", map[string]any{"activityType": "work_project"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Insufficient energy", body["error"])
	assert.Equal(t, "insufficient_energy", body["kind"])
	assert.Equal(t, float64(30), body["requiredEnergy"])
	assert.Equal(t, float64(10), body["currentEnergy"])

	code, body = s.do(t, http.MethodPost, "/api/users/u1/activities", map[string]any{"activityType": "juggling"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_activity_type", body["kind"])

	code, body = s.do(t, http.MethodPost, "/api/users/u1/activities", map[string]any{"activity": "rest"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_request", body["kind"])

	code, body = s.do(t, http.MethodGet, "/api/users/u1/events?kind=activity", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["events"], 2)
}

func TestPreviewMatchesReceipt(t *testing.T) {
	s := setupServer(t)
	s.do(t, http.MethodPost, "/api/users/u1/onboard", nil)
	req := map[string]any{"activityType": "learning"}

	code, preview := s.do(t, http.MethodPost, "/api/users/u1/activities/preview", req)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, preview["affordable"])

	code, receipt := s.do(t, http.MethodPost, "/api/users/u1/activities", req)
	require.Equal(t, http.StatusCreated, code)

	reward := preview["reward"].(map[string]any)
	assert.Equal(t, reward["overall"], receipt["overallXPGained"])
	assert.Equal(t, reward["split"], receipt["categoryXPGained"])
}

func TestBlockedByBurnout(t *testing.T) {
	s := setupServer(t, func(c *progression.Config) {
		c.Rules.BurnoutThreshold = 51
		c.Rules.BurnoutEntryDays = 1
	})
	s.do(t, http.MethodPost, "/api/users/u1/onboard", nil)

	s.now = s.now.Add(24 * time.Hour)
	code, body := s.do(t, http.MethodPost, "/api/users/u1/ticks/daily", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "applied", body["status"])

	code, body = s.do(t, http.MethodPost, "/api/users/u1/activities", map[string]any{"activityType": "work_project"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Blocked by burnout", body["error"])
	assert.Equal(t, "blocked_by_burnout", body["kind"])

	code, _ = s.do(t, http.MethodPost, "/api/users/u1/activities", map[string]any{"activityType": "rest"})
	assert.Equal(t, http.StatusCreated, code)
}

func TestTicks(t *testing.T) {
	s := setupServer(t)
	s.do(t, http.MethodPost, "/api/users/u1/onboard", nil)

	code, body := s.do(t, http.MethodPost, "/api/users/u1/ticks/daily", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "stale_tick_skipped", body["status"])

	s.now = s.now.Add(7 * 24 * time.Hour)
	code, body = s.do(t, http.MethodPost, "/api/users/u1/catch-up", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["applied"], 2)

	code, body = s.do(t, http.MethodPost, "/api/users/u1/ticks/weekly", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "stale_tick_skipped", body["status"])

	code, body = s.do(t, http.MethodPost, "/api/users/u1/ticks/hourly", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_request", body["kind"])
}

func TestOverride(t *testing.T) {
	s := setupServer(t)
	s.do(t, http.MethodPost, "/api/users/u1/onboard", nil)

	code, body := s.do(t, http.MethodPut, "/api/users/u1/xp", map[string]any{"overallXP": 12000})
	require.Equal(t, http.StatusOK, code)
	xp := body["xp"].(map[string]any)
	assert.Equal(t, "Sergeant", xp["rankTitle"])
	assert.Equal(t, float64(3), xp["overallLevel"])

	code, body = s.do(t, http.MethodPut, "/api/users/u1/xp", map[string]any{"overallXP": -1})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_request", body["kind"])

	code, _ = s.do(t, http.MethodPut, "/api/users/u1/xp", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)
}
