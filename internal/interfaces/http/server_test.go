package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paramsearch/finder/internal/finder"
	"github.com/paramsearch/finder/internal/metrics"
)

func testServer(t *testing.T) (*Server, *finder.Engine) {
	t.Helper()
	engine := finder.NewEngine(finder.EngineConfig{})
	registry := prometheus.NewRegistry()
	metrics.New(registry)

	cfg := DefaultServerConfig()
	cfg.Port = 0 // any free port
	srv, err := NewServer(cfg, engine, nil, nil, registry)
	require.NoError(t, err)
	return srv, engine
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var payload healthPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload.Status)
	assert.Equal(t, "idle", payload.State)
}

func TestStatusReflectsSession(t *testing.T) {
	srv, engine := testServer(t)

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest("GET", "/status", nil))
	var idle statusPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &idle))
	assert.Equal(t, "idle", idle.State)
	assert.Empty(t, idle.RunID)

	id, err := engine.Session().Begin()
	require.NoError(t, err)
	defer engine.Session().Finish()

	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest("GET", "/status", nil))
	var running statusPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &running))
	assert.Equal(t, "running", running.State)
	assert.Equal(t, id.String(), running.RunID)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "finder_")
}

func TestNotFoundIsJSON(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))
	require.Equal(t, 404, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "/nope", payload["path"])
}
