package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/paramsearch/finder/internal/data"
	"github.com/paramsearch/finder/internal/finder"
	"github.com/paramsearch/finder/internal/offload"
)

type handlers struct {
	engine  *finder.Engine
	cache   *data.CachedSource
	client  *offload.Client
	started time.Time
}

func newHandlers(engine *finder.Engine, cache *data.CachedSource, client *offload.Client) *handlers {
	return &handlers{engine: engine, cache: cache, client: client, started: time.Now()}
}

type healthPayload struct {
	Status    string `json:"status"`
	State     string `json:"state"`
	UptimeSec int64  `json:"uptimeSec"`
	Timestamp string `json:"timestamp"`
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthPayload{
		Status:    "ok",
		State:     h.engine.Session().State().String(),
		UptimeSec: int64(time.Since(h.started).Seconds()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

type cachePayload struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

type offloadPayload struct {
	BreakerState string `json:"breakerState"`
}

type statusPayload struct {
	State   string              `json:"state"`
	RunID   string              `json:"runId,omitempty"`
	Stats   finder.SessionStats `json:"stats"`
	Cache   *cachePayload       `json:"cache,omitempty"`
	Offload *offloadPayload     `json:"offload,omitempty"`
}

func (h *handlers) status(w http.ResponseWriter, _ *http.Request) {
	session := h.engine.Session()
	payload := statusPayload{
		State: session.State().String(),
		Stats: session.Stats(),
	}
	if session.State() != finder.StateIdle {
		payload.RunID = session.ID().String()
	}
	if h.cache != nil {
		hits, misses := h.cache.Stats()
		payload.Cache = &cachePayload{Hits: hits, Misses: misses}
	}
	if h.client != nil {
		payload.Offload = &offloadPayload{BreakerState: h.client.BreakerState()}
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *handlers) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
