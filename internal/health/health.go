// Package health provides HTTP liveness and readiness handlers for the
// dictato server.
//
//   - /healthz — liveness probe; always returns 200 OK.
//   - /readyz  — readiness probe; returns 200 only when every registered
//     check passes (rule store reachable, active dictionary valid).
//
// Responses are JSON objects with a top-level "status" field ("ok" or "fail")
// and a "checks" map containing the result of each named check.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// defaultCheckTimeout bounds a single readiness check. Store pings should be
// fast; anything slower counts as not ready.
const defaultCheckTimeout = 5 * time.Second

// Check probes one dependency. It must respect context cancellation and
// return nil when the dependency is healthy.
type Check func(ctx context.Context) error

// Handler serves the /healthz and /readyz endpoints. The check set is fixed
// at construction time, so the handler is safe for concurrent use.
type Handler struct {
	timeout time.Duration
	names   []string
	checks  map[string]Check
}

// Option configures a [Handler].
type Option func(*Handler)

// WithCheckTimeout overrides the per-check timeout used by /readyz.
func WithCheckTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// New creates a [Handler] with no checks registered. Use [Handler.AddCheck]
// to register readiness checks before serving.
func New(opts ...Option) *Handler {
	h := &Handler{
		timeout: defaultCheckTimeout,
		checks:  make(map[string]Check),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddCheck registers a named readiness check. Registering the same name twice
// replaces the earlier check but keeps its position in the evaluation order.
// AddCheck must not be called after the handler starts serving requests.
func (h *Handler) AddCheck(name string, c Check) {
	if _, ok := h.checks[name]; !ok {
		h.names = append(h.names, name)
	}
	h.checks[name] = c
}

// result is the JSON response body for both endpoints.
type result struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe that always returns 200 OK. A running process
// that can serve HTTP is considered alive.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, result{Status: "ok"})
}

// Readyz is a readiness probe that returns 200 only when every registered
// check passes. Each check runs with a timeout derived from the request
// context; checks are evaluated sequentially in registration order.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.names))
	allOK := true

	for _, name := range h.names {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		err := h.checks[name](ctx)
		cancel()

		if err != nil {
			checks[name] = "fail: " + err.Error()
			allOK = false
		} else {
			checks[name] = "ok"
		}
	}

	res := result{Status: "ok", Checks: checks}
	status := http.StatusOK
	if !allOK {
		res.Status = "fail"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, res)
}

// Register adds the /healthz and /readyz routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// writeJSON encodes v as JSON and writes it with the given status code. On
// encoding failure it falls back to a plain-text 500 response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
