// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"maps"
	"net/http"
	"sync"
)

// HealthFunc reports the status of a single component.
type HealthFunc func() (status string, ok bool)

// HealthHandler serves the combined result of registered health checks.
type HealthHandler struct {
	mu     sync.RWMutex
	checks map[string]HealthFunc
}

// HealthResponse is the JSON body served by [HealthHandler].
type HealthResponse struct {
	OK     bool                           `json:"ok"`
	Checks map[string]HealthCheckResponse `json:"checks,omitempty"`
}

// HealthCheckResponse is the result of a single check.
type HealthCheckResponse struct {
	Status string `json:"status"`
	OK     bool   `json:"ok"`
}

var healthHandlers muxRegistry[*HealthHandler]

// Health returns the [HealthHandler] of mux, registering it at /health on
// first use.
func Health(mux *http.ServeMux) *HealthHandler {
	h, loaded := healthHandlers.loadOrStore(mux, &HealthHandler{checks: make(map[string]HealthFunc)})
	if !loaded {
		mux.Handle("GET /health", h)
	}
	return h
}

// RegisterFunc adds a named check. Registering the same name twice replaces
// the previous check.
func (h *HealthHandler) RegisterFunc(name string, f HealthFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = f
}

// ServeHTTP implements the [http.Handler] interface. It responds with
// 503 Service Unavailable if any check fails.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := maps.Clone(h.checks)
	h.mu.RUnlock()

	resp := HealthResponse{OK: true}
	if len(checks) > 0 {
		resp.Checks = make(map[string]HealthCheckResponse, len(checks))
	}
	for name, check := range checks {
		status, ok := check()
		resp.Checks[name] = HealthCheckResponse{Status: status, OK: ok}
		resp.OK = resp.OK && ok
	}

	w.Header().Set("Content-Type", "application/json")
	if !resp.OK {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	respondJSON(w, resp, true)
}
