// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const checkTimeout = 5 * time.Second

type Checker interface {
	Ping(ctx context.Context) error
}

// Dependency is a named backend the readiness probe pings.
type Dependency struct {
	Name    string
	Checker Checker
}

type phase int32

const (
	phaseServing phase = iota
	phaseNotReady
	phaseDraining
)

var phaseStatus = map[phase]string{
	phaseServing:  "ok",
	phaseNotReady: "not_ready",
	phaseDraining: "shutting_down",
}

// Handler serves /healthz and /livez (process is up) and /readyz
// (process is up and every Dependency answers).
type Handler struct {
	deps    []Dependency
	version string
	phase   atomic.Int32
}

func NewHandler(version string, deps ...Dependency) *Handler {
	return &Handler{deps: deps, version: version}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

func (h *Handler) current() phase {
	return phase(h.phase.Load())
}

func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	code := http.StatusOK
	status := "ok"
	if h.current() == phaseDraining {
		code, status = http.StatusServiceUnavailable, phaseStatus[phaseDraining]
	}
	writeJSON(w, code, StatusResponse{Status: status, Version: h.version})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if p := h.current(); p != phaseServing {
		writeJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: phaseStatus[p]})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	checks := h.pingAll(ctx)
	resp := ReadinessResponse{Status: "ok", Checks: checks}
	code := http.StatusOK
	if slices.ContainsFunc(checks, func(c HealthCheck) bool { return !c.Healthy }) {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// pingAll checks every dependency concurrently; results keep the
// registration order.
func (h *Handler) pingAll(ctx context.Context) []HealthCheck {
	checks := make([]HealthCheck, len(h.deps))

	var g errgroup.Group
	for i, dep := range h.deps {
		g.Go(func() error {
			checks[i] = ping(ctx, dep)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // ping reports through HealthCheck

	return checks
}

func ping(ctx context.Context, dep Dependency) HealthCheck {
	if dep.Checker == nil {
		return HealthCheck{Name: dep.Name, Message: dep.Name + " checker not configured"}
	}

	start := time.Now()
	err := dep.Checker.Ping(ctx)
	result := HealthCheck{
		Name:    dep.Name,
		Healthy: err == nil,
		Latency: time.Since(start).String(),
	}
	if err != nil {
		result.Message = "ping failed"
	}
	return result
}

// SetReady toggles readiness; it has no effect once draining started.
func (h *Handler) SetReady(ready bool) {
	from, to := phaseServing, phaseNotReady
	if ready {
		from, to = phaseNotReady, phaseServing
	}
	h.phase.CompareAndSwap(int32(from), int32(to))
}

// SetShutdown marks the process as draining so both probes fail.
func (h *Handler) SetShutdown(shutdown bool) {
	if shutdown {
		h.phase.Store(int32(phaseDraining))
		return
	}
	h.phase.CompareAndSwap(int32(phaseDraining), int32(phaseServing))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data) //nolint:errcheck // best-effort response
}

type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
