package handler

import (
	"net/http"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

type HealthHandler struct {
	version string
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

// GET /v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}

// GET /v1/version
func (h *HealthHandler) Version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

// GET /v1/diagnostics
func (h *HealthHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{
		"status":     "ok",
		"version":    h.version,
		"goroutines": runtime.NumGoroutine(),
		"cpus":       runtime.NumCPU(),
	}
	if info, err := host.InfoWithContext(r.Context()); err == nil {
		out["hostname"] = info.Hostname
		out["uptime_s"] = info.Uptime
		out["os"] = info.OS
	}
	if vm, err := mem.VirtualMemoryWithContext(r.Context()); err == nil {
		out["mem_used_percent"] = vm.UsedPercent
	}
	writeJSON(w, http.StatusOK, out)
}
