// Package monitoring serves the read-only health and metrics HTTP surface.
// It runs beside the serial protocol and never affects its correctness.
package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edgeflow/edgeinfer/internal/logger"
	"github.com/edgeflow/edgeinfer/internal/model"
)

// Status is the /status response body.
type Status struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Uptime    time.Duration `json:"uptime"`
	Model     ModelInfo     `json:"model"`
	System    SystemInfo    `json:"system"`
}

type ModelInfo struct {
	Loaded      bool   `json:"loaded"`
	Path        string `json:"path"`
	T           uint16 `json:"t"`
	F           uint16 `json:"f"`
	H           uint16 `json:"h"`
	Hidden      uint16 `json:"hidden"`
	TotalFloats int    `json:"total_floats"`
}

type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Arch         string `json:"arch"`
	NumCPU       int    `json:"num_cpu"`
	MemoryUsedMB int    `json:"memory_used_mb"`
}

// Server exposes /healthz, /status and /metrics.
type Server struct {
	start     time.Time
	model     *model.Model
	modelPath string
	server    *http.Server
}

func New(m *model.Model, modelPath string) *Server {
	return &Server{start: time.Now(), model: m, modelPath: modelPath}
}

// Handler builds the route mux. Split out from Start so tests can drive it
// through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Log.Info("health server listening", "addr", addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	hdr := s.model.Header
	status := Status{
		Status:    "ok",
		Timestamp: time.Now(),
		Uptime:    time.Since(s.start),
		Model: ModelInfo{
			Loaded:      true,
			Path:        s.modelPath,
			T:           hdr.T,
			F:           hdr.F,
			H:           hdr.H,
			Hidden:      hdr.Hidden,
			TotalFloats: hdr.TotalFloats(),
		},
		System: SystemInfo{
			GoVersion:    runtime.Version(),
			OS:           runtime.GOOS,
			Arch:         runtime.GOARCH,
			NumCPU:       runtime.NumCPU(),
			MemoryUsedMB: int(m.Alloc / 1024 / 1024),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}
