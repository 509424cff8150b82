package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

const healthShutdownTimeout = 5 * time.Second

// HealthServer answers the scheduled worker's probes. /health is liveness and
// always returns 200. /health/ready returns 503 until SetReady(true), then 200
// with the outcome of the most recent crawl.
type HealthServer struct {
	addr    string
	logger  *slog.Logger
	ready   atomic.Bool
	lastRun atomic.Pointer[RunStatus]
}

// RunStatus summarizes a finished crawl.
type RunStatus struct {
	RunID      string    `json:"run_id"`
	Rows       int       `json:"rows"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}

type healthResponse struct {
	Status  string     `json:"status"`
	LastRun *RunStatus `json:"last_run,omitempty"`
}

// NewHealthServer returns a server for addr that is not yet ready.
func NewHealthServer(addr string, logger *slog.Logger) *HealthServer {
	return &HealthServer{addr: addr, logger: logger}
}

// Handler returns the probe routes.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		h.respond(w, http.StatusOK, healthResponse{Status: "ok"})
	})
	mux.HandleFunc("GET /health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if !h.ready.Load() {
			h.respond(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
			return
		}
		h.respond(w, http.StatusOK, healthResponse{Status: "ok", LastRun: h.LastRun()})
	})
	return mux
}

// Start serves until ctx is done and then returns http.ErrServerClosed once
// in-flight probes finish or the grace period ends.
func (h *HealthServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("health listen %s: %w", h.addr, err)
	}
	server := &http.Server{
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      5 * time.Second,
	}
	h.logger.Info("health server listening", slog.String("addr", ln.Addr().String()))

	shutdownDone := make(chan error, 1)
	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), healthShutdownTimeout)
		defer cancel()
		shutdownDone <- server.Shutdown(shutdownCtx)
	})
	defer stop()

	err = server.Serve(ln)
	if !errors.Is(err, http.ErrServerClosed) {
		h.logger.Error("health server failed", slog.Any("error", err))
		return err
	}
	if err := <-shutdownDone; err != nil {
		h.logger.Error("health server shutdown failed", slog.Any("error", err))
		return err
	}
	h.logger.Info("health server stopped")
	return http.ErrServerClosed
}

// SetReady sets the state reported by /health/ready.
func (h *HealthServer) SetReady(ready bool) {
	h.ready.Store(ready)
	h.logger.Info("readiness changed", slog.Bool("ready", ready))
}

// RecordRun stores the outcome of a finished crawl. A failed crawl leaves
// readiness alone; the next scheduled run may succeed.
func (h *HealthServer) RecordRun(runID string, rows int, err error) {
	status := &RunStatus{RunID: runID, Rows: rows, FinishedAt: time.Now().UTC()}
	if err != nil {
		status.Error = err.Error()
	}
	h.lastRun.Store(status)
}

// LastRun returns a copy of the most recent crawl status, or nil.
func (h *HealthServer) LastRun() *RunStatus {
	last := h.lastRun.Load()
	if last == nil {
		return nil
	}
	s := *last
	return &s
}

func (h *HealthServer) respond(w http.ResponseWriter, status int, body healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encode health response", slog.Any("error", err))
	}
}
