// Package server serves stored violation records over a read-only HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ccollicutt/barklog/pkg/metrics"
	"github.com/ccollicutt/barklog/pkg/output"
	"github.com/ccollicutt/barklog/pkg/store"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// Options configures the HTTP server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server exposes a store and its metrics.
type Server struct {
	store    *store.Store
	recorder *metrics.Recorder
	router   *mux.Router
	opts     Options
}

// New creates a server over st.
func New(st *store.Store, opts Options) *Server {
	s := &Server{
		store:    st,
		recorder: metrics.NewRecorder(),
		router:   mux.NewRouter(),
		opts:     opts,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/days", s.handleListDays).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/days/{date}", s.handleGetDay).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.refreshMetrics(s.recorder.Handler())).Methods(http.MethodGet)
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleListDays(w http.ResponseWriter, r *http.Request) {
	dates, err := s.store.Dates()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days":  dates,
		"count": len(dates),
	})
}

func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]

	rec, err := s.store.Load(date)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		if _, perr := time.Parse("2006-01-02", date); perr != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, output.NewStoredReport(rec))
}

// refreshMetrics recomputes the gauges from the store before each scrape.
func (s *Server) refreshMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dates, err := s.store.Dates()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		records := make([]*store.DayRecord, 0, len(dates))
		for _, d := range dates {
			rec, err := s.store.Load(d)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			records = append(records, rec)
		}

		s.recorder.Observe(output.NewStoredReport(records...))
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
