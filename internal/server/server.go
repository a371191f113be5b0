// Package server serves the last generated report over HTTP and lets
// callers trigger a regeneration.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/alexanderramin/redtally/internal/app"
	"github.com/alexanderramin/redtally/internal/config"
	"github.com/alexanderramin/redtally/internal/report"
	"github.com/alexanderramin/redtally/internal/service"
	"github.com/rs/zerolog"
)

// ErrBusy is returned when a regeneration is already running.
var ErrBusy = errors.New("report generation already running")

// RunTimeout bounds one background generation.
const RunTimeout = 10 * time.Minute

// Server holds the last finished report. Generations run one at a time.
type Server struct {
	cfg     config.Config
	log     zerolog.Logger
	reports app.GenerateReportUseCase
	now     func() time.Time
	base    context.Context

	mu      sync.Mutex
	last    *report.Report
	lastErr error
	lastRun time.Time
	running bool

	wg sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithBaseContext sets the context background generations derive from.
// Cancelling it cancels generations started by Trigger.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Server) {
		if ctx != nil {
			s.base = ctx
		}
	}
}

// New returns a Server generating reports for cfg.
func New(cfg config.Config, reports app.GenerateReportUseCase, log zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		log:     log,
		reports: reports,
		now:     time.Now,
		base:    context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status describes the last generation.
type Status struct {
	Running     bool       `json:"running"`
	RunID       string     `json:"run_id,omitempty"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// Last returns the last successful report, or nil.
func (s *Server) Last() *report.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Status reports the state of the last generation.
func (s *Server) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{Running: s.running}
	if s.last != nil {
		st.RunID = s.last.RunID
		at := s.last.GeneratedAt
		st.GeneratedAt = &at
	}
	if !s.lastRun.IsZero() {
		at := s.lastRun
		st.LastRun = &at
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// Regenerate runs a generation now and keeps its report on success.
func (s *Server) Regenerate(ctx context.Context) error {
	if !s.begin() {
		return ErrBusy
	}
	return s.run(ctx)
}

// Trigger starts a generation in the background. It returns false when
// one is already running.
func (s *Server) Trigger() bool {
	if !s.begin() {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.base, RunTimeout)
		defer cancel()
		_ = s.run(ctx)
	}()
	return true
}

// Wait blocks until background generations finish.
func (s *Server) Wait() { s.wg.Wait() }

func (s *Server) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Server) run(ctx context.Context) error {
	req, err := service.NewReportRequest(s.cfg, s.now())
	var res *service.Result
	if err == nil {
		res, err = s.reports.Generate(ctx, req)
	}

	s.mu.Lock()
	s.running = false
	s.lastRun = s.now()
	s.lastErr = err
	if err == nil {
		s.last = res.Report
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error().Err(err).Msg("report generation failed")
		return err
	}
	s.log.Info().Str("run_id", res.Report.RunID).Msg("report generated")
	return nil
}

// Run serves HTTP on cfg.Server.Addr until ctx ends, then shuts down and
// waits for background generations. Generations started by Trigger follow
// the context given to WithBaseContext, not ctx.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info().Str("addr", srv.Addr).Msg("http server listening")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Wait()
	return err
}
