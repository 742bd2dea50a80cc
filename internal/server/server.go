// Package server exposes the page operations as asynchronous HTTP jobs.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfslicer/internal/metrics"
	"github.com/local/pdfslicer/internal/split"
	"github.com/local/pdfslicer/internal/statuscheck"
	"github.com/local/pdfslicer/internal/storage"
	"github.com/local/pdfslicer/internal/store"
	"github.com/local/pdfslicer/internal/toc"
)

// Options configures a Server.
type Options struct {
	Status        store.StatusStore
	Checker       *statuscheck.Checker // nil disables the dependency probes on /ready
	Plan          toc.Plan
	Concurrency   int
	PagesPerSplit int
	WorkDir       string
	TempMaxAge    time.Duration
}

// Server routes job requests and runs them on a fixed number of worker slots.
type Server struct {
	router        chi.Router
	status        store.StatusStore
	checker       *statuscheck.Checker
	plan          toc.Plan
	pagesPerSplit int
	workDir       string
	tempMaxAge    time.Duration
	slots         chan struct{}
	wg            sync.WaitGroup
}

// JobRequest is the body of POST /jobs.
type JobRequest struct {
	Op            split.Op `json:"op"`
	Input         string   `json:"input"`
	Output        string   `json:"output,omitempty"`
	PagesPerSplit int      `json:"pages_per_split,omitempty"`
}

func (r JobRequest) validate() error {
	switch r.Op {
	case split.OpChunks, split.OpSections, split.OpSummary:
	default:
		return fmt.Errorf("unknown op %q", r.Op)
	}
	if r.Input == "" {
		return errors.New("input is required")
	}
	if r.PagesPerSplit < 0 {
		return errors.New("pages_per_split must be positive")
	}
	return nil
}

// New builds a Server. A nil Status store falls back to memory.
func New(opts Options) *Server {
	if opts.Status == nil {
		opts.Status = store.NewMemoryStatus()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.PagesPerSplit <= 0 {
		opts.PagesPerSplit = split.DefaultPagesPerSplit
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "results"
	}
	if abs, err := filepath.Abs(opts.WorkDir); err == nil {
		opts.WorkDir = abs
	}
	if opts.TempMaxAge <= 0 {
		opts.TempMaxAge = time.Hour
	}
	s := &Server{
		status:        opts.Status,
		checker:       opts.Checker,
		plan:          opts.Plan,
		pagesPerSplit: opts.PagesPerSplit,
		workDir:       opts.WorkDir,
		tempMaxAge:    opts.TempMaxAge,
		slots:         make(chan struct{}, opts.Concurrency),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Wait blocks until every accepted job has finished.
func (s *Server) Wait() { s.wg.Wait() }

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/jobs", s.handleSubmit)
	r.Get("/jobs/{id}", s.handleStatus)

	s.router = r
}

// confine maps a local ref to a clean path inside the work dir. Relative refs are
// taken relative to it; remote and empty refs pass through unchanged.
func (s *Server) confine(ref string) (string, error) {
	if ref == "" || storage.IsRemote(ref) {
		return ref, nil
	}
	p := strings.TrimPrefix(ref, "file://")
	if i := strings.Index(p, "#"); i >= 0 {
		p = p[:i]
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.workDir, p)
	}
	p = filepath.Clean(p)
	rel, err := filepath.Rel(s.workDir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q is outside the work directory", ref)
	}
	return p, nil
}

// acquire reserves a worker slot without blocking.
func (s *Server) acquire() (func(), bool) {
	select {
	case s.slots <- struct{}{}:
		return func() { <-s.slots }, true
	default:
		return func() {}, false
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		writeJSON(w, http.StatusOK, map[string]any{"ready": true})
		return
	}
	sum := s.checker.Summary(r.Context())
	code := http.StatusOK
	if !sum.Ready() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{"ready": sum.Ready(), "checks": sum})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req JobRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		jsonError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var err error
	if req.Input, err = s.confine(req.Input); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Output, err = s.confine(req.Output); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	release, ok := s.acquire()
	if !ok {
		jsonError(w, "all workers busy, retry later", http.StatusServiceUnavailable)
		return
	}

	id := uuid.NewString()
	now := time.Now()
	queued := store.Status{
		Status:   store.StateQueued,
		Message:  "queued",
		Start:    &now,
		Metadata: map[string]interface{}{"op": string(req.Op), "input": req.Input},
	}
	if err := s.status.Set(r.Context(), id, queued); err != nil {
		release()
		log.Error().Err(err).Str("job_id", id).Msg("failed to record job")
		jsonError(w, "status store unavailable", http.StatusInternalServerError)
		return
	}

	s.wg.Add(1)
	go func(ctx context.Context) {
		defer s.wg.Done()
		defer release()
		s.run(ctx, id, req, now)
	}(context.WithoutCancel(r.Context()))

	log.Info().Str("job_id", id).Str("op", string(req.Op)).Str("input", req.Input).Msg("job accepted")
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": id})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, ok, err := s.status.Get(r.Context(), id)
	if err != nil {
		jsonError(w, "status store unavailable", http.StatusInternalServerError)
		return
	}
	if !ok {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    st.Status == store.StateSuccess,
		"job_id":     id,
		"status":     st.Status,
		"progress":   st.Progress,
		"message":    st.Message,
		"start_time": st.Start,
		"end_time":   st.End,
		"metadata":   st.Metadata,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
