package demo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/five82/pager/internal/spindle"
)

const (
	defaultItems    = 120
	defaultLogLimit = 50
	maxLogLimit     = 500
)

var (
	statuses   = []string{"pending", "identifying", "ripping", "encoding", "organizing", "completed", "failed"}
	components = []string{"workflow", "ripper", "encoder", "organizer"}
	levels     = []string{"DEBUG", "INFO", "INFO", "INFO", "WARN", "ERROR"}
)

// Options configure the synthetic dataset and fault injection.
type Options struct {
	// Items is the number of queue items; the log starts with three events per item.
	Items int
	// Latency delays every API response.
	Latency time.Duration
	// FailEvery answers every Nth API request with 503. Zero disables failures.
	FailEvery int
	// Grow appends one log event per tick while Run is active. Zero disables growth.
	Grow time.Duration
}

// Server serves /api/queue and /api/logs over an in-memory dataset.
type Server struct {
	opts Options
	log  logrus.FieldLogger
	hits atomic.Int64

	mu    sync.RWMutex
	queue []spindle.QueueItem
	logs  []spindle.LogEvent
	epoch time.Time
}

// New builds a Server with a deterministic dataset.
func New(opts Options, log logrus.FieldLogger) *Server {
	if opts.Items <= 0 {
		opts.Items = defaultItems
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		opts:  opts,
		log:   log.WithField("component", "demo"),
		epoch: time.Date(2025, time.December, 13, 9, 0, 0, 0, time.UTC),
	}
	for i := 1; i <= opts.Items; i++ {
		s.queue = append(s.queue, queueItem(int64(i), s.epoch))
	}
	s.Emit(opts.Items * 3)
	return s
}

func queueItem(id int64, epoch time.Time) spindle.QueueItem {
	status := statuses[int(id)%len(statuses)]
	item := spindle.QueueItem{
		ID:             id,
		DiscTitle:      fmt.Sprintf("Disc %03d", id),
		SourcePath:     fmt.Sprintf("/media/discs/disc-%03d.iso", id),
		Status:         status,
		ProcessingLane: "foreground",
		CreatedAt:      epoch.Add(time.Duration(id) * time.Minute).Format(time.RFC3339),
		UpdatedAt:      epoch.Add(time.Duration(id)*time.Minute + 30*time.Second).Format(time.RFC3339),
	}
	switch status {
	case "failed":
		item.ErrorMessage = "makemkv exited with status 1"
	case "completed":
		item.Progress = spindle.QueueProgress{Stage: "organizing", Percent: 100, Message: "done"}
	default:
		item.Progress = spindle.QueueProgress{Stage: status, Percent: float64(id%10) * 10}
	}
	if id%11 == 0 {
		item.NeedsReview = true
		item.ReviewReason = "ambiguous episode match"
	}
	return item
}

// Emit appends n log events continuing the sequence.
func (s *Server) Emit(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for range n {
		seq := uint64(len(s.logs) + 1)
		itemID := int64(seq%uint64(len(s.queue))) + 1
		s.logs = append(s.logs, spindle.LogEvent{
			Sequence:  seq,
			Timestamp: s.epoch.Add(time.Duration(seq) * time.Second).Format(time.RFC3339),
			Level:     levels[seq%uint64(len(levels))],
			Message:   fmt.Sprintf("event %d for item %d", seq, itemID),
			Component: components[seq%uint64(len(components))],
			ItemID:    itemID,
		})
	}
}

// LogCount returns the number of events currently held.
func (s *Server) LogCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs)
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.faults)
		r.Get("/queue", s.handleQueue)
		r.Get("/logs", s.handleLogs)
	})
	return r
}

// faults injects latency and periodic failures.
func (s *Server) faults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := s.hits.Add(1)
		if s.opts.Latency > 0 {
			select {
			case <-time.After(s.opts.Latency):
			case <-r.Context().Done():
				return
			}
		}
		if s.opts.FailEvery > 0 && n%int64(s.opts.FailEvery) == 0 {
			s.log.WithFields(logrus.Fields{"path": r.URL.Path, "request": n}).Debug("injected failure")
			http.Error(w, "injected failure", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleQueue(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	items := append([]spindle.QueueItem(nil), s.queue...)
	s.mu.RUnlock()
	writeJSON(w, spindle.QueueListResponse{Items: items})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	since, err := parseUint(q.Get("since"))
	if err != nil {
		http.Error(w, "invalid since", http.StatusBadRequest)
		return
	}
	limit := defaultLogLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLogLimit)
	}
	component := strings.TrimSpace(q.Get("component"))
	level := strings.TrimSpace(q.Get("level"))

	batch := spindle.LogBatch{Events: []spindle.LogEvent{}, Next: since}
	s.mu.RLock()
	for _, ev := range s.logs {
		if ev.Sequence <= since {
			continue
		}
		if component != "" && !strings.EqualFold(ev.Component, component) {
			continue
		}
		if level != "" && !strings.EqualFold(ev.Level, level) {
			continue
		}
		batch.Events = append(batch.Events, ev)
		batch.Next = ev.Sequence
		if len(batch.Events) == limit {
			break
		}
	}
	s.mu.RUnlock()
	writeJSON(w, batch)
}

// Run grows the log until ctx is done.
func (s *Server) Run(ctx context.Context) {
	if s.opts.Grow <= 0 {
		return
	}
	ticker := time.NewTicker(s.opts.Grow)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Emit(1)
		}
	}
}

// ListenAndServe serves the API on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go s.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.WithFields(logrus.Fields{
		"addr":       addr,
		"items":      len(s.queue),
		"latency":    s.opts.Latency,
		"fail_every": s.opts.FailEvery,
	}).Info("demo api listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("demo api: %w", err)
	}
	return nil
}

func parseUint(raw string) (uint64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
