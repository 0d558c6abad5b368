// Package metrics exports paging load metrics to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/five82/pager/paging"
)

const namespace = "pager"

// Recorder implements paging.Observer on a dedicated registry.
type Recorder struct {
	registry *prometheus.Registry

	loads    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
}

var _ paging.Observer = (*Recorder)(nil)

// NewRecorder registers the load metrics on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		loads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Finished page loads by feed, axis and outcome.",
		}, []string{"feed", "kind", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Page load latency, including cancelled loads.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"feed", "kind"}),
		inFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loads_in_flight",
			Help:      "Loads currently running.",
		}, []string{"feed"}),
	}
}

// LoadStarted implements paging.Observer.
func (r *Recorder) LoadStarted(name string, _ paging.LoadKind) {
	r.inFlight.WithLabelValues(name).Inc()
}

// LoadFinished implements paging.Observer.
func (r *Recorder) LoadFinished(name string, kind paging.LoadKind, outcome paging.Outcome, elapsed time.Duration) {
	r.inFlight.WithLabelValues(name).Dec()
	r.loads.WithLabelValues(name, kind.String(), outcome.String()).Inc()
	r.duration.WithLabelValues(name, kind.String()).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
