// Package metrics records per-run pipeline counters and writes them in the
// Prometheus text format for the node exporter textfile collector.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"flixlist/internal/catalog"
)

const namespace = "flixlist"

// Lookup results for the secondary rating counter.
const (
	LookupNetwork = "network"
	LookupCache   = "cache"
	LookupFailure = "failure"
)

// Recorder holds one run's metrics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	candidates  *prometheus.GaugeVec
	admitted    prometheus.Gauge
	overrides   prometheus.Gauge
	duplicates  prometheus.Gauge
	rejected    *prometheus.GaugeVec
	lookups     *prometheus.CounterVec
	written     *prometheus.GaugeVec
	duration    prometheus.Gauge
	success     prometheus.Gauge
	lastSuccess prometheus.Gauge
}

// New registers the run metrics on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	r := &Recorder{
		registry: reg,
		candidates: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "candidates",
			Help:      "Candidates fetched from the catalog source by media type",
		}, []string{"media_type"}),
		admitted: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "admitted",
			Help:      "Candidates that passed every admission gate",
		}),
		overrides: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "overrides_merged",
			Help:      "Override records added to the catalog",
		}),
		duplicates: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "duplicates_dropped",
			Help:      "Records dropped as duplicates",
		}),
		rejected: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "rejected",
			Help:      "Rejected candidates by reason",
		}, []string{"reason"}),
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "lookups_total",
			Help:      "Secondary rating lookups by result",
		}, []string{"result"}),
		written: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "publish",
			Name:      "records",
			Help:      "Records written per catalog view",
		}, []string{"view"}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		success: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_success",
			Help:      "1 when the last run completed, 0 when it failed",
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last completed run",
		}),
	}
	for _, reason := range catalog.Reasons {
		r.rejected.WithLabelValues(string(reason)).Set(0)
	}
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) SetCandidates(mediaType catalog.MediaType, n int) {
	r.candidates.WithLabelValues(mediaType.String()).Set(float64(n))
}

func (r *Recorder) SetAdmitted(n int) { r.admitted.Set(float64(n)) }

func (r *Recorder) SetOverrides(n int) { r.overrides.Set(float64(n)) }

func (r *Recorder) SetDuplicates(n int) { r.duplicates.Set(float64(n)) }

func (r *Recorder) SetRejected(counts map[catalog.Reason]int) {
	for reason, n := range counts {
		r.rejected.WithLabelValues(string(reason)).Set(float64(n))
	}
}

func (r *Recorder) AddLookups(result string, n int64) {
	if n > 0 {
		r.lookups.WithLabelValues(result).Add(float64(n))
	}
}

func (r *Recorder) SetWritten(view string, n int) {
	r.written.WithLabelValues(view).Set(float64(n))
}

// Finish records the run outcome.
func (r *Recorder) Finish(elapsed time.Duration, finished time.Time, ok bool) {
	r.duration.Set(elapsed.Seconds())
	if ok {
		r.success.Set(1)
		r.lastSuccess.Set(float64(finished.Unix()))
		return
	}
	r.success.Set(0)
}

// WriteTextfile writes the registry to path. A blank path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
