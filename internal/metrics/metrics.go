// Package metrics records per-run apply statistics in a Prometheus registry
// that can be written out for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/joshuapare/regapply/pkg/types"
)

// Recorder holds the collectors for one run.
type Recorder struct {
	reg *prometheus.Registry

	DirectivesApplied *prometheus.CounterVec
	ContainersOpened  prometheus.Counter
	ApplyErrors       *prometheus.CounterVec
	ApplyDuration     prometheus.Histogram
}

// New returns a Recorder with a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		DirectivesApplied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regapply_directives_applied_total",
			Help: "Values written to the store, by value kind",
		}, []string{"kind"}),
		ContainersOpened: f.NewCounter(prometheus.CounterOpts{
			Name: "regapply_containers_opened_total",
			Help: "Containers ensured in the store",
		}),
		ApplyErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regapply_apply_errors_total",
			Help: "Failed runs, by error kind",
		}, []string{"kind"}),
		ApplyDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "regapply_apply_duration_seconds",
			Help:    "Wall time spent applying scripts",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Applied counts one written value.
func (r *Recorder) Applied(v types.AppliedValue) {
	r.DirectivesApplied.WithLabelValues(v.Kind.String()).Inc()
}

// Container counts one ensured container.
func (r *Recorder) Container(types.ContainerPath) {
	r.ContainersOpened.Inc()
}

// Error counts a failed run; nil is ignored.
func (r *Recorder) Error(err error) {
	if err == nil {
		return
	}
	kind := "other"
	if k := types.KindOf(err); k != 0 {
		kind = k.String()
	}
	r.ApplyErrors.WithLabelValues(kind).Inc()
}

// Duration records the time taken by a run.
func (r *Recorder) Duration(d time.Duration) {
	r.ApplyDuration.Observe(d.Seconds())
}

// WriteTextfile writes the registry to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
