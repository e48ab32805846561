// Package metrics exports validation pass lifecycle events as Prometheus
// metrics.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-formfield/pkg/field"
)

const namespace = "formfield"

// Collector implements field.Observer with Prometheus counters and a pass
// duration histogram, all labelled by field name.
type Collector struct {
	started    *prometheus.CounterVec
	committed  *prometheus.CounterVec
	discarded  *prometheus.CounterVec
	exceptions *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

var _ field.Observer = (*Collector)(nil)

// NewCollector creates the metrics and registers them with reg. A nil reg
// leaves them unregistered.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_started_total",
			Help:      "Validation passes started.",
		}, []string{"field"}),
		committed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_committed_total",
			Help:      "Validation passes whose outcome was committed, by result.",
		}, []string{"field", "result"}),
		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_discarded_total",
			Help:      "Validation passes dropped because a newer pass, reset or dispose superseded them.",
		}, []string{"field"}),
		exceptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_exceptions_total",
			Help:      "Rules that returned an error or panicked.",
		}, []string{"field"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Time from pass start to commit.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"field"}),
	}

	if reg != nil {
		for _, collector := range []prometheus.Collector{c.started, c.committed, c.discarded, c.exceptions, c.duration} {
			if err := reg.Register(collector); err != nil {
				return nil, fmt.Errorf("metrics: register: %w", err)
			}
		}
	}
	return c, nil
}

// PassStarted implements field.Observer.
func (c *Collector) PassStarted(name string, _ uint64) {
	c.started.WithLabelValues(name).Inc()
}

// PassCommitted implements field.Observer.
func (c *Collector) PassCommitted(name string, _ uint64, valid bool, elapsed time.Duration) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	c.committed.WithLabelValues(name, result).Inc()
	c.duration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// PassDiscarded implements field.Observer.
func (c *Collector) PassDiscarded(name string, _ uint64) {
	c.discarded.WithLabelValues(name).Inc()
}

// RuleException implements field.Observer.
func (c *Collector) RuleException(name string, _ error) {
	c.exceptions.WithLabelValues(name).Inc()
}
