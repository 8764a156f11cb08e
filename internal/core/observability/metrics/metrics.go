// Package metrics exports query and schedule counters to Prometheus. Every method is safe
// to call on a nil *Collector, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Collector struct {
	queryRuns      *prometheus.CounterVec
	archetypes     *prometheus.CounterVec
	entities       *prometheus.CounterVec
	conflicts      prometheus.Counter
	systemDuration *prometheus.HistogramVec
	systemErrors   *prometheus.CounterVec
}

// NewCollector registers the collector's metrics under namespace on reg.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		queryRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_runs_total",
			Help:      "Number of query executions",
		}, []string{"query"}),
		archetypes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_archetypes_total",
			Help:      "Number of archetypes matched by query executions",
		}, []string{"query"}),
		entities: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_entities_total",
			Help:      "Number of entities yielded by query executions",
		}, []string{"query"}),
		conflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_access_conflicts_total",
			Help:      "Number of system pairs kept apart by conflicting access",
		}),
		systemDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "system_run_duration_seconds",
			Help:      "Duration of system runs",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"system"}),
		systemErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "system_errors_total",
			Help:      "Number of failed system runs",
		}, []string{"system"}),
	}
}

// ObserveQuery records one query execution.
func (c *Collector) ObserveQuery(query string, archetypes, entities int) {
	if c == nil {
		return
	}
	c.queryRuns.WithLabelValues(query).Inc()
	c.archetypes.WithLabelValues(query).Add(float64(archetypes))
	c.entities.WithLabelValues(query).Add(float64(entities))
}

// RecordConflict records one pair of systems that cannot share a stage.
func (c *Collector) RecordConflict() {
	if c == nil {
		return
	}
	c.conflicts.Inc()
}

// ObserveSystem records one system run.
func (c *Collector) ObserveSystem(system string, d time.Duration, err error) {
	if c == nil {
		return
	}
	c.systemDuration.WithLabelValues(system).Observe(d.Seconds())
	if err != nil {
		c.systemErrors.WithLabelValues(system).Inc()
	}
}
