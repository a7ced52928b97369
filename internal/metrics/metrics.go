// Package metrics exposes schema validation activity as Prometheus metrics.
//
// A [Collector] implements schema.Observer, so it is attached to a store
// and a validator with schema.WithStoreObserver and schema.WithObserver.
// The CLI writes the registry in the text exposition format with
// [WriteFile] when --metrics-file is set.
//
// Metrics:
//   - <ns>_validations_total{schema,version,outcome}: outcome is "valid",
//     "invalid" or "error"
//   - <ns>_schema_loads_total{outcome}: outcome is "ok" or "error"
//   - <ns>_schema_cache_hits_total
//   - <ns>_schema_cache_misses_total
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/thoreinstein/specval/internal/errors"
	"github.com/thoreinstein/specval/internal/schema"
)

// DefaultNamespace prefixes every metric name when none is configured.
const DefaultNamespace = "specval"

// Validation outcomes.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Collector records store and validator events.
type Collector struct {
	registry *prometheus.Registry

	validationsTotal *prometheus.CounterVec
	loadsTotal       *prometheus.CounterVec
	cacheHitsTotal   prometheus.Counter
	cacheMissesTotal prometheus.Counter
}

var _ schema.Observer = (*Collector)(nil)

// NewCollector creates a collector and registers its metrics with
// registry. A nil registry gets a fresh one; an empty namespace uses
// DefaultNamespace.
func NewCollector(registry *prometheus.Registry, namespace string) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	c := &Collector{
		registry: registry,
		validationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Total number of document validations by schema, version and outcome",
			},
			[]string{"schema", "version", "outcome"},
		),
		loadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "schema_loads_total",
				Help:      "Total number of schema documents read from the loader",
			},
			[]string{"outcome"},
		),
		cacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "schema_cache_hits_total",
				Help:      "Total number of schema documents served from the store",
			},
		),
		cacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "schema_cache_misses_total",
				Help:      "Total number of schema lookups not yet in the store",
			},
		),
	}

	registry.MustRegister(
		c.validationsTotal,
		c.loadsTotal,
		c.cacheHitsTotal,
		c.cacheMissesTotal,
	)

	return c
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// SchemaLoaded implements schema.Observer.
func (c *Collector) SchemaLoaded(_ string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = OutcomeError
	}
	c.loadsTotal.WithLabelValues(outcome).Inc()
}

// CacheHit implements schema.Observer.
func (c *Collector) CacheHit(string) {
	c.cacheHitsTotal.Inc()
}

// CacheMiss implements schema.Observer.
func (c *Collector) CacheMiss(string) {
	c.cacheMissesTotal.Inc()
}

// Validated implements schema.Observer.
func (c *Collector) Validated(schemaName, version string, err error) {
	c.validationsTotal.WithLabelValues(schemaName, version, Outcome(err)).Inc()
}

// Outcome classifies a validation result.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeValid
	case errors.Is(err, schema.ErrInvalidSpecification):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// WriteFile atomically writes the registry to path in the Prometheus text
// format, for node_exporter's textfile collector and CI artifacts.
func (c *Collector) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.Wrapf(err, "writing metrics to %s", path)
	}
	return nil
}
