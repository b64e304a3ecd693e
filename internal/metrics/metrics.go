// Package metrics records Prometheus metrics from event bus traffic.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	eventbus "github.com/hanpama/fedgraph/internal/eventbus"
	events "github.com/hanpama/fedgraph/internal/events"
)

const namespace = "fedgraph"

// Metrics owns a registry with the fedgraph collectors.
type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	requestTime  *prometheus.HistogramVec
	operations   *prometheus.CounterVec
	opTime       *prometheus.HistogramVec
	errors       *prometheus.CounterVec
	entities     *prometheus.CounterVec
	entityLoads  prometheus.Counter
	entityTime   prometheus.Histogram
	builds       *prometheus.CounterVec
	buildTime    prometheus.Histogram
	schemaEntity prometheus.Gauge
}

// New creates the collectors. With runtime set, Go runtime and process
// collectors are registered too.
func New(runtime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by method and status.",
		}, []string{"method", "status"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help: "HTTP request latency.", Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "graphql", Name: "operations_total",
			Help: "GraphQL operations by type and outcome.",
		}, []string{"type", "outcome"}),
		opTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "graphql", Name: "operation_duration_seconds",
			Help: "GraphQL execution latency.", Buckets: prometheus.DefBuckets,
		}, []string{"type"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "graphql", Name: "errors_total",
			Help: "GraphQL errors carrying a code extension, by code.",
		}, []string{"code"}),
		entities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "entities", Name: "representations_total",
			Help: "Representations resolved through _entities by outcome.",
		}, []string{"outcome"}),
		entityLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "entities", Name: "loader_calls_total",
			Help: "Batched reference loader invocations.",
		}),
		entityTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "entities", Name: "duration_seconds",
			Help: "_entities resolution latency.", Buckets: prometheus.DefBuckets,
		}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "schema", Name: "builds_total",
			Help: "Schema builds by mode and outcome.",
		}, []string{"gateway", "outcome"}),
		buildTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "schema", Name: "build_duration_seconds",
			Help: "Schema build latency.", Buckets: prometheus.DefBuckets,
		}),
		schemaEntity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "schema", Name: "entity_types",
			Help: "Entity types in the last successfully built schema.",
		}),
	}
	m.registry.MustRegister(
		m.requests, m.requestTime,
		m.operations, m.opTime, m.errors,
		m.entities, m.entityLoads, m.entityTime,
		m.builds, m.buildTime, m.schemaEntity,
	)
	if runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Subscribe records events published on bus.
func (m *Metrics) Subscribe(bus *eventbus.Bus) (unsubscribe func()) {
	offs := []func(){
		eventbus.Subscribe(bus, func(_ context.Context, e events.HTTPFinish) {
			m.requests.WithLabelValues(e.Request.Method, strconv.Itoa(e.Status)).Inc()
			m.requestTime.WithLabelValues(e.Request.Method).Observe(e.Duration.Seconds())
		}),
		eventbus.Subscribe(bus, func(_ context.Context, e events.GraphQLFinish) {
			m.operations.WithLabelValues(e.OperationType, outcome(len(e.Errors) == 0)).Inc()
			m.opTime.WithLabelValues(e.OperationType).Observe(e.Duration.Seconds())
			for _, code := range e.Codes {
				m.errors.WithLabelValues(code).Inc()
			}
		}),
		eventbus.Subscribe(bus, func(_ context.Context, e events.EntitiesFinish) {
			m.entities.WithLabelValues("ok").Add(float64(e.Representations - e.Errors))
			m.entities.WithLabelValues("error").Add(float64(e.Errors))
			m.entityLoads.Add(float64(e.Loads))
			m.entityTime.Observe(e.Duration.Seconds())
		}),
		eventbus.Subscribe(bus, func(_ context.Context, e events.SchemaBuild) {
			m.builds.WithLabelValues(strconv.FormatBool(e.Gateway), outcome(e.Err == nil)).Inc()
			m.buildTime.Observe(e.Duration.Seconds())
			if e.Err == nil {
				m.schemaEntity.Set(float64(len(e.Entities)))
			}
		}),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
