// Package metrics exports workflow and test-run activity as Prometheus
// metrics. A Collector plugs into the bridge and the executor as
// domain.LifecycleHooks and owns its own registry.
package metrics

import (
	"context"
	"net/http"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "waypoint"

// Collector holds the metric vectors fed by lifecycle hooks.
type Collector struct {
	registry *prometheus.Registry

	transitions  *prometheus.CounterVec
	invocations  *prometheus.CounterVec
	settled      *prometheus.CounterVec
	stale        *prometheus.CounterVec
	steps        *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	plans        *prometheus.CounterVec
	planDuration prometheus.Histogram
}

// Option configures a Collector.
type Option func(*Collector)

// WithProcessMetrics also registers the Go runtime and process collectors.
func WithProcessMetrics() Option {
	return func(c *Collector) {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// New creates a collector with a private registry.
func New(opts ...Option) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Transitions fired, by source, event and target.",
		}, []string{"source", "event", "target"}),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_started_total",
			Help:      "Invocations started, by src.",
		}, []string{"src"}),
		settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_settled_total",
			Help:      "Invocations whose outcome was routed, by src and outcome.",
		}, []string{"src", "outcome"}),
		stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_stale_total",
			Help:      "Invocation outcomes discarded because their state was exited.",
		}, []string{"src"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_steps_total",
			Help:      "Executed plan steps, by event and outcome.",
		}, []string{"event", "outcome"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_step_duration_seconds",
			Help:      "Duration of exec plus assertion for one step.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event"}),
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Executed plans, by status.",
		}, []string{"status"}),
		planDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_duration_seconds",
			Help:      "Duration of one plan execution.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	c.registry.MustRegister(
		c.transitions, c.invocations, c.settled, c.stale,
		c.steps, c.stepDuration, c.plans, c.planDuration,
	)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the private registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Hooks returns the lifecycle hooks that feed the collector.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			c.transitions.WithLabelValues(e.Transition.Source, e.Transition.Event, e.Transition.Target).Inc()
		},
		OnInvocationStart: func(_ context.Context, e *domain.InvocationEvent) {
			c.invocations.WithLabelValues(e.Src).Inc()
		},
		OnInvocationSettle: func(_ context.Context, e *domain.InvocationEvent) {
			c.settled.WithLabelValues(e.Src, outcome(e.IsError)).Inc()
		},
		OnInvocationStale: func(_ context.Context, e *domain.InvocationEvent) {
			c.stale.WithLabelValues(e.Src).Inc()
		},
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			c.steps.WithLabelValues(e.Event, outcome(e.Err != nil)).Inc()
			c.stepDuration.WithLabelValues(e.Event).Observe(e.Duration.Seconds())
		},
		OnPlan: func(_ context.Context, e *domain.PlanEvent) {
			c.plans.WithLabelValues(e.Status).Inc()
			c.planDuration.Observe(e.Duration.Seconds())
		},
	}
}

func outcome(failed bool) string {
	if failed {
		return "error"
	}
	return "ok"
}
