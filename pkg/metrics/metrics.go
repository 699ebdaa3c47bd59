package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/reactor/pkg/adapter/memory"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/renderer"
	"github.com/vango-dev/reactor/pkg/vdom"
)

var (
	_ reactive.Observer = (*Collector)(nil)
	_ renderer.Observer = (*Collector)(nil)
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "reactor").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "reactor",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector holds the Prometheus metrics for one runtime and renderer.
type Collector struct {
	effectRuns    *prometheus.CounterVec
	jobsQueued    prometheus.Counter
	jobsDeduped   prometheus.Counter
	flushes       prometheus.Counter
	flushJobs     prometheus.Histogram
	flushDuration prometheus.Histogram

	nodesMounted   *prometheus.CounterVec
	nodesUnmounted *prometheus.CounterVec
	nodesMoved     prometheus.Counter
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	renderErrors   *prometheus.CounterVec

	adapterOps *prometheus.CounterVec

	viewers    prometheus.Gauge
	framesSent prometheus.Counter
	bytesSent  prometheus.Counter
	dropped    prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates a Collector and registers its metrics. Registering two
// collectors with the same namespace on one registry panics.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}

	c := &Collector{
		effectRuns:  counterVec("effect_runs_total", "Effect executions by kind", "kind"),
		jobsQueued:  counter("jobs_queued_total", "Jobs queued on the scheduler"),
		jobsDeduped: counter("jobs_deduplicated_total", "Queued jobs that were already pending"),
		flushes:     counter("flushes_total", "Scheduler flushes that ran at least one job"),
		flushJobs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_jobs",
			Help:        "Jobs run per flush",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 10),
		}),
		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Scheduler flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		nodesMounted:   counterVec("nodes_mounted_total", "Nodes mounted by kind", "kind"),
		nodesUnmounted: counterVec("nodes_unmounted_total", "Nodes unmounted by kind", "kind"),
		nodesMoved:     counter("nodes_moved_total", "Nodes moved by the keyed diff"),
		renders:        counterVec("component_renders_total", "Component render function runs", "component"),
		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "component_render_duration_seconds",
			Help:        "Component render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component"}),
		renderErrors: counterVec("component_errors_total", "Component setup, render and hook failures", "component"),

		adapterOps: counterVec("adapter_ops_total", "Host mutations by op", "op"),

		viewers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "viewers",
			Help:        "Connected remote viewers",
			ConstLabels: config.ConstLabels,
		}),
		framesSent: counter("frames_sent_total", "Frames sent to remote viewers"),
		bytesSent:  counter("frame_bytes_sent_total", "Frame bytes sent to remote viewers"),
		dropped:    counter("viewers_dropped_total", "Viewers dropped for falling behind"),
	}

	c.gatherer = prometheus.DefaultGatherer
	if g, ok := config.Registry.(prometheus.Gatherer); ok {
		c.gatherer = g
	}
	return c
}

// Handler serves the metrics of the registry the Collector was created on.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// EffectRun implements reactive.Observer.
func (c *Collector) EffectRun(_ string, computed bool) {
	kind := "effect"
	if computed {
		kind = "computed"
	}
	c.effectRuns.WithLabelValues(kind).Inc()
}

// JobQueued implements reactive.Observer.
func (c *Collector) JobQueued(deduplicated bool) {
	c.jobsQueued.Inc()
	if deduplicated {
		c.jobsDeduped.Inc()
	}
}

// Flushed implements reactive.Observer.
func (c *Collector) Flushed(jobs int, d time.Duration) {
	c.flushes.Inc()
	c.flushJobs.Observe(float64(jobs))
	c.flushDuration.Observe(d.Seconds())
}

// NodeMounted implements renderer.Observer.
func (c *Collector) NodeMounted(kind vdom.Kind) {
	c.nodesMounted.WithLabelValues(kind.String()).Inc()
}

// NodeUnmounted implements renderer.Observer.
func (c *Collector) NodeUnmounted(kind vdom.Kind) {
	c.nodesUnmounted.WithLabelValues(kind.String()).Inc()
}

// NodeMoved implements renderer.Observer.
func (c *Collector) NodeMoved() {
	c.nodesMoved.Inc()
}

// ComponentRendered implements renderer.Observer.
func (c *Collector) ComponentRendered(name string, d time.Duration) {
	c.renders.WithLabelValues(name).Inc()
	c.renderDuration.WithLabelValues(name).Observe(d.Seconds())
}

// RenderFailed implements renderer.Observer.
func (c *Collector) RenderFailed(name string) {
	c.renderErrors.WithLabelValues(name).Inc()
}

// ObserveOp counts one host mutation. Pass it to memory.Document.Subscribe.
func (c *Collector) ObserveOp(op memory.Op) {
	name := op.Kind.String()
	if op.Kind == memory.OpInsert && op.Move {
		name = "Move"
	}
	c.adapterOps.WithLabelValues(name).Inc()
}

// ViewerConnected records a viewer joining.
func (c *Collector) ViewerConnected() { c.viewers.Inc() }

// ViewerDisconnected records a viewer leaving. Dropped viewers are counted
// separately.
func (c *Collector) ViewerDisconnected(dropped bool) {
	c.viewers.Dec()
	if dropped {
		c.dropped.Inc()
	}
}

// FrameSent records one frame written to a viewer.
func (c *Collector) FrameSent(bytes int) {
	c.framesSent.Inc()
	c.bytesSent.Add(float64(bytes))
}
