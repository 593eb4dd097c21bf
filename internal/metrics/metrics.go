// Package metrics records engine instrumentation into a Prometheus registry
// and keeps a rolling latency window per operation for display.
package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const (
	namespace = "hosts_editor"

	// WindowSize is the number of recent calls kept per operation.
	WindowSize = 100

	// DefaultSlowCallThreshold flags calls at or above this duration.
	DefaultSlowCallThreshold = time.Second
)

// OpStats summarizes one operation over its recent window.
type OpStats struct {
	Op        string        `json:"op" yaml:"op"`
	Calls     int64         `json:"calls" yaml:"calls"`
	Errors    int64         `json:"errors" yaml:"errors"`
	ErrorRate float64       `json:"errorRate" yaml:"error_rate"`
	Avg       time.Duration `json:"avg" yaml:"avg"`
	Min       time.Duration `json:"min" yaml:"min"`
	Max       time.Duration `json:"max" yaml:"max"`
	SlowCalls int64         `json:"slowCalls" yaml:"slow_calls"`
}

type window struct {
	calls     int64
	errors    int64
	slow      int64
	durations []time.Duration
	next      int
}

func (w *window) add(d time.Duration) {
	if len(w.durations) < WindowSize {
		w.durations = append(w.durations, d)
		return
	}
	w.durations[w.next] = d
	w.next = (w.next + 1) % WindowSize
}

// Collector implements the engine's Recorder interface.
type Collector struct {
	registry *prometheus.Registry
	logger   *zap.Logger
	slow     time.Duration

	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	retries    *prometheus.CounterVec
	lookups    *prometheus.CounterVec
	reconciles *prometheus.CounterVec

	mu      sync.Mutex
	windows map[string]*window
}

// New creates a Collector with its own registry, including Go runtime metrics.
func New(logger *zap.Logger, slowThreshold time.Duration) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowCallThreshold
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		logger:   logger,
		slow:     slowThreshold,
		windows:  make(map[string]*window),

		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of engine operations",
			},
			[]string{"op", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Engine operation duration in seconds, including retries",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 2.5, 5, 10},
			},
			[]string{"op"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failed_attempts_total",
				Help:      "Total number of failed disk attempts",
			},
			[]string{"op"},
		),
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Cache lookups by result",
			},
			[]string{"result"},
		),
		reconciles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "watcher_reconciles_total",
				Help:      "Watcher reconciliations by outcome",
			},
			[]string{"outcome"},
		),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		c.operations,
		c.duration,
		c.retries,
		c.lookups,
		c.reconciles,
	)
	return c
}

// Registry returns the registry backing this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveOperation records a completed operation.
func (c *Collector) ObserveOperation(op string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.operations.WithLabelValues(op, status).Inc()
	c.duration.WithLabelValues(op).Observe(d.Seconds())

	c.mu.Lock()
	w, ok := c.windows[op]
	if !ok {
		w = &window{}
		c.windows[op] = w
	}
	w.calls++
	if err != nil {
		w.errors++
	}
	w.add(d)
	slow := d >= c.slow
	if slow {
		w.slow++
	}
	c.mu.Unlock()

	if slow {
		c.logger.Warn("slow operation", zap.String("op", op), zap.Duration("duration", d), zap.Duration("threshold", c.slow))
	}
}

// ObserveRetry records a failed attempt.
func (c *Collector) ObserveRetry(op string, _ int, _ error) {
	c.retries.WithLabelValues(op).Inc()
}

// ObserveCacheLookup records a cache hit or miss.
func (c *Collector) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.lookups.WithLabelValues(result).Inc()
}

// ObserveReconcile records a watcher outcome.
func (c *Collector) ObserveReconcile(outcome string) {
	c.reconciles.WithLabelValues(outcome).Inc()
}

// Snapshot returns per-operation stats sorted by operation name.
func (c *Collector) Snapshot() []OpStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := make([]OpStats, 0, len(c.windows))
	for op, w := range c.windows {
		s := OpStats{Op: op, Calls: w.calls, Errors: w.errors, SlowCalls: w.slow}
		if w.calls > 0 {
			s.ErrorRate = float64(w.errors) / float64(w.calls)
		}
		if len(w.durations) > 0 {
			var total time.Duration
			s.Min = w.durations[0]
			for _, d := range w.durations {
				total += d
				if d < s.Min {
					s.Min = d
				}
				if d > s.Max {
					s.Max = d
				}
			}
			s.Avg = total / time.Duration(len(w.durations))
		}
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Op < stats[j].Op })
	return stats
}

// Reset clears the rolling windows. Prometheus counters are untouched.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.windows = make(map[string]*window)
}

// HeapAllocBytes reads the Go runtime heap size from the registry.
func (c *Collector) HeapAllocBytes() (float64, bool) {
	families, err := c.registry.Gather()
	if err != nil {
		return 0, false
	}
	for _, mf := range families {
		if mf.GetName() != "go_memstats_heap_alloc_bytes" {
			continue
		}
		if ms := mf.GetMetric(); len(ms) > 0 && ms[0].GetGauge() != nil {
			return ms[0].GetGauge().GetValue(), true
		}
	}
	return 0, false
}
