// Package promadapters provides a Prometheus adapter for the signals metrics interface.
// It maps the dependency-free signals.MetricsCollector to Prometheus instruments:
// durations become histograms, counters become counters, values become gauges.
package promadapters

import (
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalcraft/transactional-signals-go/signals"
)

// MetricsCollector implements signals.MetricsCollector on a prometheus.Registerer.
//
// Instruments are created on demand the first time a metric name is recorded;
// the label keys of that first observation define the instrument's label names,
// so a given metric must always be recorded with the same label keys.
type MetricsCollector struct {
	registerer prometheus.Registerer
	mu         sync.Mutex
	histograms map[string]*prometheus.HistogramVec
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
}

// NewMetricsCollector creates a new Prometheus metrics collector registering
// its instruments with the given registerer.
func NewMetricsCollector(registerer prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		registerer: registerer,
		histograms: make(map[string]*prometheus.HistogramVec),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}
}

// NewDefaultMetricsCollector creates a new Prometheus metrics collector on the
// default registerer, matching the common prometheus.MustRegister setup.
func NewDefaultMetricsCollector() *MetricsCollector {
	return NewMetricsCollector(prometheus.DefaultRegisterer)
}

// RecordDuration records a duration measurement using a Prometheus histogram, in seconds.
func (m *MetricsCollector) RecordDuration(metricName string, duration time.Duration, labels map[string]string) {
	histogram := m.getOrCreateHistogram(metricName, labelKeys(labels))
	if histogram == nil {
		return
	}

	histogram.With(labels).Observe(duration.Seconds())
}

// IncrementCounter increments a Prometheus counter.
func (m *MetricsCollector) IncrementCounter(metricName string, labels map[string]string) {
	counter := m.getOrCreateCounter(metricName, labelKeys(labels))
	if counter == nil {
		return
	}

	counter.With(labels).Inc()
}

// RecordValue records a float64 value using a Prometheus gauge.
func (m *MetricsCollector) RecordValue(metricName string, value float64, labels map[string]string) {
	gauge := m.getOrCreateGauge(metricName, labelKeys(labels))
	if gauge == nil {
		return
	}

	gauge.With(labels).Set(value)
}

// labelKeys returns the sorted label names so instrument creation is deterministic.
func labelKeys(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	return keys
}

// getOrCreateHistogram gets an existing histogram vec or creates and registers a new one.
func (m *MetricsCollector) getOrCreateHistogram(name string, keys []string) *prometheus.HistogramVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if histogram, exists := m.histograms[name]; exists {
		return histogram
	}

	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: name,
			Help: "Signal dispatch operation duration",
		},
		keys,
	)

	if err := m.registerer.Register(histogram); err != nil {
		return nil
	}

	m.histograms[name] = histogram
	return histogram
}

// getOrCreateCounter gets an existing counter vec or creates and registers a new one.
func (m *MetricsCollector) getOrCreateCounter(name string, keys []string) *prometheus.CounterVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if counter, exists := m.counters[name]; exists {
		return counter
	}

	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: "Signal dispatch operation counter",
		},
		keys,
	)

	if err := m.registerer.Register(counter); err != nil {
		return nil
	}

	m.counters[name] = counter
	return counter
}

// getOrCreateGauge gets an existing gauge vec or creates and registers a new one.
func (m *MetricsCollector) getOrCreateGauge(name string, keys []string) *prometheus.GaugeVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gauge, exists := m.gauges[name]; exists {
		return gauge
	}

	gauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: "Signal dispatch current value",
		},
		keys,
	)

	if err := m.registerer.Register(gauge); err != nil {
		return nil
	}

	m.gauges[name] = gauge
	return gauge
}

// Ensure MetricsCollector implements signals.MetricsCollector.
var _ signals.MetricsCollector = (*MetricsCollector)(nil)
