package promadapters_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/signalcraft/transactional-signals-go/signals/promadapters"
)

func gatherFamilyNames(t *testing.T, registry *prometheus.Registry) map[string]bool {
	families, err := registry.Gather()
	assert.NoError(t, err, "error gathering metrics")

	names := make(map[string]bool, len(families))
	for _, family := range families {
		names[family.GetName()] = true
	}

	return names
}

func Test_RecordDuration_RegistersAndObservesHistogram(t *testing.T) {
	// setup
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	labels := map[string]string{"signal_name": "SomethingHasHappened", "status": "ok"}

	// act
	collector.RecordDuration("signals_dispatch_duration_seconds", 42*time.Millisecond, labels)
	collector.RecordDuration("signals_dispatch_duration_seconds", 7*time.Millisecond, labels)

	// assert
	families, err := registry.Gather()
	assert.NoError(t, err, "error gathering metrics")
	assert.Len(t, families, 1)

	family := families[0]
	assert.Equal(t, "signals_dispatch_duration_seconds", family.GetName())
	assert.Len(t, family.GetMetric(), 1)
	assert.Equal(t, uint64(2), family.GetMetric()[0].GetHistogram().GetSampleCount())
}

func Test_IncrementCounter_RegistersAndIncrementsCounter(t *testing.T) {
	// setup
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	labels := map[string]string{"signal_name": "SomethingHasHappened", "status": "ok"}

	// act
	collector.IncrementCounter("signals_deliveries_total", labels)
	collector.IncrementCounter("signals_deliveries_total", labels)
	collector.IncrementCounter("signals_deliveries_total", labels)

	// assert
	families, err := registry.Gather()
	assert.NoError(t, err, "error gathering metrics")
	assert.Len(t, families, 1)
	assert.Equal(t, float64(3), families[0].GetMetric()[0].GetCounter().GetValue())
}

func Test_RecordValue_RegistersAndSetsGauge(t *testing.T) {
	// setup
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	labels := map[string]string{"signal_name": "SomethingHasHappened"}

	// act
	collector.RecordValue("signals_connected_receivers", 2, labels)
	collector.RecordValue("signals_connected_receivers", 5, labels)

	// assert
	families, err := registry.Gather()
	assert.NoError(t, err, "error gathering metrics")
	assert.Len(t, families, 1)
	assert.Equal(t, float64(5), families[0].GetMetric()[0].GetGauge().GetValue())
}

func Test_Collector_KeepsDistinctMetricNamesApart(t *testing.T) {
	// setup
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	labels := map[string]string{"status": "ok"}

	// act
	collector.RecordDuration("signals_dispatch_duration_seconds", time.Millisecond, labels)
	collector.IncrementCounter("signals_deliveries_total", labels)

	// assert
	names := gatherFamilyNames(t, registry)
	assert.True(t, names["signals_dispatch_duration_seconds"])
	assert.True(t, names["signals_deliveries_total"])
}
