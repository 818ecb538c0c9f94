package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	require.NotNil(t, m, name)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is %T", name, m.Data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RecordCorrection(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordCorrection(ctx, 2*time.Second, nil)
	m.RecordCorrection(ctx, 3*time.Second, nil)
	m.RecordCorrection(ctx, time.Second, errors.New("timeout"))

	rm := collect(t, reader)
	assert.Equal(t, int64(2), counterValue(t, rm, "jansetu.chunks.corrected"))
	assert.Equal(t, int64(1), counterValue(t, rm, "jansetu.chunks.failed"))

	hist := findMetric(rm, "jansetu.correction.duration")
	require.NotNil(t, hist)
	data, ok := hist.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, data.DataPoints, 1)
	assert.Equal(t, uint64(3), data.DataPoints[0].Count)
	assert.InDelta(t, 6.0, data.DataPoints[0].Sum, 1e-9)
}

func TestMetrics_RecordMalformed(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordMalformed(context.Background(), 0)
	m.RecordMalformed(context.Background(), 4)

	assert.Equal(t, int64(4), counterValue(t, collect(t, reader), "jansetu.sentences.malformed"))
}

func TestMetrics_RecordUpsert(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordUpsert(ctx, ResultInserted)
	m.RecordUpsert(ctx, ResultInserted)
	m.RecordUpsert(ctx, ResultUpdated)

	metric := findMetric(collect(t, reader), "jansetu.records.upserted")
	require.NotNil(t, metric)
	sum := metric.Data.(metricdata.Sum[int64])

	byResult := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, ok := dp.Attributes.Value(attribute.Key("result"))
		require.True(t, ok)
		byResult[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{ResultInserted: 2, ResultUpdated: 1}, byResult)
}

func TestOrDefault(t *testing.T) {
	assert.NotNil(t, OrDefault(nil))

	m, _ := newTestMetrics(t)
	assert.Same(t, m, OrDefault(m))
}
