// Package observe provides OpenTelemetry metric instruments for the
// transcript pipeline.
//
// Instruments are recorded through the OpenTelemetry Metrics API and are
// no-ops unless a meter provider with an exporter is installed. Tests should
// use NewMetrics with their own MeterProvider to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/JanSetu/JanSetu"

// Upsert results recorded on RecordsUpserted.
const (
	ResultInserted = "inserted"
	ResultUpdated  = "updated"
	ResultError    = "error"
)

// Metrics holds every instrument used by the pipeline.
type Metrics struct {
	// CorrectionDuration tracks the latency of one correction call.
	CorrectionDuration metric.Float64Histogram

	ChunksCorrected    metric.Int64Counter
	ChunksFailed       metric.Int64Counter
	SentencesMalformed metric.Int64Counter

	// RecordsUpserted counts upserts. Use with attribute.String("result", ...).
	RecordsUpserted metric.Int64Counter
}

// correctionBuckets are histogram boundaries in seconds; correction calls
// take from a few seconds up to the per-chunk timeout.
var correctionBuckets = []float64{
	0.5, 1, 2.5, 5, 10, 20, 30, 60, 120,
}

// NewMetrics creates a Metrics using mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.CorrectionDuration, err = m.Float64Histogram("jansetu.correction.duration",
		metric.WithDescription("Latency of one chunk correction call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(correctionBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ChunksCorrected, err = m.Int64Counter("jansetu.chunks.corrected",
		metric.WithDescription("Chunks corrected successfully."),
	); err != nil {
		return nil, err
	}
	if met.ChunksFailed, err = m.Int64Counter("jansetu.chunks.failed",
		metric.WithDescription("Chunks whose correction failed or came back empty."),
	); err != nil {
		return nil, err
	}
	if met.SentencesMalformed, err = m.Int64Counter("jansetu.sentences.malformed",
		metric.WithDescription("Correction output lines dropped as malformed."),
	); err != nil {
		return nil, err
	}
	if met.RecordsUpserted, err = m.Int64Counter("jansetu.records.upserted",
		metric.WithDescription("Recording upserts by result."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level Metrics built on the global meter
// provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// OrDefault returns m, or DefaultMetrics when m is nil.
func OrDefault(m *Metrics) *Metrics {
	if m == nil {
		return DefaultMetrics()
	}
	return m
}

// RecordCorrection records the outcome and latency of one chunk correction.
func (m *Metrics) RecordCorrection(ctx context.Context, elapsed time.Duration, err error) {
	m.CorrectionDuration.Record(ctx, elapsed.Seconds())
	if err != nil {
		m.ChunksFailed.Add(ctx, 1)
		return
	}
	m.ChunksCorrected.Add(ctx, 1)
}

// RecordMalformed adds n dropped output lines.
func (m *Metrics) RecordMalformed(ctx context.Context, n int) {
	if n > 0 {
		m.SentencesMalformed.Add(ctx, int64(n))
	}
}

// RecordUpsert counts one upsert with the given result.
func (m *Metrics) RecordUpsert(ctx context.Context, result string) {
	m.RecordsUpserted.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
