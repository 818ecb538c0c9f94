package uploader

import (
	"context"
	"fmt"

	"github.com/JanSetu/JanSetu/pkg/db"
	"github.com/JanSetu/JanSetu/pkg/domain"
	"github.com/JanSetu/JanSetu/pkg/logger"
	"github.com/JanSetu/JanSetu/pkg/normalize"
	"github.com/JanSetu/JanSetu/pkg/observe"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of concurrent upserts when none is configured.
const DefaultWorkers = 4

// RecordingStore is the part of the document store the uploader writes to.
type RecordingStore interface {
	UpsertRecording(ctx context.Context, doc *domain.RecordingDocument) (db.UpsertResult, error)
	RecordingExists(ctx context.Context, url string) (bool, error)
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithWorkers sets the number of concurrent upserts.
func WithWorkers(n int) Option {
	return func(u *Uploader) {
		if n > 0 {
			u.workers = n
		}
	}
}

// WithSkipExisting makes the uploader leave recordings already in the store
// untouched and count them as skipped.
func WithSkipExisting(skip bool) Option {
	return func(u *Uploader) {
		u.skipExisting = skip
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(u *Uploader) {
		u.log = logger.OrNop(l)
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observe.Metrics) Option {
	return func(u *Uploader) {
		u.metrics = observe.OrDefault(m)
	}
}

// Uploader normalizes raw records and merges them into the store.
type Uploader struct {
	store        RecordingStore
	normalizer   *normalize.Normalizer
	workers      int
	skipExisting bool
	log          *zap.Logger
	metrics      *observe.Metrics
}

// New creates an Uploader writing to store.
func New(store RecordingStore, normalizer *normalize.Normalizer, opts ...Option) *Uploader {
	if normalizer == nil {
		normalizer = normalize.New()
	}
	u := &Uploader{
		store:      store,
		normalizer: normalizer,
		workers:    DefaultWorkers,
		log:        zap.NewNop(),
		metrics:    observe.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type outcome int

const (
	outcomeInserted outcome = iota
	outcomeUpdated
	outcomeSkipped
	outcomeError
)

type result struct {
	index   int
	url     string
	outcome outcome
	err     error
}

// Upload merges every record in raws into the store. Failures are isolated
// to the record that caused them; the returned stats always account for
// every input record.
func (u *Uploader) Upload(ctx context.Context, raws []domain.RawRecord) domain.BatchStats {
	stats := domain.BatchStats{Attempted: len(raws)}
	if len(raws) == 0 {
		return stats
	}

	results := make(chan result, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)
	for i, raw := range raws {
		g.Go(func() error {
			results <- u.uploadOne(gctx, i, raw)
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(results)
	}()

	// Single reader, so the counters need no locking.
	for res := range results {
		switch res.outcome {
		case outcomeInserted:
			stats.Inserted++
		case outcomeUpdated:
			stats.Updated++
		case outcomeSkipped:
			stats.Skipped++
		case outcomeError:
			stats.Errors++
			u.log.Error("Failed to upload record",
				zap.Int("index", res.index),
				zap.String("url", res.url),
				zap.Error(res.err))
		}
	}

	u.log.Info("Upload complete",
		zap.Int("attempted", stats.Attempted),
		zap.Int("inserted", stats.Inserted),
		zap.Int("updated", stats.Updated),
		zap.Int("skipped", stats.Skipped),
		zap.Int("errors", stats.Errors))
	return stats
}

func (u *Uploader) uploadOne(ctx context.Context, index int, raw domain.RawRecord) result {
	if err := ctx.Err(); err != nil {
		return result{index: index, outcome: outcomeError, err: err}
	}

	doc, err := u.normalizer.Normalize(raw)
	if err != nil {
		return result{index: index, outcome: outcomeError, err: fmt.Errorf("normalize: %w", err)}
	}
	res := result{index: index, url: doc.CanonicalURL}

	if u.skipExisting {
		exists, err := u.store.RecordingExists(ctx, doc.CanonicalURL)
		if err != nil {
			res.outcome, res.err = outcomeError, err
			u.metrics.RecordUpsert(ctx, observe.ResultError)
			return res
		}
		if exists {
			res.outcome = outcomeSkipped
			return res
		}
	}

	upserted, err := u.store.UpsertRecording(ctx, doc)
	if err != nil {
		res.outcome, res.err = outcomeError, err
		u.metrics.RecordUpsert(ctx, observe.ResultError)
		return res
	}

	if upserted == db.Inserted {
		res.outcome = outcomeInserted
		u.metrics.RecordUpsert(ctx, observe.ResultInserted)
	} else {
		res.outcome = outcomeUpdated
		u.metrics.RecordUpsert(ctx, observe.ResultUpdated)
	}
	return res
}
