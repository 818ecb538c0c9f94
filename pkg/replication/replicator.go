package replication

import (
	"context"
	"fmt"

	"github.com/JanSetu/JanSetu/pkg/domain"
	"github.com/JanSetu/JanSetu/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchSize = 100
	defaultWorkers   = 5
)

// RecordingSource provides the recordings to mirror.
type RecordingSource interface {
	AllRecordings(ctx context.Context) ([]domain.RecordingDocument, error)
}

// Sink writes mirrored rows to the relational store.
type Sink interface {
	EnsureSchema(ctx context.Context) error
	UpsertBatch(ctx context.Context, rows []Row) (int, error)
}

// Config wires the replication dependencies.
type Config struct {
	Source RecordingSource
	Sink   Sink
	Logger *zap.Logger

	// Zero values fall back to 100 rows per batch and 5 workers.
	BatchSize int
	Workers   int
}

// Stats summarizes one replication run.
type Stats struct {
	Read     int `json:"read"`
	Written  int `json:"written"`
	Skipped  int `json:"skipped"`
	Batches  int `json:"batches"`
	Failures int `json:"failures"`
}

// Replicator mirrors normalized recordings from the document store into a
// relational `recording` table.
type Replicator struct {
	source    RecordingSource
	sink      Sink
	log       *zap.Logger
	batchSize int
	workers   int
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("recording source is required")
	}
	if cfg.Sink == nil {
		return nil, fmt.Errorf("replication sink is required")
	}
	r := &Replicator{
		source:    cfg.Source,
		sink:      cfg.Sink,
		log:       logger.OrNop(cfg.Logger),
		batchSize: cfg.BatchSize,
		workers:   cfg.Workers,
	}
	if r.batchSize <= 0 {
		r.batchSize = defaultBatchSize
	}
	if r.workers <= 0 {
		r.workers = defaultWorkers
	}
	return r, nil
}

// Replicate copies every recording, upserting by external id. The first
// failing batch stops the run; rows already written stay written.
func (r *Replicator) Replicate(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := r.sink.EnsureSchema(ctx); err != nil {
		return stats, err
	}

	docs, err := r.source.AllRecordings(ctx)
	if err != nil {
		return stats, fmt.Errorf("read recordings: %w", err)
	}
	stats.Read = len(docs)

	rows := make([]Row, 0, len(docs))
	for i := range docs {
		row, ok := RowFromRecording(&docs[i])
		if !ok {
			stats.Skipped++
			continue
		}
		rows = append(rows, row)
	}

	r.log.Info("Loaded recordings, processing in batches",
		zap.Int("recordings", stats.Read),
		zap.Int("rows", len(rows)),
		zap.Int("batch_size", r.batchSize))

	written, batches, err := r.processBatches(ctx, rows)
	stats.Written = written
	stats.Batches = batches
	if err != nil {
		stats.Failures++
		return stats, err
	}

	r.log.Info("Replication complete",
		zap.Int("read", stats.Read),
		zap.Int("written", stats.Written),
		zap.Int("skipped", stats.Skipped))
	return stats, nil
}

type batchResult struct {
	start, end int
	written    int
}

// processBatches upserts rows in parallel batches and returns the rows
// written and batches completed.
func (r *Replicator) processBatches(ctx context.Context, rows []Row) (int, int, error) {
	numBatches := (len(rows) + r.batchSize - 1) / r.batchSize
	results := make(chan batchResult, numBatches)

	type totals struct{ written, batches int }
	collected := make(chan totals, 1)

	// Single reader, so the totals need no locking.
	go func() {
		var t totals
		for res := range results {
			t.batches++
			t.written += res.written
			r.log.Debug("Batch written",
				zap.Int("start", res.start),
				zap.Int("end", res.end),
				zap.Int("written", res.written))
			if t.batches%10 == 0 || t.batches == numBatches {
				r.log.Info("Progress",
					zap.Int("batches", t.batches),
					zap.Int("of", numBatches),
					zap.Int("written", t.written))
			}
		}
		collected <- t
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for start := 0; start < len(rows); start += r.batchSize {
		end := min(start+r.batchSize, len(rows))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			written, err := r.sink.UpsertBatch(gctx, rows[start:end])
			if err != nil {
				return fmt.Errorf("upsert batch [%d:%d]: %w", start, end, err)
			}
			results <- batchResult{start: start, end: end, written: written}
			return nil
		})
	}

	err := g.Wait()
	close(results)
	t := <-collected
	return t.written, t.batches, err
}
