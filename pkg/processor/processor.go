package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/JanSetu/JanSetu/pkg/chunker"
	"github.com/JanSetu/JanSetu/pkg/corrector"
	"github.com/JanSetu/JanSetu/pkg/db"
	"github.com/JanSetu/JanSetu/pkg/domain"
	"github.com/JanSetu/JanSetu/pkg/logger"
	"github.com/JanSetu/JanSetu/pkg/markup"
	"github.com/JanSetu/JanSetu/pkg/normalize"
	"github.com/JanSetu/JanSetu/pkg/observe"
	"github.com/JanSetu/JanSetu/pkg/sentences"

	"go.uber.org/zap"
)

// Version is stamped on every document the processor writes.
const Version = "jansetu_transcript_processor_v1"

var (
	// ErrNoSegments is returned for a record whose transcript has no
	// time-coded segments to correct.
	ErrNoSegments = errors.New("transcript has no segments")

	// ErrAllChunksFailed is returned when no chunk of a transcript could be
	// corrected.
	ErrAllChunksFailed = errors.New("every chunk failed correction")
)

// Store is the part of the document store the processor reads and writes.
type Store interface {
	FindRawWithTranscripts(ctx context.Context, limit int64) ([]domain.RawRecord, error)
	FindUnprocessed(ctx context.Context, limit int64) ([]domain.RawRecord, error)
	IsProcessed(ctx context.Context, url string) (bool, error)
	SaveProcessedTranscript(ctx context.Context, doc *domain.RecordingDocument) (db.UpsertResult, error)
}

// Options controls one processing run.
type Options struct {
	// Force reprocesses recordings that already have a corrected transcript.
	Force bool

	// Limit bounds the number of recordings read; zero means no limit.
	Limit int64

	// MaxChars is the chunk budget passed to the chunker.
	MaxChars int
}

// Processor runs stored transcripts through correction and saves the
// resulting sentences.
type Processor struct {
	store      Store
	corrector  *corrector.Corrector
	parser     *sentences.Parser
	normalizer *normalize.Normalizer
	log        *zap.Logger
	metrics    *observe.Metrics
}

// New creates a Processor.
func New(store Store, c *corrector.Corrector, normalizer *normalize.Normalizer, log *zap.Logger, metrics *observe.Metrics) *Processor {
	log = logger.OrNop(log)
	if normalizer == nil {
		normalizer = normalize.New()
	}
	return &Processor{
		store:      store,
		corrector:  c,
		parser:     sentences.NewParser(log),
		normalizer: normalizer,
		log:        log,
		metrics:    observe.OrDefault(metrics),
	}
}

// Run processes recordings one at a time. Per-recording failures are counted
// and logged; only a failed read or a cancelled context ends the run early.
func (p *Processor) Run(ctx context.Context, opts Options) (domain.ProcessStats, error) {
	var stats domain.ProcessStats

	var (
		records []domain.RawRecord
		err     error
	)
	if opts.Force {
		records, err = p.store.FindRawWithTranscripts(ctx, opts.Limit)
	} else {
		records, err = p.store.FindUnprocessed(ctx, opts.Limit)
	}
	if err != nil {
		return stats, fmt.Errorf("load recordings: %w", err)
	}

	stats.Total = len(records)
	p.log.Info("Starting transcript processing",
		zap.Int("recordings", stats.Total),
		zap.Bool("force", opts.Force),
		zap.Int64("limit", opts.Limit))

	for i, raw := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		doc, err := p.recording(raw)
		if err != nil {
			stats.Errors++
			p.log.Error("Failed to normalize recording", zap.Int("index", i), zap.Error(err))
			continue
		}
		log := p.log.With(zap.String("url", doc.CanonicalURL), zap.String("title", doc.Title))

		if !opts.Force {
			done, err := p.store.IsProcessed(ctx, doc.CanonicalURL)
			if err != nil {
				stats.Errors++
				log.Error("Failed to check processed state", zap.Error(err))
				continue
			}
			if done {
				stats.Skipped++
				log.Info("Already processed, skipping")
				continue
			}
		}

		err = p.processOne(ctx, doc, opts.MaxChars, &stats, log)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stats, ctxErr
			}
			stats.Errors++
			log.Error("Failed to process recording", zap.Error(err))
			continue
		}
		stats.Processed++
	}

	p.log.Info("Transcript processing complete",
		zap.Int("total", stats.Total),
		zap.Int("processed", stats.Processed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("errors", stats.Errors),
		zap.Int("chunk_failures", stats.ChunkFailures),
		zap.Int("malformed_lines", stats.MalformedLines))
	return stats, nil
}

// recording turns a record read from the store into a document. Records
// written by the normalizer are decoded as stored so their metadata and
// provenance carry over unchanged; older source-shaped records are
// normalized first.
func (p *Processor) recording(raw domain.RawRecord) (*domain.RecordingDocument, error) {
	if db.IsStoredShape(raw) {
		return db.RecordingFromRaw(raw)
	}
	return p.normalizer.Normalize(raw)
}

func (p *Processor) processOne(ctx context.Context, doc *domain.RecordingDocument, maxChars int, stats *domain.ProcessStats, log *zap.Logger) error {
	segs := doc.Transcript.Segments
	if len(segs) == 0 {
		return ErrNoSegments
	}

	chunks := chunker.Chunk(segs, maxChars)
	log.Debug("Correcting transcript",
		zap.Int("segments", len(segs)),
		zap.Int("chunks", len(chunks)),
		zap.String("preview", markup.Preview(markup.Render(segs[:min(len(segs), 20)]), 100)))

	res, err := p.corrector.CorrectTranscript(ctx, chunks, doc.Title)
	if err != nil {
		return err
	}
	stats.ChunkFailures += len(res.Failures)
	for _, f := range res.Failures {
		log.Warn("Chunk correction failed", zap.Int("chunk", f.Index), zap.Error(f.Err))
	}
	if res.AllFailed() {
		return ErrAllChunksFailed
	}

	parsed := p.parser.Parse(res.Output)
	stats.MalformedLines += parsed.Malformed
	p.metrics.RecordMalformed(ctx, parsed.Malformed)

	out := processedDocument(doc, parsed.Sentences)
	result, err := p.store.SaveProcessedTranscript(ctx, out)
	if err != nil {
		p.metrics.RecordUpsert(ctx, observe.ResultError)
		return fmt.Errorf("save processed transcript: %w", err)
	}
	p.metrics.RecordUpsert(ctx, string(result))

	log.Info("Saved processed transcript",
		zap.Int("sentences", len(parsed.Sentences)),
		zap.Int("chunk_failures", len(res.Failures)),
		zap.Int("malformed_lines", parsed.Malformed))
	return nil
}

// processedDocument builds the document stored in the processed collection.
// The sentence list lives in processed_transcript; the transcript summary
// only carries its text and counts.
func processedDocument(src *domain.RecordingDocument, sents []domain.CorrectedSentence) *domain.RecordingDocument {
	out := *src
	kg := false

	summary := normalize.SummarizeSentences(sents)
	summary.Sentences = nil

	out.Transcript = summary
	out.ProcessedTranscript = sents
	out.HasTranscript = true
	out.HasSegments = true
	out.KGExtracted = &kg
	out.ProcessorVersion = Version
	out.SearchableText = normalize.SearchableText(out.Title, out.Description, out.ChannelName, summary.Text)
	return &out
}
