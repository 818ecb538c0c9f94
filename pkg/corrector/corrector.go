// Package corrector sends transcript chunks to the correction service and
// collects the line-oriented corrected output.
//
// Each chunk gets a single attempt bounded by a per-chunk timeout. A failed
// or empty chunk is recorded and skipped; the remaining chunks still run.
// Chunks are sent one at a time in transcript order.
package corrector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JanSetu/JanSetu/pkg/chunker"
	"github.com/JanSetu/JanSetu/pkg/domain"
	"github.com/JanSetu/JanSetu/pkg/llm"
	"github.com/JanSetu/JanSetu/pkg/observe"

	"go.uber.org/zap"
)

const (
	// DefaultChunkTimeout bounds one correction call.
	DefaultChunkTimeout = 2 * time.Minute

	defaultTemperature = 1.0
)

// ErrEmptyResponse is returned when the service answers with no text.
var ErrEmptyResponse = errors.New("correction service returned an empty response")

// ChunkFailure records one chunk that could not be corrected.
type ChunkFailure struct {
	Index int
	Err   error
}

// Result is the outcome of correcting every chunk of one transcript.
type Result struct {
	// Output is the concatenation of every successful chunk's output, in
	// chunk order, each terminated by a newline.
	Output string

	Succeeded int
	Failures  []ChunkFailure
}

// AllFailed reports whether no chunk produced output.
func (r Result) AllFailed() bool {
	return r.Succeeded == 0 && len(r.Failures) > 0
}

// Option configures a Corrector.
type Option func(*Corrector)

// WithTemperature sets the sampling temperature.
func WithTemperature(temp float64) Option {
	return func(c *Corrector) {
		c.temperature = temp
	}
}

// WithChunkTimeout sets the bound on a single correction call. Non-positive
// values keep the default.
func WithChunkTimeout(d time.Duration) Option {
	return func(c *Corrector) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Corrector) {
		c.logger = l
	}
}

// WithMetrics sets the metric instruments.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Corrector) {
		c.metrics = m
	}
}

// Corrector asks an llm.Provider to correct transcript chunks.
type Corrector struct {
	llm         llm.Provider
	temperature float64
	timeout     time.Duration
	logger      *zap.Logger
	metrics     *observe.Metrics
}

// New returns a Corrector backed by provider.
func New(provider llm.Provider, opts ...Option) *Corrector {
	c := &Corrector{
		llm:         provider,
		temperature: defaultTemperature,
		timeout:     DefaultChunkTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.metrics = observe.OrDefault(c.metrics)
	return c
}

// CorrectChunk sends one chunk with the recording title as context and
// returns the raw corrected text.
func (c *Corrector) CorrectChunk(ctx context.Context, chunk domain.Chunk, title string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Temperature:  c.temperature,
		Messages: []llm.Message{
			{Role: "user", Content: userMessage(title, chunker.Markup(chunk))},
		},
	}

	start := time.Now()
	text, err := c.complete(ctx, req)
	c.metrics.RecordCorrection(ctx, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("chunk %d: %w", chunk.Index, err)
	}
	return text, nil
}

func (c *Corrector) complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	resp, err := c.llm.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Content), nil
}

// CorrectTranscript corrects chunks sequentially in order. Failed chunks are
// logged, recorded in the result and skipped. Only cancellation of ctx stops
// the run early; its error is returned with the partial result.
func (c *Corrector) CorrectTranscript(ctx context.Context, chunks []domain.Chunk, title string) (Result, error) {
	var res Result
	var out strings.Builder

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			res.Output = out.String()
			return res, err
		}

		c.logger.Debug("Correcting chunk",
			zap.Int("chunk", chunk.Index),
			zap.Int("of", len(chunks)),
			zap.Int("segments", len(chunk.Segments)))

		text, err := c.CorrectChunk(ctx, chunk, title)
		if err != nil {
			if ctx.Err() != nil {
				res.Output = out.String()
				return res, ctx.Err()
			}
			c.logger.Warn("Chunk correction failed",
				zap.Int("chunk", chunk.Index),
				zap.String("title", title),
				zap.Error(err))
			res.Failures = append(res.Failures, ChunkFailure{Index: chunk.Index, Err: err})
			continue
		}

		out.WriteString(text)
		out.WriteString("\n")
		res.Succeeded++
	}

	res.Output = out.String()
	return res, nil
}
