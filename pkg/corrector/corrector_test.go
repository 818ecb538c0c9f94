package corrector

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/JanSetu/JanSetu/pkg/domain"
	"github.com/JanSetu/JanSetu/pkg/llm"
	"github.com/JanSetu/JanSetu/pkg/llm/mock"
	"github.com/JanSetu/JanSetu/pkg/observe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap/zaptest"
)

func testChunks(n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			Index:    i,
			Segments: []domain.Segment{{Start: float64(i * 10), Duration: 2, Text: "segment"}},
		}
	}
	return chunks
}

func testMetrics(t *testing.T) *observe.Metrics {
	t.Helper()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	m, err := observe.NewMetrics(mp)
	require.NoError(t, err)
	return m
}

func newTestCorrector(t *testing.T, p llm.Provider, opts ...Option) *Corrector {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t)), WithMetrics(testMetrics(t))}, opts...)
	return New(p, opts...)
}

func TestCorrectChunk_Request(t *testing.T) {
	p := &mock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "  103 Hello there.\n"}}
	c := newTestCorrector(t, p, WithTemperature(0.3))

	chunk := domain.Chunk{Index: 0, Segments: []domain.Segment{{Start: 103.84, Duration: 2, Text: "hello there"}}}
	out, err := c.CorrectChunk(context.Background(), chunk, "Budget Session Day 4")

	require.NoError(t, err)
	assert.Equal(t, "103 Hello there.", out)

	require.Len(t, p.CompleteCalls, 1)
	req := p.CompleteCalls[0].Req
	assert.Equal(t, systemPrompt, req.SystemPrompt)
	assert.InDelta(t, 0.3, req.Temperature, 1e-9)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t,
		"Video Title: Budget Session Day 4\n\nXML Transcript Data:\n\n<text start=\"103.840\" dur=\"2.000\">hello there</text>\n",
		req.Messages[0].Content)

	_, hasDeadline := p.CompleteCalls[0].Ctx.Deadline()
	assert.True(t, hasDeadline)
}

func TestCorrectChunk_Failures(t *testing.T) {
	t.Run("empty response", func(t *testing.T) {
		p := &mock.Provider{CompleteResponse: &llm.CompletionResponse{Content: " \n "}}
		c := newTestCorrector(t, p)

		_, err := c.CorrectChunk(context.Background(), testChunks(1)[0], "t")

		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("transport error", func(t *testing.T) {
		boom := errors.New("503 unavailable")
		p := &mock.Provider{CompleteErr: boom}
		c := newTestCorrector(t, p)

		_, err := c.CorrectChunk(context.Background(), testChunks(1)[0], "t")

		assert.ErrorIs(t, err, boom)
		assert.Len(t, p.CompleteCalls, 1, "a failed chunk must not be retried")
	})

	t.Run("timeout", func(t *testing.T) {
		p := &mock.Provider{CompleteFunc: func(ctx context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}}
		c := newTestCorrector(t, p, WithChunkTimeout(20*time.Millisecond))

		_, err := c.CorrectChunk(context.Background(), testChunks(1)[0], "t")

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestCorrectTranscript(t *testing.T) {
	t.Run("should continue past failed chunks in order", func(t *testing.T) {
		p := &mock.Provider{
			Responses: []*llm.CompletionResponse{
				{Content: "0 First."},
				nil,
				{Content: ""},
				{Content: "30 Fourth.\n31 Fifth."},
			},
			Errs: []error{nil, errors.New("boom"), nil, nil},
		}
		c := newTestCorrector(t, p)

		res, err := c.CorrectTranscript(context.Background(), testChunks(4), "Sitting")

		require.NoError(t, err)
		assert.Equal(t, "0 First.\n30 Fourth.\n31 Fifth.\n", res.Output)
		assert.Equal(t, 2, res.Succeeded)
		require.Len(t, res.Failures, 2)
		assert.Equal(t, 1, res.Failures[0].Index)
		assert.Equal(t, 2, res.Failures[1].Index)
		assert.ErrorIs(t, res.Failures[1].Err, ErrEmptyResponse)
		assert.False(t, res.AllFailed())

		require.Len(t, p.CompleteCalls, 4)
		for i, call := range p.CompleteCalls {
			assert.Contains(t, call.Req.Messages[0].Content, fmt.Sprintf(`start="%d.000"`, i*10))
		}
	})

	t.Run("should report when every chunk failed", func(t *testing.T) {
		p := &mock.Provider{CompleteErr: errors.New("down")}
		c := newTestCorrector(t, p)

		res, err := c.CorrectTranscript(context.Background(), testChunks(3), "Sitting")

		require.NoError(t, err)
		assert.True(t, res.AllFailed())
		assert.Empty(t, res.Output)
	})

	t.Run("should stop on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		p := &mock.Provider{CompleteFunc: func(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
			cancel()
			return &llm.CompletionResponse{Content: "0 Only."}, nil
		}}
		c := newTestCorrector(t, p)

		res, err := c.CorrectTranscript(ctx, testChunks(3), "Sitting")

		assert.ErrorIs(t, err, context.Canceled)
		assert.Len(t, p.CompleteCalls, 1)
		assert.Equal(t, "0 Only.\n", res.Output)
	})
}
