// Package chunker partitions a transcript into size-bounded chunks for the
// correction service.
package chunker

import (
	"github.com/JanSetu/JanSetu/pkg/domain"
	"github.com/JanSetu/JanSetu/pkg/markup"
)

// DefaultMaxChars is the serialized-size budget used when none is given.
const DefaultMaxChars = 10000

// Chunk greedily groups segs into chunks whose rendered markup stays within
// maxChars bytes. A segment is never split; one that is larger than the
// budget on its own becomes a chunk by itself. Order is preserved and every
// segment lands in exactly one chunk.
func Chunk(segs []domain.Segment, maxChars int) []domain.Chunk {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var chunks []domain.Chunk
	var current []domain.Segment
	size := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, domain.Chunk{Index: len(chunks), Segments: current})
		current = nil
		size = 0
	}

	for _, seg := range segs {
		n := markup.Size(seg)
		if len(current) > 0 && size+n > maxChars {
			flush()
		}
		current = append(current, seg)
		size += n
	}
	flush()

	return chunks
}

// Flatten re-concatenates the segments of chunks in order.
func Flatten(chunks []domain.Chunk) []domain.Segment {
	total := 0
	for _, c := range chunks {
		total += len(c.Segments)
	}
	out := make([]domain.Segment, 0, total)
	for _, c := range chunks {
		out = append(out, c.Segments...)
	}
	return out
}

// Markup renders the transmission unit for c.
func Markup(c domain.Chunk) string {
	return markup.Render(c.Segments)
}
