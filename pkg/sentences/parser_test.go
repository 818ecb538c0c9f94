package sentences

import (
	"testing"

	"github.com/JanSetu/JanSetu/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want domain.CorrectedSentence
		ok   bool
	}{
		{name: "simple sentence", line: "103 Hello there.", want: domain.CorrectedSentence{StartSecond: 103, Text: "Hello there."}, ok: true},
		{name: "zero start", line: "0 Good morning, Mr. Speaker.", want: domain.CorrectedSentence{StartSecond: 0, Text: "Good morning, Mr. Speaker."}, ok: true},
		{name: "surrounding whitespace trimmed", line: "  42\tThe member for [unknown] rose.  ", want: domain.CorrectedSentence{StartSecond: 42, Text: "The member for [unknown] rose."}, ok: true},
		{name: "no leading digits", line: "not a valid line", ok: false},
		{name: "digits only", line: "103", ok: false},
		{name: "no whitespace after digits", line: "103Hello", ok: false},
		{name: "decimal seconds", line: "103.8 Hello", ok: false},
		{name: "negative seconds", line: "-5 Hello", ok: false},
		{name: "indented line accepted", line: "  103 The House rose.", want: domain.CorrectedSentence{StartSecond: 103, Text: "The House rose."}, ok: true},
		{name: "blank", line: "   ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLine(tt.line)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParser_Parse(t *testing.T) {
	t.Run("should keep input order and drop malformed lines", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		p := NewParser(zap.New(core))

		raw := "0 Order, order.\n" +
			"Here is the corrected transcript:\n" +
			"\n" +
			"5 The House will now proceed.\n" +
			"12 The Honourable Member for [unknown] has the floor.\n"

		res := p.Parse(raw)

		require.Len(t, res.Sentences, 3)
		assert.Equal(t, domain.CorrectedSentence{StartSecond: 0, Text: "Order, order."}, res.Sentences[0])
		assert.Equal(t, 5, res.Sentences[1].StartSecond)
		assert.Equal(t, 12, res.Sentences[2].StartSecond)
		assert.Equal(t, 1, res.Malformed)
		assert.Equal(t, 0, res.NonMonotonic)

		entries := logs.FilterMessage("Skipped malformed line").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "Here is the corrected transcript:", entries[0].ContextMap()["content"])
	})

	t.Run("should not re-sort out of order output", func(t *testing.T) {
		p := NewParser(zaptest.NewLogger(t))

		res := p.Parse("30 Later.\n10 Earlier.\n40 Last.")

		require.Len(t, res.Sentences, 3)
		assert.Equal(t, []int{30, 10, 40}, []int{
			res.Sentences[0].StartSecond,
			res.Sentences[1].StartSecond,
			res.Sentences[2].StartSecond,
		})
		assert.Equal(t, 1, res.NonMonotonic)
	})

	t.Run("should handle empty output", func(t *testing.T) {
		res := NewParser(nil).Parse("")
		assert.Empty(t, res.Sentences)
		assert.Zero(t, res.Malformed)
	})

	t.Run("should handle windows line endings", func(t *testing.T) {
		res := NewParser(nil).Parse("1 One.\r\n2 Two.\r\n")
		require.Len(t, res.Sentences, 2)
		assert.Equal(t, "Two.", res.Sentences[1].Text)
	})
}
