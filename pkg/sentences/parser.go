// Package sentences parses the correction service's "<seconds> <sentence>"
// output into time-aligned sentences.
package sentences

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/JanSetu/JanSetu/pkg/domain"

	"go.uber.org/zap"
)

var lineRe = regexp.MustCompile(`^(\d+)\s+(\S.*)$`)

// Result is the outcome of parsing one transcript's output.
type Result struct {
	Sentences []domain.CorrectedSentence

	// Malformed is the number of non-blank lines that were dropped.
	Malformed int

	// NonMonotonic counts lines whose start is earlier than the previous
	// sentence's start. Such lines are kept as-is.
	NonMonotonic int
}

// Parser converts raw service output into CorrectedSentences.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a parser. A nil logger disables logging.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// ParseLine parses a single output line. It reports false for lines that do
// not follow the "<seconds> <sentence>" form. Surrounding whitespace is
// trimmed before matching, so an indented "  12 text" line is accepted.
func ParseLine(line string) (domain.CorrectedSentence, bool) {
	m := lineRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return domain.CorrectedSentence{}, false
	}
	start, err := strconv.Atoi(m[1])
	if err != nil {
		// digits overflowing int
		return domain.CorrectedSentence{}, false
	}
	text := strings.TrimSpace(m[2])
	if text == "" {
		return domain.CorrectedSentence{}, false
	}
	return domain.CorrectedSentence{StartSecond: start, Text: text}, true
}

// Parse converts raw into sentences in input order. Blank lines are ignored;
// malformed lines are dropped and logged, never returned as an error.
func (p *Parser) Parse(raw string) Result {
	var res Result
	prev := -1

	for i, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		s, ok := ParseLine(line)
		if !ok {
			res.Malformed++
			p.logger.Warn("Skipped malformed line",
				zap.Int("line", i+1),
				zap.String("content", strings.TrimSpace(line)))
			continue
		}
		if s.StartSecond < prev {
			res.NonMonotonic++
		}
		prev = s.StartSecond
		res.Sentences = append(res.Sentences, s)
	}

	if res.NonMonotonic > 0 {
		p.logger.Warn("Sentence start times are not monotonic",
			zap.Int("inversions", res.NonMonotonic))
	}
	return res
}
