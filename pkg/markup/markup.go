// Package markup renders transcript segments in the <text> element form
// understood by the correction service.
package markup

import (
	"fmt"
	"html"
	"strings"

	"github.com/JanSetu/JanSetu/pkg/domain"

	"github.com/PuerkitoBio/goquery"
)

// Segment renders one segment as a single line, newline included.
func Segment(seg domain.Segment) string {
	return fmt.Sprintf("<text start=\"%.3f\" dur=\"%.3f\">%s</text>\n",
		seg.Start, seg.Duration, html.EscapeString(seg.Text))
}

// Size is the serialized length of seg in bytes.
func Size(seg domain.Segment) int {
	return len(Segment(seg))
}

// Render concatenates the markup of every segment in order.
func Render(segs []domain.Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		b.WriteString(Segment(seg))
	}
	return b.String()
}

// PlainText strips the markup and returns the decoded text with whitespace
// collapsed. Used for log previews.
func PlainText(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

// Preview returns at most n runes of the plain text of markup.
func Preview(markup string, n int) string {
	text, err := PlainText(markup)
	if err != nil {
		return ""
	}
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}
