package normalize

import (
	"strings"
	"unicode/utf8"

	"github.com/JanSetu/JanSetu/pkg/domain"
)

// SearchableTextTranscriptRunes bounds how much transcript text goes into
// the searchable text.
const SearchableTextTranscriptRunes = 1000

// SummarizeTranscript reduces any recognised transcript shape to a common
// summary: a segment list, a corrected sentence list, or an object carrying
// formatted text (formattedContent, transcript_text or text). Anything else
// yields an empty summary.
func SummarizeTranscript(v any) domain.TranscriptSummary {
	switch t := v.(type) {
	case []any:
		if sentences, ok := sentencesFromAny(t); ok {
			return SummarizeSentences(sentences)
		}
		if segs, ok := domain.SegmentsFromAny(t); ok {
			return summarizeSegments(segs)
		}
	case map[string]any:
		if nested, ok := t["segments"].([]any); ok && len(nested) > 0 {
			return SummarizeTranscript(nested)
		}
		if nested, ok := t["sentences"].([]any); ok && len(nested) > 0 {
			return SummarizeTranscript(nested)
		}
		return summarizeFormatted(t)
	}
	return domain.TranscriptSummary{}
}

// sentencesFromAny recognises corrected output: every element carries an
// integral start and text but no duration.
func sentencesFromAny(list []any) ([]domain.CorrectedSentence, bool) {
	if len(list) == 0 {
		return nil, false
	}
	out := make([]domain.CorrectedSentence, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		if _, has := m["duration"]; has {
			return nil, false
		}
		if _, has := m["dur"]; has {
			return nil, false
		}
		text, ok := m["text"].(string)
		if !ok {
			return nil, false
		}
		start, ok := m["start"].(float64)
		if !ok || start < 0 || start != float64(int(start)) {
			return nil, false
		}
		out = append(out, domain.CorrectedSentence{StartSecond: int(start), Text: text})
	}
	return out, true
}

func summarizeSegments(segs []domain.Segment) domain.TranscriptSummary {
	texts := make([]string, 0, len(segs))
	for _, s := range segs {
		texts = append(texts, strings.TrimSpace(s.Text))
	}
	text := strings.TrimSpace(strings.Join(texts, " "))
	return domain.TranscriptSummary{
		Format:       domain.FormatSegments,
		Text:         text,
		Length:       utf8.RuneCountInString(text),
		WordCount:    len(strings.Fields(text)),
		SegmentCount: len(segs),
		Segments:     segs,
	}
}

// SummarizeSentences builds the summary of a corrected sentence list.
func SummarizeSentences(sentences []domain.CorrectedSentence) domain.TranscriptSummary {
	texts := make([]string, 0, len(sentences))
	for _, s := range sentences {
		texts = append(texts, strings.TrimSpace(s.Text))
	}
	text := strings.TrimSpace(strings.Join(texts, " "))
	return domain.TranscriptSummary{
		Format:       domain.FormatSentences,
		Text:         text,
		Length:       utf8.RuneCountInString(text),
		WordCount:    len(strings.Fields(text)),
		SegmentCount: len(sentences),
		Sentences:    sentences,
	}
}

func summarizeFormatted(m map[string]any) domain.TranscriptSummary {
	text := strings.TrimSpace(firstString(m, "formattedContent", "transcript_text", "text"))
	if text == "" {
		return domain.TranscriptSummary{}
	}
	return domain.TranscriptSummary{
		Format:          domain.FormatFormattedContent,
		Text:            text,
		Length:          utf8.RuneCountInString(text),
		WordCount:       len(strings.Fields(text)),
		SegmentCount:    len(strings.Split(text, "\n")),
		IsAutoGenerated: boolField(m, "isAutoGenerated"),
		IsTranslated:    boolField(m, "isTranslated"),
		IsCaption:       boolField(m, "isCaption"),
	}
}

// SearchableText joins the non-empty title, description, channel name and
// the leading part of the transcript text with single spaces.
func SearchableText(title, description, channel, transcript string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{title, description, channel} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if transcript != "" {
		if utf8.RuneCountInString(transcript) > SearchableTextTranscriptRunes {
			transcript = string([]rune(transcript)[:SearchableTextTranscriptRunes])
		}
		parts = append(parts, transcript)
	}
	return strings.Join(parts, " ")
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}
