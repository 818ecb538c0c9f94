package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Segment is the smallest unit of a raw time-coded transcript.
// Ordering is the position in the transcript, not a field.
type Segment struct {
	Start    float64 `bson:"start" json:"start"`
	Duration float64 `bson:"duration" json:"duration"`
	Text     string  `bson:"text" json:"text"`
}

// UnmarshalJSON accepts both the platform shape (start, duration, text) and the
// XML-derived shape (start, dur, #text), with numbers encoded as strings or numbers.
func (s *Segment) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	seg, ok := SegmentFromMap(m)
	if !ok {
		return fmt.Errorf("segment has no text field")
	}
	*s = seg
	return nil
}

// SegmentFromMap builds a Segment from a loosely-typed map. It reports false
// when the map carries no text field at all.
func SegmentFromMap(m map[string]any) (Segment, bool) {
	text, ok := m["text"]
	if !ok {
		text, ok = m["#text"]
	}
	if !ok {
		return Segment{}, false
	}

	dur, hasDur := m["duration"]
	if !hasDur {
		dur = m["dur"]
	}

	return Segment{
		Start:    toFloat(m["start"]),
		Duration: toFloat(dur),
		Text:     toString(text),
	}, true
}

// SegmentsFromAny converts a decoded JSON value into a Segment list. It
// returns false unless v is a non-empty list whose every element is an object
// carrying a text field.
func SegmentsFromAny(v any) ([]Segment, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}

	out := make([]Segment, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		seg, ok := SegmentFromMap(m)
		if !ok {
			return nil, false
		}
		out = append(out, seg)
	}
	return out, true
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
