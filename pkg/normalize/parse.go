package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	nonDigitRe    = regexp.MustCompile(`[^\d]`)
	isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)(?:\.\d+)?S)?$`)
)

// ParseViews extracts a view count from a human readable string such as
// "1,348 views" by dropping every non-digit. It returns nil when no digits
// remain.
func ParseViews(s string) *int64 {
	digits := nonDigitRe.ReplaceAllString(s, "")
	if digits == "" {
		return nil
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func parseViewsValue(v any) *int64 {
	switch n := v.(type) {
	case string:
		return ParseViews(n)
	case float64:
		if n < 0 || math.IsNaN(n) || n > math.MaxInt64 {
			return nil
		}
		i := int64(n)
		return &i
	case int:
		i := int64(n)
		return &i
	case int32:
		i := int64(n)
		return &i
	case int64:
		return &n
	default:
		return nil
	}
}

// ParseDuration converts a clock string (MM:SS or HH:MM:SS) or an ISO-8601
// duration (PT#H#M#S) into whole seconds. The clock form is tried first.
func ParseDuration(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if secs, ok := parseClock(s); ok {
		return secs, true
	}
	return parseISODuration(s)
}

func parseClock(s string) (int, bool) {
	fields := strings.Split(s, ":")
	if len(fields) != 2 && len(fields) != 3 {
		return 0, false
	}
	total := 0
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}

func parseISODuration(s string) (int, bool) {
	m := isoDurationRe.FindStringSubmatch(strings.ToUpper(s))
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "") {
		return 0, false
	}
	total := 0
	for i, mult := range []int{3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, false
		}
		total += n * mult
	}
	return total, true
}

// ParsePublished parses a publish date with a best-effort parser, falling
// back to RFC 3339. Times without a zone are taken as UTC.
func ParsePublished(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
