package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseViews(t *testing.T) {
	tests := []struct {
		in   string
		want *int64
	}{
		{in: "1,348 views", want: ptr(1348)},
		{in: "1348", want: ptr(1348)},
		{in: "12.5K", want: ptr(125)},
		{in: "no views yet", want: nil},
		{in: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseViews(tt.in))
		})
	}
}

func ptr(n int64) *int64 { return &n }

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{in: "3:40", want: 220, wantOK: true},
		{in: "200:24", want: 12024, wantOK: true},
		{in: "1:02:03", want: 3723, wantOK: true},
		{in: "PT3M40S", want: 220, wantOK: true},
		{in: "PT1H2M3S", want: 3723, wantOK: true},
		{in: "PT45S", want: 45, wantOK: true},
		{in: "PT10M", want: 600, wantOK: true},
		{in: "PT", want: 0, wantOK: false},
		{in: "three minutes", want: 0, wantOK: false},
		{in: "1:2:3:4", want: 0, wantOK: false},
		{in: "", want: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDuration(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePublished(t *testing.T) {
	t.Run("should parse RFC 3339 with offset", func(t *testing.T) {
		got, ok := ParsePublished("2024-10-08T17:05:23-07:00")
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 10, 9, 0, 5, 23, 0, time.UTC), got)
	})

	t.Run("should parse a plain date", func(t *testing.T) {
		got, ok := ParsePublished("2024-03-15")
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("should reject garbage", func(t *testing.T) {
		_, ok := ParsePublished("sometime last week")
		assert.False(t, ok)
	})
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "dQw4w9WgXcQ", want: "dQw4w9WgXcQ", wantOK: true},
		{in: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ", wantOK: true},
		{in: "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=30", want: "dQw4w9WgXcQ", wantOK: true},
		{in: "https://youtu.be/dQw4w9WgXcQ?si=abc", want: "dQw4w9WgXcQ", wantOK: true},
		{in: "https://www.youtube.com/embed/dQw4w9WgXcQ", want: "dQw4w9WgXcQ", wantOK: true},
		{in: "https://www.youtube.com/shorts/dQw4w9WgXcQ", want: "dQw4w9WgXcQ", wantOK: true},
		{in: "https://www.youtube.com/watch?v=short", wantOK: false},
		{in: "https://example.com/video", wantOK: false},
		{in: "not a url", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ExtractVideoID(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
