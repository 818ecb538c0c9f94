// Package normalize turns loosely-typed video records into canonical
// RecordingDocuments.
//
// Parsing never fails a record: unparseable views, durations and dates fall
// back to defaults, and every fallback is recorded in the document's
// provenance so defaulted values can be told apart from genuine ones.
package normalize

import (
	"errors"
	"strings"
	"time"

	"github.com/JanSetu/JanSetu/pkg/domain"
)

// DefaultDataSource is stored on documents when no source is configured.
const DefaultDataSource = "youtube_scraper"

// ErrNilRecord is returned when asked to normalize a nil record.
var ErrNilRecord = errors.New("record is not a JSON object")

// Normalizer cleans and enriches raw video records.
type Normalizer struct {
	now    func() time.Time
	source string
	runID  string
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock sets the time source used for processed_at and fallbacks.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// WithDataSource sets the data_source recorded on each document.
func WithDataSource(source string) Option {
	return func(n *Normalizer) {
		n.source = source
	}
}

// WithRunID sets the ingest_run_id recorded on each document.
func WithRunID(id string) Option {
	return func(n *Normalizer) {
		n.runID = id
	}
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		now:    time.Now,
		source: DefaultDataSource,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize builds the canonical document for raw.
func (n *Normalizer) Normalize(raw domain.RawRecord) (*domain.RecordingDocument, error) {
	if raw == nil {
		return nil, ErrNilRecord
	}
	now := n.now().UTC()

	doc := &domain.RecordingDocument{
		Title:       firstString(raw, "Video_title", "title"),
		Description: firstString(raw, "Description", "description"),
		ChannelName: firstString(raw, "Channel_Name", "channel_title", "channel_name"),
		ChannelID:   firstString(raw, "Channel_Id", "channel_id"),
		Category:    firstString(raw, "category"),
		ProcessedAt: now,
		DataSource:  n.source,
		IngestRunID: n.runID,
	}

	n.resolveIdentity(raw, doc, now)

	doc.Provenance.ViewCount = domain.ProvenanceDefaulted
	for _, key := range []string{"Views", "view_count"} {
		if views := parseViewsValue(raw[key]); views != nil {
			doc.ViewCount = *views
			doc.Provenance.ViewCount = domain.ProvenanceGenuine
			break
		}
	}

	doc.Provenance.DurationSeconds = domain.ProvenanceDefaulted
	for _, key := range []string{"Runtime", "duration"} {
		if secs, ok := durationValue(raw[key]); ok {
			doc.DurationSeconds = secs
			doc.Provenance.DurationSeconds = domain.ProvenanceGenuine
			break
		}
	}

	doc.PublishedAt = now
	doc.Provenance.PublishedAt = domain.ProvenanceDefaulted
	for _, key := range []string{"published_Date", "publish_time", "published_at"} {
		if t, ok := publishedValue(raw[key]); ok {
			doc.PublishedAt = t
			doc.Provenance.PublishedAt = domain.ProvenanceGenuine
			break
		}
	}

	doc.Transcript = SummarizeTranscript(raw["transcript"])
	doc.HasTranscript = !doc.Transcript.Empty()
	doc.SearchableText = SearchableText(doc.Title, doc.Description, doc.ChannelName, doc.Transcript.Text)

	return doc, nil
}

// resolveIdentity derives the external id and canonical URL. A record with
// neither gets a timestamp-based synthetic id.
func (n *Normalizer) resolveIdentity(raw domain.RawRecord, doc *domain.RecordingDocument, now time.Time) {
	rawURL := firstString(raw, "VideoURL", "url")

	id := firstString(raw, "video_id")
	doc.Provenance.ExternalID = domain.ProvenanceGenuine
	if id == "" {
		if parsed, ok := ExtractVideoID(rawURL); ok {
			id = parsed
			doc.Provenance.ExternalID = domain.ProvenanceDerived
		}
	}
	if id == "" {
		id = "unknown_" + now.Format(time.RFC3339Nano)
		doc.Provenance.ExternalID = domain.ProvenanceDefaulted
	}

	doc.ExternalID = id
	if isHTTPURL(rawURL) {
		doc.CanonicalURL = rawURL
	} else {
		doc.CanonicalURL = CanonicalURL(id)
	}
}

func durationValue(v any) (int, bool) {
	switch d := v.(type) {
	case string:
		return ParseDuration(d)
	case float64:
		if d < 0 {
			return 0, false
		}
		return int(d), true
	default:
		return 0, false
	}
}

func publishedValue(v any) (time.Time, bool) {
	switch p := v.(type) {
	case string:
		return ParsePublished(p)
	case time.Time:
		return p.UTC(), !p.IsZero()
	default:
		return time.Time{}, false
	}
}

// firstString returns the first non-empty trimmed string value among keys.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}
