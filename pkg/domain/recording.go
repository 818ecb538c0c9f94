package domain

import "time"

// RawRecord is a loosely-typed video record exactly as loaded from a JSON
// file or a raw collection.
type RawRecord = map[string]any

// Transcript formats carried by TranscriptSummary.Format.
const (
	FormatSegments         = "segments"
	FormatFormattedContent = "formattedContent"
	FormatSentences        = "sentences"
)

// Provenance values for derived fields.
const (
	// ProvenanceGenuine marks a value taken verbatim from the source record.
	ProvenanceGenuine = "genuine"

	// ProvenanceDerived marks a value parsed out of another field (e.g. an id
	// taken from a URL).
	ProvenanceDerived = "derived"

	// ProvenanceDefaulted marks a fallback value used because the source was
	// missing or unparseable. Treat these as low confidence.
	ProvenanceDefaulted = "defaulted"
)

// Provenance records where each best-effort field came from.
type Provenance struct {
	ExternalID      string `bson:"external_id" json:"external_id"`
	ViewCount       string `bson:"view_count" json:"view_count"`
	DurationSeconds string `bson:"duration_seconds" json:"duration_seconds"`
	PublishedAt     string `bson:"published_at" json:"published_at"`
}

// TranscriptSummary is the common shape of every transcript origin, so
// consumers need not branch on where the transcript came from.
type TranscriptSummary struct {
	Format          string              `bson:"format,omitempty" json:"format,omitempty"`
	Text            string              `bson:"transcript_text,omitempty" json:"transcript_text,omitempty"`
	Length          int                 `bson:"transcript_length" json:"transcript_length"`
	WordCount       int                 `bson:"word_count" json:"word_count"`
	SegmentCount    int                 `bson:"segment_count" json:"segment_count"`
	IsAutoGenerated bool                `bson:"is_auto_generated,omitempty" json:"is_auto_generated,omitempty"`
	IsTranslated    bool                `bson:"is_translated,omitempty" json:"is_translated,omitempty"`
	IsCaption       bool                `bson:"is_caption,omitempty" json:"is_caption,omitempty"`
	Segments        []Segment           `bson:"segments,omitempty" json:"segments,omitempty"`
	Sentences       []CorrectedSentence `bson:"sentences,omitempty" json:"sentences,omitempty"`
}

// Empty reports whether the summary carries no transcript text.
func (t TranscriptSummary) Empty() bool {
	return t.Text == ""
}

// RecordingDocument is the canonical document persisted per recording.
// CanonicalURL is the identity key; writes are field-level merges.
type RecordingDocument struct {
	ExternalID      string            `bson:"video_id" json:"video_id"`
	CanonicalURL    string            `bson:"VideoURL" json:"VideoURL"`
	Title           string            `bson:"Video_title" json:"Video_title"`
	Description     string            `bson:"Description" json:"Description"`
	ChannelName     string            `bson:"Channel_Name" json:"Channel_Name"`
	ChannelID       string            `bson:"Channel_Id" json:"Channel_Id"`
	Category        string            `bson:"category,omitempty" json:"category,omitempty"`
	ViewCount       int64             `bson:"views_numeric" json:"views_numeric"`
	DurationSeconds int               `bson:"duration_seconds" json:"duration_seconds"`
	PublishedAt     time.Time         `bson:"published_datetime" json:"published_datetime"`
	HasTranscript   bool              `bson:"hasTranscript" json:"hasTranscript"`
	Transcript      TranscriptSummary `bson:"transcript" json:"transcript"`
	SearchableText  string            `bson:"searchable_text" json:"searchable_text"`
	ProcessedAt     time.Time         `bson:"processed_at" json:"processed_at"`
	Provenance      Provenance        `bson:"provenance" json:"provenance"`
	DataSource      string            `bson:"data_source,omitempty" json:"data_source,omitempty"`
	IngestRunID     string            `bson:"ingest_run_id,omitempty" json:"ingest_run_id,omitempty"`

	// Set only on documents written by the correction processor.
	ProcessedTranscript []CorrectedSentence `bson:"processed_transcript,omitempty" json:"processed_transcript,omitempty"`
	ProcessorVersion    string              `bson:"processor_version,omitempty" json:"processor_version,omitempty"`
	HasSegments         bool                `bson:"hasSegments,omitempty" json:"hasSegments,omitempty"`
	KGExtracted         *bool               `bson:"kg_extracted,omitempty" json:"kg_extracted,omitempty"`
}

// BatchStats are the aggregate counters reported by a batch upload.
type BatchStats struct {
	Attempted int `json:"attempted"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// Add folds other into s.
func (s *BatchStats) Add(other BatchStats) {
	s.Attempted += other.Attempted
	s.Inserted += other.Inserted
	s.Updated += other.Updated
	s.Skipped += other.Skipped
	s.Errors += other.Errors
}

// ProcessStats are the aggregate counters reported by a correction run.
type ProcessStats struct {
	Total          int `json:"total"`
	Processed      int `json:"processed"`
	Skipped        int `json:"skipped"`
	Errors         int `json:"errors"`
	ChunkFailures  int `json:"chunk_failures"`
	MalformedLines int `json:"malformed_lines"`
}
