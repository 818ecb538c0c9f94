package replication

import (
	"time"

	"github.com/JanSetu/JanSetu/pkg/domain"
)

// Row is one recording as stored in the relational `recording` table.
type Row struct {
	ExternalID       string    `json:"external_id"`
	URL              string    `json:"url"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	ChannelName      string    `json:"channel_name"`
	ChannelID        string    `json:"channel_id"`
	Category         string    `json:"category"`
	ViewCount        int64     `json:"view_count"`
	DurationSeconds  int       `json:"duration_seconds"`
	PublishedAt      time.Time `json:"published_at"`
	HasTranscript    bool      `json:"has_transcript"`
	TranscriptFormat string    `json:"transcript_format"`
	WordCount        int       `json:"word_count"`
	SearchableText   string    `json:"searchable_text"`
	DataSource       string    `json:"data_source"`
	ProcessedAt      time.Time `json:"processed_at"`
}

// RowFromRecording flattens doc into a Row. It reports false for documents
// without an identity.
func RowFromRecording(doc *domain.RecordingDocument) (Row, bool) {
	if doc.ExternalID == "" || doc.CanonicalURL == "" {
		return Row{}, false
	}
	return Row{
		ExternalID:       doc.ExternalID,
		URL:              doc.CanonicalURL,
		Title:            doc.Title,
		Description:      doc.Description,
		ChannelName:      doc.ChannelName,
		ChannelID:        doc.ChannelID,
		Category:         doc.Category,
		ViewCount:        doc.ViewCount,
		DurationSeconds:  doc.DurationSeconds,
		PublishedAt:      doc.PublishedAt.UTC(),
		HasTranscript:    doc.HasTranscript,
		TranscriptFormat: doc.Transcript.Format,
		WordCount:        doc.Transcript.WordCount,
		SearchableText:   doc.SearchableText,
		DataSource:       doc.DataSource,
		ProcessedAt:      doc.ProcessedAt.UTC(),
	}, true
}
