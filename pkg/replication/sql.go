package replication

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JanSetu/JanSetu/pkg/db"
)

const recordingDDL = `
CREATE TABLE IF NOT EXISTS recording (
  external_id TEXT PRIMARY KEY,
  url TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  channel_name TEXT NOT NULL DEFAULT '',
  channel_id TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  view_count BIGINT NOT NULL DEFAULT 0,
  duration_seconds INTEGER NOT NULL DEFAULT 0,
  published_at TIMESTAMPTZ,
  has_transcript BOOLEAN NOT NULL DEFAULT false,
  transcript_format TEXT NOT NULL DEFAULT '',
  word_count INTEGER NOT NULL DEFAULT 0,
  searchable_text TEXT NOT NULL DEFAULT '',
  data_source TEXT NOT NULL DEFAULT '',
  processed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS recording_channel_published_idx ON recording (channel_id, published_at DESC);`

const upsertRecordingQuery = `
INSERT INTO recording (
  external_id, url, title, description, channel_name, channel_id, category,
  view_count, duration_seconds, published_at, has_transcript, transcript_format,
  word_count, searchable_text, data_source, processed_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (external_id) DO UPDATE SET
  url = EXCLUDED.url,
  title = EXCLUDED.title,
  description = EXCLUDED.description,
  channel_name = EXCLUDED.channel_name,
  channel_id = EXCLUDED.channel_id,
  category = EXCLUDED.category,
  view_count = EXCLUDED.view_count,
  duration_seconds = EXCLUDED.duration_seconds,
  published_at = EXCLUDED.published_at,
  has_transcript = EXCLUDED.has_transcript,
  transcript_format = EXCLUDED.transcript_format,
  word_count = EXCLUDED.word_count,
  searchable_text = EXCLUDED.searchable_text,
  data_source = EXCLUDED.data_source,
  processed_at = EXCLUDED.processed_at`

// SQLSink writes rows through a direct Postgres connection.
type SQLSink struct {
	pg db.DBProvider
}

// NewSQLSink creates a sink over pg.
func NewSQLSink(pg db.DBProvider) *SQLSink {
	return &SQLSink{pg: pg}
}

func (s *SQLSink) EnsureSchema(ctx context.Context) error {
	if s.pg.DB() == nil {
		return fmt.Errorf("postgres DB not connected")
	}
	if _, err := s.pg.DB().ExecContext(ctx, recordingDDL); err != nil {
		return fmt.Errorf("create recording table: %w", err)
	}
	return nil
}

// UpsertBatch writes rows in one transaction.
func (s *SQLSink) UpsertBatch(ctx context.Context, rows []Row) (int, error) {
	if s.pg.DB() == nil {
		return 0, fmt.Errorf("postgres DB not connected")
	}

	tx, err := s.pg.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertRecordingQuery)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, rowArgs(row)...); err != nil {
			return 0, fmt.Errorf("upsert recording external_id=%q: %w", row.ExternalID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(rows), nil
}

// rowArgs lists row's values in upsertRecordingQuery's column order.
func rowArgs(row Row) []any {
	var published any
	if !row.PublishedAt.IsZero() {
		published = row.PublishedAt
	}
	return []any{
		row.ExternalID,
		row.URL,
		row.Title,
		row.Description,
		row.ChannelName,
		row.ChannelID,
		row.Category,
		row.ViewCount,
		row.DurationSeconds,
		published,
		row.HasTranscript,
		row.TranscriptFormat,
		row.WordCount,
		row.SearchableText,
		row.DataSource,
		row.ProcessedAt,
	}
}
