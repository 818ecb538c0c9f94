package replication

import (
	"context"
	"fmt"

	supabase "github.com/supabase-community/supabase-go"
)

// RESTSink writes rows through the Supabase REST API. It is used when only a
// project URL and key are configured; the table must already exist.
type RESTSink struct {
	client *supabase.Client
	table  string
}

// NewRESTSink creates a sink over the Supabase SDK client.
func NewRESTSink(client *supabase.Client) *RESTSink {
	return &RESTSink{client: client, table: "recording"}
}

// EnsureSchema only checks the client; DDL is not available over REST.
func (s *RESTSink) EnsureSchema(_ context.Context) error {
	if s.client == nil {
		return fmt.Errorf("supabase SDK not initialized")
	}
	return nil
}

func (s *RESTSink) UpsertBatch(ctx context.Context, rows []Row) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	_, _, err := s.client.From(s.table).Upsert(rows, "external_id", "minimal", "").Execute()
	if err != nil {
		return 0, fmt.Errorf("rest upsert into %s: %w", s.table, err)
	}
	return len(rows), nil
}
