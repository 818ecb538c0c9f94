package uploader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JanSetu/JanSetu/pkg/db"
	"github.com/JanSetu/JanSetu/pkg/domain"
	"github.com/JanSetu/JanSetu/pkg/normalize"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeStore struct {
	mu      sync.Mutex
	docs    map[string]*domain.RecordingDocument
	failURL string
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string]*domain.RecordingDocument{}}
}

func (f *fakeStore) UpsertRecording(_ context.Context, doc *domain.RecordingDocument) (db.UpsertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc.CanonicalURL == f.failURL {
		return "", errors.New("write failed")
	}
	_, exists := f.docs[doc.CanonicalURL]
	f.docs[doc.CanonicalURL] = doc
	if exists {
		return db.Updated, nil
	}
	return db.Inserted, nil
}

func (f *fakeStore) RecordingExists(_ context.Context, url string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[url]
	return ok, nil
}

func fixedNormalizer() *normalize.Normalizer {
	return normalize.New(normalize.WithClock(func() time.Time {
		return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	}))
}

func record(id string) domain.RawRecord {
	return domain.RawRecord{
		"VideoURL":    "https://www.youtube.com/watch?v=" + id,
		"Video_title": "Session " + id,
		"Views":       "1,234 views",
	}
}

func TestUpload(t *testing.T) {
	t.Run("second upload of the same records reports updated", func(t *testing.T) {
		// Arrange
		store := newFakeStore()
		u := New(store, fixedNormalizer(), WithWorkers(3), WithLogger(zaptest.NewLogger(t)))
		raws := []domain.RawRecord{record("aaaaaaaaaaa"), record("bbbbbbbbbbb"), record("ccccccccccc")}

		// Act
		first := u.Upload(context.Background(), raws)
		second := u.Upload(context.Background(), raws)

		// Assert
		assert.Equal(t, domain.BatchStats{Attempted: 3, Inserted: 3}, first)
		assert.Equal(t, domain.BatchStats{Attempted: 3, Updated: 3}, second)
		assert.Len(t, store.docs, 3)
	})

	t.Run("failures are isolated per record", func(t *testing.T) {
		store := newFakeStore()
		store.failURL = "https://www.youtube.com/watch?v=bbbbbbbbbbb"
		u := New(store, fixedNormalizer(), WithLogger(zaptest.NewLogger(t)))
		raws := []domain.RawRecord{record("aaaaaaaaaaa"), record("bbbbbbbbbbb"), nil, record("ccccccccccc")}

		stats := u.Upload(context.Background(), raws)

		assert.Equal(t, 4, stats.Attempted)
		assert.Equal(t, 2, stats.Inserted)
		assert.Equal(t, 2, stats.Errors)
	})

	t.Run("existing records are skipped when asked", func(t *testing.T) {
		store := newFakeStore()
		u := New(store, fixedNormalizer())
		u.Upload(context.Background(), []domain.RawRecord{record("aaaaaaaaaaa")})

		skipper := New(store, fixedNormalizer(), WithSkipExisting(true))
		stats := skipper.Upload(context.Background(), []domain.RawRecord{record("aaaaaaaaaaa"), record("bbbbbbbbbbb")})

		assert.Equal(t, domain.BatchStats{Attempted: 2, Inserted: 1, Skipped: 1}, stats)
	})

	t.Run("many records with many workers", func(t *testing.T) {
		store := newFakeStore()
		u := New(store, fixedNormalizer(), WithWorkers(8))

		var raws []domain.RawRecord
		for i := 0; i < 200; i++ {
			raws = append(raws, domain.RawRecord{"video_id": "id", "VideoURL": "https://example.org/v/" + string(rune('a'+i%26)) + string(rune('a'+i/26))})
		}

		stats := u.Upload(context.Background(), raws)

		assert.Equal(t, 200, stats.Attempted)
		assert.Equal(t, 200, stats.Inserted)
	})

	t.Run("empty batch", func(t *testing.T) {
		stats := New(newFakeStore(), nil).Upload(context.Background(), nil)
		assert.Equal(t, domain.BatchStats{}, stats)
	})

	t.Run("cancelled context counts every record as an error", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		stats := New(newFakeStore(), fixedNormalizer()).Upload(ctx, []domain.RawRecord{record("aaaaaaaaaaa"), record("bbbbbbbbbbb")})

		assert.Equal(t, domain.BatchStats{Attempted: 2, Errors: 2}, stats)
	})
}

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/one.json", []byte(`{"video_id":"aaaaaaaaaaa"}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/in/many.json", []byte(`[{"video_id":"a"},{"video_id":"b"}]`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/in/bad.json", []byte(`[1, 2]`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/in/broken.json", []byte(`{`), 0o644))

	tests := []struct {
		name    string
		path    string
		want    int
		wantErr bool
	}{
		{name: "single object", path: "/in/one.json", want: 1},
		{name: "list", path: "/in/many.json", want: 2},
		{name: "list of non-objects", path: "/in/bad.json", wantErr: true},
		{name: "invalid json", path: "/in/broken.json", wantErr: true},
		{name: "missing", path: "/in/missing.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadFile(fs, tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestUploadDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/new_data/a_combined.json", []byte(`{"VideoURL":"https://www.youtube.com/watch?v=aaaaaaaaaaa"}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/new_data/b_combined.json", []byte(`[{"video_id":"bbbbbbbbbbb"},{"video_id":"ccccccccccc"}]`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/new_data/broken.json", []byte(`nope`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/new_data/notes.txt", []byte(`ignored`), 0o644))

	store := newFakeStore()
	u := New(store, fixedNormalizer(), WithLogger(zaptest.NewLogger(t)))

	stats, err := u.UploadDir(context.Background(), fs, "/new_data")

	require.NoError(t, err)
	assert.Equal(t, domain.BatchStats{Attempted: 4, Inserted: 3, Errors: 1}, stats)
}

func TestTranscriptRecord(t *testing.T) {
	segs := []domain.Segment{{Start: 0, Duration: 1.5, Text: "Order, order."}}

	rec := TranscriptRecord("dQw4w9WgXcQ", segs)
	doc, err := fixedNormalizer().Normalize(rec)

	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", doc.ExternalID)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", doc.CanonicalURL)
	assert.Equal(t, "Transcript for dQw4w9WgXcQ", doc.Title)
	assert.True(t, doc.HasTranscript)
	assert.Equal(t, domain.FormatSegments, doc.Transcript.Format)
	assert.Equal(t, 1, doc.Transcript.SegmentCount)
}
