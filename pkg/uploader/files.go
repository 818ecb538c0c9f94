package uploader

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JanSetu/JanSetu/pkg/domain"
	"github.com/JanSetu/JanSetu/pkg/normalize"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// LoadFile reads a JSON file holding either one record object or a list of
// them.
func LoadFile(fs afero.Fs, path string) ([]domain.RawRecord, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	switch val := v.(type) {
	case map[string]any:
		return []domain.RawRecord{val}, nil
	case []any:
		out := make([]domain.RawRecord, 0, len(val))
		for i, item := range val {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s: element %d is not an object", path, i)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: expected an object or a list of objects", path)
	}
}

// UploadDir uploads every *.json file in dir, in name order, and sums the
// per-file stats. A file that cannot be loaded counts as one error.
func (u *Uploader) UploadDir(ctx context.Context, fs afero.Fs, dir string) (domain.BatchStats, error) {
	var total domain.BatchStats

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return total, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		path := filepath.Join(dir, name)
		raws, err := LoadFile(fs, path)
		if err != nil {
			u.log.Error("Failed to load file", zap.String("file", path), zap.Error(err))
			total.Add(domain.BatchStats{Attempted: 1, Errors: 1})
			continue
		}

		stats := u.Upload(ctx, raws)
		u.log.Info("Uploaded file",
			zap.String("file", path),
			zap.Int("inserted", stats.Inserted),
			zap.Int("updated", stats.Updated),
			zap.Int("errors", stats.Errors))
		total.Add(stats)
	}
	return total, nil
}

// TranscriptRecord wraps a bare segment list into a raw record so that a
// transcript file can be uploaded on its own.
func TranscriptRecord(id string, segs []domain.Segment) domain.RawRecord {
	transcript := make([]any, 0, len(segs))
	for _, s := range segs {
		transcript = append(transcript, map[string]any{
			"start":    s.Start,
			"duration": s.Duration,
			"text":     s.Text,
		})
	}
	return domain.RawRecord{
		"video_id":    id,
		"VideoURL":    normalize.CanonicalURL(id),
		"Video_title": "Transcript for " + id,
		"transcript":  transcript,
	}
}
