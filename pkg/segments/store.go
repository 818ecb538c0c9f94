// Package segments reads and writes raw time-coded segment files.
package segments

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/JanSetu/JanSetu/pkg/domain"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DefaultMaxSegments is the part size used by Split when none is given.
const DefaultMaxSegments = 5000

var (
	// ErrExists is returned by Save when the target exists and overwrite is off.
	ErrExists = errors.New("segment file already exists")

	// ErrNotFound is returned when no segment file exists for an id.
	ErrNotFound = errors.New("segment file not found")
)

// Store reads and writes <id>.json segment files under one directory.
type Store struct {
	fs     afero.Fs
	dir    string
	logger *zap.Logger
}

// NewStore creates a store rooted at dir on fs.
func NewStore(fs afero.Fs, dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{fs: fs, dir: dir, logger: logger}
}

// Path returns the file path for id.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Exists reports whether a segment file exists for id.
func (s *Store) Exists(id string) (bool, error) {
	return afero.Exists(s.fs, s.Path(id))
}

// Load reads the segment list stored for id.
func (s *Store) Load(id string) ([]domain.Segment, error) {
	segs, err := s.LoadFile(s.Path(id))
	if errors.Is(err, afero.ErrFileNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return segs, err
}

// LoadFile reads a segment list from an arbitrary path on the store's fs.
func (s *Store) LoadFile(path string) ([]domain.Segment, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, err
	}
	var segs []domain.Segment
	if err := json.Unmarshal(data, &segs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return segs, nil
}

// Save writes segs as <id>.json. Without overwrite an existing file is left
// untouched and ErrExists is returned.
func (s *Store) Save(id string, segs []domain.Segment, overwrite bool) error {
	path := s.Path(id)
	if !overwrite {
		exists, err := afero.Exists(s.fs, path)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", path, err)
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.dir, err)
	}
	return WriteJSON(s.fs, path, segs)
}

// Split breaks the file for id into <id>_part<N>.json files (N from 1) of at
// most maxSegments segments each and returns the written paths. The source
// file is left untouched. A transcript that already fits returns no parts.
func (s *Store) Split(id string, maxSegments int) ([]string, error) {
	if maxSegments <= 0 {
		maxSegments = DefaultMaxSegments
	}

	segs, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	if len(segs) <= maxSegments {
		s.logger.Info("Transcript does not need splitting",
			zap.String("video_id", id),
			zap.Int("segments", len(segs)))
		return nil, nil
	}

	var paths []string
	for start, n := 0, 1; start < len(segs); start, n = start+maxSegments, n+1 {
		end := min(start+maxSegments, len(segs))
		path := filepath.Join(s.dir, fmt.Sprintf("%s_part%d.json", id, n))
		if err := WriteJSON(s.fs, path, segs[start:end]); err != nil {
			return paths, err
		}
		s.logger.Info("Saved transcript part",
			zap.String("file", path),
			zap.Int("segments", end-start))
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteJSON writes v as two-space indented UTF-8 JSON without HTML escaping.
func WriteJSON(fs afero.Fs, path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
