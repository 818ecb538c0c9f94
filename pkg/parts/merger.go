// Package parts reassembles numbered transcript and metadata part files into
// one combined document per recording.
package parts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/JanSetu/JanSetu/pkg/segments"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	ErrNoTranscript = errors.New("no transcript found")
	ErrNoMetadata   = errors.New("no metadata found")
)

// PartError reports a part file that could not be decoded. The merge of the
// whole id is abandoned when one is returned.
type PartError struct {
	File string
	Err  error
}

func (e *PartError) Error() string {
	return fmt.Sprintf("failed to decode part %s: %v", e.File, e.Err)
}

func (e *PartError) Unwrap() error {
	return e.Err
}

// Summary is the outcome of MergeAll.
type Summary struct {
	Merged  int
	Written []string

	// Skipped ids lacked a transcript or metadata.
	Skipped []string

	// Failed ids had a part that could not be decoded or written.
	Failed []string
}

var metaNameRe = regexp.MustCompile(`^(.+)_meta(?:_part\d+)?\.json$`)

// Merger reads part files from one input directory.
type Merger struct {
	fs     afero.Fs
	dir    string
	logger *zap.Logger
}

// NewMerger creates a merger over dir on fs.
func NewMerger(fs afero.Fs, dir string, logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{fs: fs, dir: dir, logger: logger}
}

type partFile struct {
	name string
	n    int
}

// findParts returns the files in the input directory named <id><suffix><N>.json
// sorted by N numerically.
func (m *Merger) findParts(id, suffix string) ([]partFile, error) {
	re := regexp.MustCompile("^" + regexp.QuoteMeta(id+suffix) + `(\d+)\.json$`)

	entries, err := afero.ReadDir(m.fs, m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", m.dir, err)
	}

	var found []partFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match := re.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err != nil {
			m.logger.Warn("Ignoring part with unparseable number", zap.String("file", e.Name()))
			continue
		}
		found = append(found, partFile{name: e.Name(), n: n})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })
	return found, nil
}

func (m *Merger) readJSON(name string) (any, error) {
	data, err := afero.ReadFile(m.fs, filepath.Join(m.dir, name))
	if err != nil {
		return nil, &PartError{File: name, Err: err}
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &PartError{File: name, Err: err}
	}
	return v, nil
}

// LoadTranscript concatenates the transcript parts of id in part order. A part
// holding a list contributes its elements; a part holding an object
// contributes that object. Without parts, <id>.json is loaded whole.
func (m *Merger) LoadTranscript(id string) ([]any, error) {
	parts, err := m.findParts(id, "_part")
	if err != nil {
		return nil, err
	}

	if len(parts) == 0 {
		return m.loadWholeTranscript(id)
	}

	m.logger.Info("Found transcript parts", zap.String("video_id", id), zap.Int("parts", len(parts)))

	var combined []any
	for _, p := range parts {
		v, err := m.readJSON(p.name)
		if err != nil {
			return nil, err
		}
		switch content := v.(type) {
		case []any:
			combined = append(combined, content...)
		case map[string]any:
			combined = append(combined, content)
		default:
			return nil, &PartError{File: p.name, Err: fmt.Errorf("unexpected JSON type %T", v)}
		}
	}
	return combined, nil
}

func (m *Merger) loadWholeTranscript(id string) ([]any, error) {
	name := id + ".json"
	v, err := m.readJSON(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w for %s", ErrNoTranscript, id)
		}
		return nil, err
	}
	switch content := v.(type) {
	case []any:
		return content, nil
	case map[string]any:
		return []any{content}, nil
	default:
		return nil, &PartError{File: name, Err: fmt.Errorf("unexpected JSON type %T", v)}
	}
}

// LoadMetadata merges the metadata parts of id by shallow key union, later
// parts winning on conflict. Without parts, <id>_meta.json is loaded whole.
func (m *Merger) LoadMetadata(id string) (map[string]any, error) {
	parts, err := m.findParts(id, "_meta_part")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, p.name)
	}
	if len(names) == 0 {
		names = []string{id + "_meta.json"}
	} else {
		m.logger.Info("Found metadata parts", zap.String("video_id", id), zap.Int("parts", len(parts)))
	}

	combined := map[string]any{}
	for _, name := range names {
		v, err := m.readJSON(name)
		if err != nil {
			if len(parts) == 0 && errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w for %s", ErrNoMetadata, id)
			}
			return nil, err
		}
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, &PartError{File: name, Err: fmt.Errorf("metadata is %T, not an object", v)}
		}
		for k, val := range obj {
			combined[k] = val
		}
	}
	return combined, nil
}

// DiscoverIDs lists the recording ids that have metadata in the input
// directory, sorted.
func (m *Merger) DiscoverIDs() ([]string, error) {
	entries, err := afero.ReadDir(m.fs, m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", m.dir, err)
	}

	seen := map[string]bool{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if match := metaNameRe.FindStringSubmatch(e.Name()); match != nil {
			seen[match[1]] = true
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Merge builds the combined document for id: the merged metadata plus a
// "transcript" key. Both must resolve and be non-empty.
func (m *Merger) Merge(id string) (map[string]any, error) {
	metadata, err := m.LoadMetadata(id)
	if err != nil {
		return nil, err
	}
	if len(metadata) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoMetadata, id)
	}

	transcript, err := m.LoadTranscript(id)
	if err != nil {
		return nil, err
	}
	if len(transcript) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoTranscript, id)
	}

	combined := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		combined[k] = v
	}
	combined["transcript"] = transcript
	return combined, nil
}

// MergeAll merges every discovered id into <outDir>/<id>_combined.json.
// Ids that do not fully resolve are skipped; source files are never
// modified.
func (m *Merger) MergeAll(outDir string) (Summary, error) {
	var summary Summary

	ids, err := m.DiscoverIDs()
	if err != nil {
		return summary, err
	}
	if err := m.fs.MkdirAll(outDir, 0o755); err != nil {
		return summary, fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	for _, id := range ids {
		combined, err := m.Merge(id)
		if err != nil {
			var partErr *PartError
			if errors.As(err, &partErr) {
				m.logger.Error("Failed to merge parts",
					zap.String("video_id", id),
					zap.String("file", partErr.File),
					zap.Error(partErr.Err))
				summary.Failed = append(summary.Failed, id)
				continue
			}
			m.logger.Warn("Skipping incomplete recording", zap.String("video_id", id), zap.Error(err))
			summary.Skipped = append(summary.Skipped, id)
			continue
		}

		out := filepath.Join(outDir, id+"_combined.json")
		if err := segments.WriteJSON(m.fs, out, combined); err != nil {
			m.logger.Error("Failed to write combined file", zap.String("video_id", id), zap.Error(err))
			summary.Failed = append(summary.Failed, id)
			continue
		}

		m.logger.Info("Merged", zap.String("file", out))
		summary.Merged++
		summary.Written = append(summary.Written, out)
	}

	m.logger.Info("Merge complete",
		zap.Int("merged", summary.Merged),
		zap.Int("skipped", len(summary.Skipped)),
		zap.Int("failed", len(summary.Failed)))
	return summary, nil
}
