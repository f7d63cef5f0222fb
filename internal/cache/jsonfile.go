package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geo-resolver/internal/query"
)

// JSONFile stores the cache as a single human-diffable JSON object.
//
// Every Put re-reads the file, applies one mutation and writes it back, so
// the file stays the source of truth for the whole run. Get also re-reads
// unless the store was opened WithSnapshot. The read-modify-write is not
// locked: two processes writing at once can lose an update.
type JSONFile struct {
	path       string
	legacyPath string
	snapshot   bool
	mem        map[string]Entry
}

// JSONOption configures a JSONFile.
type JSONOption func(*JSONFile)

// WithLegacyPath names an older cache file that seeds the current one once,
// when the current file does not exist yet.
func WithLegacyPath(p string) JSONOption {
	return func(s *JSONFile) {
		s.legacyPath = p
	}
}

// WithSnapshot serves Get from an in-memory copy taken at Load and kept in
// step with this process's own Puts. Writes by other processes during the
// run are not observed.
func WithSnapshot() JSONOption {
	return func(s *JSONFile) {
		s.snapshot = true
	}
}

// NewJSONFile creates a JSON file store at path.
func NewJSONFile(path string, opts ...JSONOption) *JSONFile {
	s := &JSONFile{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the cache file location.
func (s *JSONFile) Path() string { return s.path }

// Load implements Store.
func (s *JSONFile) Load(_ context.Context) error {
	if err := s.migrateLegacy(); err != nil {
		return err
	}

	data, err := s.read()
	if err != nil {
		return err
	}

	purged := 0
	for _, key := range query.PurgeKeys() {
		if _, ok := data[key]; ok {
			delete(data, key)
			purged++
		}
	}
	if purged > 0 {
		zap.L().Info("cache: purged corrected keys", zap.String("path", s.path), zap.Int("purged", purged))
		if err := s.write(data); err != nil {
			return err
		}
	}

	if s.snapshot {
		s.mem = data
	}
	return nil
}

// Get implements Store.
func (s *JSONFile) Get(_ context.Context, q string) (Entry, error) {
	data := s.mem
	if !s.snapshot || data == nil {
		var err error
		if data, err = s.read(); err != nil {
			return Entry{}, err
		}
	}
	return data[q], nil
}

// Put implements Store.
func (s *JSONFile) Put(_ context.Context, q string, e Entry) error {
	if e.State == Absent {
		return errPutAbsent
	}
	data, err := s.read()
	if err != nil {
		return err
	}
	data[q] = e
	if err := s.write(data); err != nil {
		return err
	}
	if s.snapshot {
		s.mem = data
	}
	return nil
}

// Entries implements Store.
func (s *JSONFile) Entries(_ context.Context) (map[string]Entry, error) {
	return s.read()
}

// Close implements Store.
func (s *JSONFile) Close() error { return nil }

func (s *JSONFile) migrateLegacy() error {
	if s.legacyPath == "" {
		return nil
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return eris.Wrap(err, "cache: stat cache file")
	}
	raw, err := os.ReadFile(s.legacyPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return eris.Wrap(err, "cache: read legacy file")
	}
	if err := writeFileAtomic(s.path, raw); err != nil {
		return err
	}
	zap.L().Info("cache: seeded from legacy file", zap.String("legacy", s.legacyPath), zap.String("path", s.path))
	return nil
}

// read loads the file. A missing file is an empty cache. A file that is not a
// JSON object is also treated as empty: a hand-edited or half-written cache
// must not stop the pipeline, and the next Put overwrites it.
func (s *JSONFile) read() (map[string]Entry, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]Entry{}, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "cache: read file")
	}

	var wire map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			zap.L().Warn("cache: unreadable cache file, starting empty",
				zap.String("path", s.path),
				zap.Error(err),
			)
			return map[string]Entry{}, nil
		}
		return nil, eris.Wrap(err, "cache: decode file")
	}

	data := make(map[string]Entry, len(wire))
	for q, v := range wire {
		e, decodeErr := decodeEntry(v)
		if decodeErr != nil {
			zap.L().Debug("cache: malformed entry kept as negative", zap.String("query", q), zap.Error(decodeErr))
		}
		data[q] = e
	}
	return data, nil
}

func (s *JSONFile) write(data map[string]Entry) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(encodeEntries(data)); err != nil {
		return eris.Wrap(err, "cache: encode file")
	}
	return writeFileAtomic(s.path, buf.Bytes())
}

// writeFileAtomic writes via a temp file in the same directory and renames it
// into place, so an interrupted run never leaves a truncated cache.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "cache: create cache dir")
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "cache: create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrap(err, "cache: write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrap(err, "cache: sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "cache: close temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return eris.Wrap(err, "cache: replace cache file")
	}
	return nil
}
