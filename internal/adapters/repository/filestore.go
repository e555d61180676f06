package repository

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/okian/locmetrics/internal/domain/model"
	"github.com/okian/locmetrics/pkg/logger"
	"github.com/okian/locmetrics/pkg/metrics"
)

const (
	dirPermission  = 0o755
	filePermission = 0o644

	defaultMaxRecordSize = 1 << 20

	nanosecondsPerMillisecond = 1e6
)

// Layouts accepted when reading stored timestamps. Naive layouts are read
// as UTC.
var readLayouts = []string{ //nolint:gochecknoglobals // immutable table
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// defaultFileNames is indexed by model.Category.Index().
var defaultFileNames = [len(model.Categories)]string{ //nolint:gochecknoglobals // immutable table
	"code_insertions.jsonl",
	"test_generations.jsonl",
	"documentation.jsonl",
}

// FileStore keeps one append-only JSON-lines file per category.
//
// Appends to a category are serialized by a per-category mutex and written
// with a single write call. Readers take no lock; a partially written final
// line is skipped like any other malformed record.
type FileStore struct {
	dir           string
	names         [len(model.Categories)]string
	writeMu       [len(model.Categories)]sync.Mutex
	maxRecordSize int
	logger        logger.Logger
}

var _ Store = (*FileStore)(nil)

// record is the on-disk shape. Timestamp shadows the embedded event field
// so the raw string survives for ordering.
type record struct {
	model.Event
	Timestamp string `json:"timestamp"`
}

// stored pairs a decoded event with its raw timestamp.
type stored struct {
	event model.Event
	rawTS string
}

// NewFileStore opens (creating if needed) a store rooted at dir.
func NewFileStore(_ context.Context, dir string, opts ...Option) (*FileStore, error) {
	s := &FileStore{
		dir:           dir,
		names:         defaultFileNames,
		maxRecordSize: defaultMaxRecordSize,
		logger:        logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(dir, dirPermission); err != nil {
		return nil, fmt.Errorf("%w: create data dir %s: %w", ErrStorage, dir, err)
	}
	return s, nil
}

// Dir returns the directory holding the category files.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the file backing category.
func (s *FileStore) Path(category model.Category) (string, error) {
	i := category.Index()
	if i < 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	return filepath.Join(s.dir, s.names[i]), nil
}

// Save appends e as one line to its category file.
func (s *FileStore) Save(ctx context.Context, e model.Event) error {
	start := time.Now()
	defer func() {
		metrics.RecordStorageLatency("save", float64(time.Since(start).Nanoseconds())/nanosecondsPerMillisecond)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.Path(e.Category)
	if err != nil {
		return err
	}

	line, err := json.Marshal(record{Event: e, Timestamp: e.Timestamp.Format(model.TimestampLayout)})
	if err != nil {
		metrics.RecordStorageError("save")
		return fmt.Errorf("%w: encode event: %w", ErrStorage, err)
	}
	line = append(line, '\n')

	mu := &s.writeMu[e.Category.Index()]
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
	if err != nil {
		metrics.RecordStorageError("save")
		return fmt.Errorf("%w: open %s: %w", ErrStorage, path, err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		metrics.RecordStorageError("save")
		return fmt.Errorf("%w: append %s: %w", ErrStorage, path, err)
	}
	if err := f.Close(); err != nil {
		metrics.RecordStorageError("save")
		return fmt.Errorf("%w: close %s: %w", ErrStorage, path, err)
	}
	return nil
}

// Load returns the matching events of category in file order.
func (s *FileStore) Load(ctx context.Context, category model.Category, f Filter) ([]model.Event, error) {
	recs, err := s.load(ctx, category, f)
	if err != nil {
		return nil, err
	}
	events := make([]model.Event, len(recs))
	for i, r := range recs {
		events[i] = r.event
	}
	return events, nil
}

// GetAll returns the matching events of every category sorted by stored
// timestamp string. Ties keep category order, then file order.
func (s *FileStore) GetAll(ctx context.Context, f Filter) ([]model.Event, error) {
	var all []stored
	for _, c := range model.Categories {
		recs, err := s.load(ctx, c, f)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].rawTS < all[j].rawTS })

	events := make([]model.Event, len(all))
	for i, r := range all {
		events[i] = r.event
	}
	return events, nil
}

func (s *FileStore) load(ctx context.Context, category model.Category, f Filter) ([]stored, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStorageLatency("load", float64(time.Since(start).Nanoseconds())/nanosecondsPerMillisecond)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.Path(category)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		metrics.RecordStorageError("load")
		return nil, fmt.Errorf("%w: open %s: %w", ErrStorage, path, err)
	}
	defer func() { _ = file.Close() }()

	var out []stored
	reader := bufio.NewReader(file)
	for lineNo := 1; ; lineNo++ {
		line, readErr := reader.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			metrics.RecordStorageError("load")
			return nil, fmt.Errorf("%w: read %s: %w", ErrStorage, path, readErr)
		}

		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			rec, ok := s.decode(ctx, category, trimmed, lineNo)
			if ok && f.Match(rec.event) {
				out = append(out, rec)
			}
		}

		if readErr != nil {
			break
		}
	}
	return out, nil
}

// decode parses one stored line. It returns false for malformed records.
func (s *FileStore) decode(ctx context.Context, category model.Category, line []byte, lineNo int) (stored, bool) {
	skip := func(reason string) (stored, bool) {
		metrics.RecordMalformedRecord(string(category))
		s.logger.Debug(ctx, "skipping malformed record",
			logger.String("category", string(category)),
			logger.Int("line", lineNo),
			logger.String("reason", reason),
		)
		return stored{}, false
	}

	if len(line) > s.maxRecordSize {
		return skip("record too large")
	}

	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return skip(err.Error())
	}
	ts, err := parseTimestamp(rec.Timestamp)
	if err != nil {
		return skip(err.Error())
	}

	e := rec.Event
	e.Timestamp = ts
	e.RawTimestamp = rec.Timestamp
	if e.Category == "" {
		e.Category = category
	}
	if e.Category != category {
		return skip("category does not match file")
	}
	if err := e.Validate(); err != nil {
		return skip(err.Error())
	}
	return stored{event: e, rawTS: rec.Timestamp}, true
}

func parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("missing timestamp")
	}
	for _, layout := range readLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", raw)
}
