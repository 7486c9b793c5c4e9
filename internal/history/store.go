package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/gofrs/flock"
)

// Column order of the on-disk table. A header row is always written and
// accepted (but not required) when loading.
var header = []string{"path", "created_at", "last_used_at", "use_count"}

// CorruptError reports an unreadable history store. The run must abort
// rather than risk discarding history.
type CorruptError struct {
	Path string
	Line int
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("history store %s corrupt at line %d: %v", e.Path, e.Line, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// LockedError reports that another instance holds the store lock.
type LockedError struct {
	Path string
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("history store %s is locked by another instance", e.Path)
}

// Store is the load/save boundary around the CSV history file. All other
// packages operate on in-memory records.
type Store struct {
	path string
	lock *flock.Flock
}

// NewStore creates a store over the given history file path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the history file path.
func (s *Store) Path() string { return s.path }

// Lock acquires the whole-run advisory lock. It does not block: if another
// instance holds the lock the run must refuse to start.
func (s *Store) Lock() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	locked, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock history store: %w", err)
	}
	if !locked {
		return &LockedError{Path: s.path}
	}
	return nil
}

// Unlock releases the whole-run lock.
func (s *Store) Unlock() error {
	return s.lock.Unlock()
}

// Load reads all records from disk. A missing file is an empty store (first
// run); unparsable content is a *CorruptError.
func (s *Store) Load() ([]Record, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(header)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &CorruptError{Path: s.path, Line: csvErrLine(err), Err: err}
	}

	var records []Record
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}

		record, err := parseRow(row)
		if err != nil {
			return nil, &CorruptError{Path: s.path, Line: i + 1, Err: err}
		}
		records = append(records, record)
	}

	return records, nil
}

// Save rewrites the store with the given records, sorted by path. The write
// goes through a temp file and rename so a crash never truncates history.
func (s *Store) Save(records []Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*")
	if err != nil {
		return fmt.Errorf("failed to create history temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write history header: %w", err)
	}
	for _, r := range sorted {
		row := []string{
			r.Path,
			r.CreatedAt.Format(time.RFC3339Nano),
			r.LastUsedAt.Format(time.RFC3339Nano),
			strconv.Itoa(r.UseCount),
		}
		if err := writer.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write history row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush history store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close history temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace history store: %w", err)
	}
	return nil
}

// isHeader reports whether row is exactly the header row. A data row whose
// path happens to be "path" must not be mistaken for it.
func isHeader(row []string) bool {
	for i, col := range header {
		if row[i] != col {
			return false
		}
	}
	return true
}

func parseRow(row []string) (Record, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, row[1])
	if err != nil {
		return Record{}, fmt.Errorf("invalid created_at %q: %w", row[1], err)
	}

	lastUsedAt, err := time.Parse(time.RFC3339Nano, row[2])
	if err != nil {
		return Record{}, fmt.Errorf("invalid last_used_at %q: %w", row[2], err)
	}

	useCount, err := strconv.Atoi(row[3])
	if err != nil {
		return Record{}, fmt.Errorf("invalid use_count %q: %w", row[3], err)
	}
	if useCount < 0 {
		return Record{}, fmt.Errorf("negative use_count %d", useCount)
	}

	return Record{
		Path:       row[0],
		CreatedAt:  createdAt,
		LastUsedAt: lastUsedAt,
		UseCount:   useCount,
	}, nil
}

func csvErrLine(err error) int {
	if parseErr, ok := err.(*csv.ParseError); ok {
		return parseErr.Line
	}
	return 0
}
