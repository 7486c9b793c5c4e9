// Package reconcile merges the current directory listing with the persisted
// history records. This is the only component with decision logic: it
// creates records for new entries, detects accesses, retires records whose
// entry vanished, and partitions the rest around the staleness threshold.
package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/tclaudel/downkeep/internal/history"
	"github.com/tclaudel/downkeep/internal/logging"
	"github.com/tclaudel/downkeep/internal/probe"
)

// Entry is a reconciled record plus the filesystem facts needed downstream.
type Entry struct {
	Record   history.Record
	Size     int64
	IsDir    bool
	New      bool // first observation this run
	Accessed bool // access detected since the previous run
}

// Result is the outcome of one reconciliation pass.
type Result struct {
	Active  []Entry          // within the staleness threshold, kept in the store
	Stale   []Entry          // past the threshold, disposition candidates
	Removed []history.Record // backing entry vanished, dropped without action
	Errors  []error          // per-entry probe failures, non-fatal
}

// Reconciler drives one reconciliation pass over a target directory.
type Reconciler struct {
	Threshold time.Duration
	Exclude   []string // glob patterns matched against the entry base name

	// Now and Probe exist so tests can pin the clock and metadata source.
	Now   func() time.Time
	Probe func(path string) (probe.Metadata, error)
}

// New creates a Reconciler with the given staleness threshold.
func New(threshold time.Duration) *Reconciler {
	return &Reconciler{
		Threshold: threshold,
		Now:       time.Now,
		Probe:     probe.Stat,
	}
}

// Reconcile lists the top level of dir (files and directories, matching how
// downloads land there), merges it against prior records, and partitions the
// result. An unreadable target directory is a fatal error.
func (r *Reconciler) Reconcile(dir string, prior []history.Record) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("target directory %s is not accessible: %w", dir, err)
	}

	known := make(map[string]history.Record, len(prior))
	for _, rec := range prior {
		known[rec.Path] = rec
	}

	now := r.Now()
	result := &Result{}
	seen := make(map[string]bool, len(entries))

	for _, dirEntry := range entries {
		if r.shouldSkip(dirEntry.Name()) {
			continue
		}

		path := filepath.Join(dir, dirEntry.Name())
		meta, err := r.Probe(path)
		if err != nil {
			if err == probe.ErrNotFound {
				// Vanished between listing and probing; the next run
				// settles it.
				logging.Debug("entry vanished before probe", zap.String("path", path))
				continue
			}
			result.Errors = append(result.Errors, err)
			// The entry is still on disk, just unreadable this run. Its
			// record must survive untouched, not get dropped as vanished.
			if prior, ok := known[path]; ok {
				seen[path] = true
				result.Active = append(result.Active, Entry{Record: prior})
			}
			continue
		}

		seen[path] = true
		entry := r.mergeEntry(path, meta, known)

		if entry.Record.Stale(now, r.Threshold) {
			result.Stale = append(result.Stale, entry)
		} else {
			result.Active = append(result.Active, entry)
		}
	}

	// Records without a backing entry were already dispositioned or deleted
	// externally; drop them without action.
	for _, rec := range prior {
		if !seen[rec.Path] {
			result.Removed = append(result.Removed, rec)
		}
	}

	return result, nil
}

// mergeEntry folds fresh filesystem metadata into the stored record, or
// creates one on first observation.
func (r *Reconciler) mergeEntry(path string, meta probe.Metadata, known map[string]history.Record) Entry {
	prior, exists := known[path]
	if !exists {
		return Entry{
			Record: history.Record{
				Path:       path,
				CreatedAt:  meta.CreatedAt,
				LastUsedAt: meta.LastUsedAt,
				UseCount:   1,
			},
			Size:  meta.Size,
			IsDir: meta.IsDir,
			New:   true,
		}
	}

	record := prior
	accessed := meta.LastUsedAt.After(prior.LastUsedAt)
	if accessed {
		record.UseCount++
		record.LastUsedAt = meta.LastUsedAt
	}

	return Entry{
		Record:   record,
		Size:     meta.Size,
		IsDir:    meta.IsDir,
		Accessed: accessed,
	}
}

func (r *Reconciler) shouldSkip(name string) bool {
	for _, pattern := range r.Exclude {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
