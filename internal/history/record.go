// Package history persists per-entry usage records between runs.
package history

import "time"

// Record tracks usage metadata for one filesystem entry in the target
// directory. Path is the unique key; UseCount never decreases and never
// resets for the lifetime of the record.
type Record struct {
	Path       string
	CreatedAt  time.Time
	LastUsedAt time.Time
	UseCount   int
}

// Stale reports whether the record has gone unused longer than threshold,
// relative to now.
func (r Record) Stale(now time.Time, threshold time.Duration) bool {
	return now.After(r.LastUsedAt.Add(threshold))
}
