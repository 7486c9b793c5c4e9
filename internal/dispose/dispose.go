// Package dispose applies the stale-entry policy: entries used often enough
// are archived, the rest go to the trash bin.
package dispose

import (
	"go.uber.org/zap"

	"github.com/tclaudel/downkeep/internal/logging"
	"github.com/tclaudel/downkeep/internal/reconcile"
)

// Action is what the engine decided to do with a stale entry.
type Action int

const (
	ActionTrash Action = iota
	ActionArchive
)

// String returns the action verb for logs and reports
func (a Action) String() string {
	switch a {
	case ActionArchive:
		return "archive"
	case ActionTrash:
		return "trash"
	default:
		return "unknown"
	}
}

// Trasher moves an entry into the trash bin.
type Trasher interface {
	Move(path string) error
}

// Archiver packs an entry into a container and removes the original.
type Archiver interface {
	Archive(path string) (containerPath string, err error)
}

// Outcome is the result of one disposition attempt.
type Outcome struct {
	Entry     reconcile.Entry
	Action    Action
	Container string // archive container path, when Action is ActionArchive
	Err       *ActionError
}

// Result summarizes one disposition pass.
type Result struct {
	Archived []Outcome
	Trashed  []Outcome
	Retained []Outcome // failed with the entry still present; record kept for retry
	Vanished []Outcome // entry disappeared before action; record dropped silently
}

// Engine decides and applies dispositions for stale entries.
type Engine struct {
	UseLimit int
	DryRun   bool

	Trash   Trasher
	Archive Archiver
}

// NewEngine creates an Engine with the given use-count limit.
func NewEngine(useLimit int, trash Trasher, archive Archiver) *Engine {
	return &Engine{
		UseLimit: useLimit,
		Trash:    trash,
		Archive:  archive,
	}
}

// Decide returns the action the policy picks for an entry: archive when it
// was used at least UseLimit times, trash otherwise.
func (e *Engine) Decide(entry reconcile.Entry) Action {
	if entry.Record.UseCount >= e.UseLimit {
		return ActionArchive
	}
	return ActionTrash
}

// Run dispositions every stale entry. Failures never stop the pass: an entry
// that could not be moved is retained and retried on the next run.
func (e *Engine) Run(stale []reconcile.Entry) *Result {
	result := &Result{}

	for _, entry := range stale {
		outcome := e.apply(entry)

		switch {
		case outcome.Err == nil:
			if outcome.Action == ActionArchive {
				result.Archived = append(result.Archived, outcome)
			} else {
				result.Trashed = append(result.Trashed, outcome)
			}
		case outcome.Err.Reason == ErrorEntryNotFound:
			// Deleted externally between reconcile and disposition; the
			// record is dropped exactly as if the action had succeeded.
			logging.Debug("stale entry vanished before disposition",
				zap.String("path", entry.Record.Path))
			result.Vanished = append(result.Vanished, outcome)
		default:
			logging.Warn("disposition failed, entry retained",
				zap.String("path", entry.Record.Path),
				zap.String("action", outcome.Action.String()),
				zap.Error(outcome.Err))
			result.Retained = append(result.Retained, outcome)
		}
	}

	return result
}

func (e *Engine) apply(entry reconcile.Entry) Outcome {
	outcome := Outcome{Entry: entry, Action: e.Decide(entry)}
	path := entry.Record.Path

	if e.DryRun {
		return outcome
	}

	switch outcome.Action {
	case ActionArchive:
		container, err := e.Archive.Archive(path)
		outcome.Container = container
		outcome.Err = CategorizeError(path, outcome.Action, err)
	default:
		outcome.Err = CategorizeError(path, outcome.Action, e.Trash.Move(path))
	}
	return outcome
}

// KeptRecords returns the records that must stay in the history store after
// the pass: everything retained for retry.
func (r *Result) KeptRecords() []reconcile.Entry {
	kept := make([]reconcile.Entry, 0, len(r.Retained))
	for _, o := range r.Retained {
		kept = append(kept, o.Entry)
	}
	return kept
}

// Errors returns the categorized errors of all retained outcomes.
func (r *Result) Errors() []*ActionError {
	var errs []*ActionError
	for _, o := range r.Retained {
		errs = append(errs, o.Err)
	}
	return errs
}
