// Package reporter renders the outcome of a run in several output formats.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tclaudel/downkeep/internal/dispose"
	"github.com/tclaudel/downkeep/internal/reconcile"
	"github.com/tclaudel/downkeep/pkg/utils"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatSummary OutputFormat = "summary"
)

// EntryReport is one dispositioned or retained entry in the run report
type EntryReport struct {
	Path       string    `json:"path" yaml:"path"`
	Size       int64     `json:"size" yaml:"size"`
	IsDir      bool      `json:"is_dir" yaml:"is_dir"`
	UseCount   int       `json:"use_count" yaml:"use_count"`
	LastUsedAt time.Time `json:"last_used_at" yaml:"last_used_at"`
	Action     string    `json:"action" yaml:"action"`
	Container  string    `json:"container,omitempty" yaml:"container,omitempty"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunReport summarizes one complete run
type RunReport struct {
	Timestamp     time.Time     `json:"timestamp" yaml:"timestamp"`
	DownloadsDir  string        `json:"downloads_dir" yaml:"downloads_dir"`
	DryRun        bool          `json:"dry_run" yaml:"dry_run"`
	Scanned       int           `json:"scanned" yaml:"scanned"`
	New           int           `json:"new" yaml:"new"`
	Accessed      int           `json:"accessed" yaml:"accessed"`
	Removed       int           `json:"removed" yaml:"removed"`
	Archived      int           `json:"archived" yaml:"archived"`
	Trashed       int           `json:"trashed" yaml:"trashed"`
	Retained      int           `json:"retained" yaml:"retained"`
	ReclaimedSize int64         `json:"reclaimed_size" yaml:"reclaimed_size"`
	Entries       []EntryReport `json:"entries" yaml:"entries"`
	ProbeErrors   int           `json:"probe_errors" yaml:"probe_errors"`
}

// Build assembles a RunReport from one reconcile pass and its dispositions.
// disposal may be nil for scan-only runs.
func Build(dir string, dryRun bool, rec *reconcile.Result, disposal *dispose.Result) *RunReport {
	report := &RunReport{
		Timestamp:    time.Now(),
		DownloadsDir: dir,
		DryRun:       dryRun,
		Scanned:      len(rec.Active) + len(rec.Stale),
		Removed:      len(rec.Removed),
		ProbeErrors:  len(rec.Errors),
	}

	for _, entry := range append(append([]reconcile.Entry{}, rec.Active...), rec.Stale...) {
		if entry.New {
			report.New++
		}
		if entry.Accessed {
			report.Accessed++
		}
	}

	if disposal == nil {
		// Scan-only run: stale entries are listed with the action pending.
		for _, entry := range rec.Stale {
			report.Entries = append(report.Entries, entryReport(entry, "stale", "", nil))
		}
		return report
	}

	report.Archived = len(disposal.Archived)
	report.Trashed = len(disposal.Trashed)
	report.Retained = len(disposal.Retained)

	for _, o := range disposal.Archived {
		report.Entries = append(report.Entries, entryReport(o.Entry, o.Action.String(), o.Container, nil))
	}
	for _, o := range disposal.Trashed {
		report.Entries = append(report.Entries, entryReport(o.Entry, o.Action.String(), "", nil))
		report.ReclaimedSize += o.Entry.Size
	}
	for _, o := range disposal.Retained {
		report.Entries = append(report.Entries, entryReport(o.Entry, o.Action.String(), "", o.Err))
	}

	return report
}

func entryReport(entry reconcile.Entry, action, container string, actErr *dispose.ActionError) EntryReport {
	er := EntryReport{
		Path:       entry.Record.Path,
		Size:       entry.Size,
		IsDir:      entry.IsDir,
		UseCount:   entry.Record.UseCount,
		LastUsedAt: entry.Record.LastUsedAt,
		Action:     action,
		Container:  container,
	}
	if actErr != nil {
		er.Error = actErr.Error()
	}
	return er
}

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
	}
}

// Report renders the run report in the configured format
func (r *Reporter) Report(report *RunReport) error {
	switch r.format {
	case FormatTable:
		return r.reportTable(report)
	case FormatJSON:
		return r.reportJSON(report)
	case FormatYAML:
		return r.reportYAML(report)
	case FormatSummary:
		return r.reportSummary(report)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// reportSummary generates a summary report
func (r *Reporter) reportSummary(report *RunReport) error {
	fmt.Fprintf(r.writer, "=== downkeep Summary ===\n")
	if report.DryRun {
		fmt.Fprintf(r.writer, "(dry run, nothing was moved)\n")
	}
	fmt.Fprintf(r.writer, "Scanned: %d entries in %s\n", report.Scanned, report.DownloadsDir)
	fmt.Fprintf(r.writer, "New: %d, Accessed: %d, Vanished records dropped: %d\n",
		report.New, report.Accessed, report.Removed)
	fmt.Fprintf(r.writer, "Archived: %d\n", report.Archived)
	fmt.Fprintf(r.writer, "Trashed: %d (%s reclaimed from downloads)\n",
		report.Trashed, utils.FormatBytes(report.ReclaimedSize))

	if report.Retained > 0 {
		fmt.Fprintf(r.writer, "Retained after errors: %d (will retry next run)\n", report.Retained)
	}
	if report.ProbeErrors > 0 {
		fmt.Fprintf(r.writer, "Probe errors: %d\n", report.ProbeErrors)
	}

	return nil
}

// reportTable generates a table report
func (r *Reporter) reportTable(report *RunReport) error {
	fmt.Fprintf(r.writer, "%-60s | %-10s | %-5s | %-20s | %s\n",
		"Path", "Size", "Uses", "Last Used", "Action")
	fmt.Fprintf(r.writer, "%s\n", strings.Repeat("-", 120))

	for _, entry := range report.Entries {
		path := entry.Path
		if len(path) > 60 {
			path = "..." + path[len(path)-57:]
		}

		action := entry.Action
		if entry.Error != "" {
			action += " (failed)"
		}

		fmt.Fprintf(r.writer, "%-60s | %-10s | %-5d | %-20s | %s\n",
			path,
			utils.FormatBytes(entry.Size),
			entry.UseCount,
			entry.LastUsedAt.Format("2006-01-02 15:04:05"),
			action)
	}

	fmt.Fprintf(r.writer, "%s\n", strings.Repeat("-", 120))
	fmt.Fprintf(r.writer, "Total: %d scanned, %d archived, %d trashed, %s reclaimed\n",
		report.Scanned, report.Archived, report.Trashed, utils.FormatBytes(report.ReclaimedSize))

	return nil
}

// reportJSON generates a JSON report
func (r *Reporter) reportJSON(report *RunReport) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// reportYAML generates a YAML report
func (r *Reporter) reportYAML(report *RunReport) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(report)
}

// SaveToFile saves the report to a file
func SaveToFile(report *RunReport, path string, format OutputFormat) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reporter := New(file, format)
	return reporter.Report(report)
}
