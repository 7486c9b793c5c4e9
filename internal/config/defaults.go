package config

import "github.com/tclaudel/downkeep/internal/platform"

// GetDefault returns the default configuration for the detected platform
func GetDefault() (*Config, error) {
	info, err := platform.GetInfo()
	if err != nil {
		return nil, err
	}

	return &Config{
		DownloadsDir:  info.DownloadsDir,
		ArchiveDir:    info.ArchiveDir,
		HistoryPath:   info.HistoryPath,
		ThresholdDays: 30, // untouched for a month means stale
		UseLimit:      3,  // at least 3 observed uses means worth archiving
		ExcludePatterns: []string{
			".*",           // dotfiles, including in-progress browser download metadata
			"*.part",       // Firefox partial downloads
			"*.crdownload", // Chrome partial downloads
		},
		DryRun:  false,
		Verbose: false,
	}, nil
}

// GetExampleConfig returns an example configuration with comments
func GetExampleConfig() string {
	return `# downkeep Configuration File
# Location: ~/.config/downkeep/config.yaml

# Directory watched for stale downloads
downloads_dir: "~/Downloads"

# Where archived entries are packed as zip containers
archive_dir: "~/Archives"

# Usage history store (CSV). Keep it outside downloads_dir.
history_path: "~/.local/share/downkeep/history.csv"

# Entries unused for more than this many days become disposition candidates
threshold_days: 30

# Entries observed in use at least this many times are archived instead of
# trashed
use_limit: 3

# Exclude patterns (glob patterns matched against the entry name)
exclude_patterns:
  - ".*"
  - "*.part"
  - "*.crdownload"

# Dry-run mode - report what would happen without moving anything
dry_run: false

# Verbose output - show per-entry decisions during execution
verbose: false
`
}
