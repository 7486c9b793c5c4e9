package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tclaudel/downkeep/internal/archive"
	"github.com/tclaudel/downkeep/internal/config"
	"github.com/tclaudel/downkeep/internal/dispose"
	"github.com/tclaudel/downkeep/internal/history"
	"github.com/tclaudel/downkeep/internal/logging"
	"github.com/tclaudel/downkeep/internal/platform"
	"github.com/tclaudel/downkeep/internal/reconcile"
	"github.com/tclaudel/downkeep/internal/reporter"
	"github.com/tclaudel/downkeep/internal/trash"
	"github.com/tclaudel/downkeep/internal/ui"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	configPath    string
	verbose       bool
	dryRun        bool
	thresholdDays int
	useLimit      int
	archiveDir    string
	historyPath   string
	downloadsDir  string
	outputFmt     string
	outputFile    string
	initConfig    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "downkeep",
	Short: "Downloads folder janitor",
	Long: `downkeep keeps a Downloads folder tidy by tracking how often each entry
is actually used. Entries untouched past a threshold are archived when they
proved useful, or moved to the trash when they did not.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
}

var runCmd = &cobra.Command{
	Use:   "run [dir]",
	Short: "Reconcile usage history and disposition stale entries",
	Long: `Scans the downloads directory, updates the usage history, and moves every
stale entry: archived when used at least the configured number of times,
trashed otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := logging.Init(cfg.Verbose); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		defer logging.Sync()

		pass, err := newPass(cfg)
		if err != nil {
			return err
		}
		defer pass.close()

		logging.Info("starting run",
			zap.String("downloads_dir", cfg.DownloadsDir),
			zap.Int("threshold_days", cfg.ThresholdDays),
			zap.Int("use_limit", cfg.UseLimit))

		rec, err := pass.reconcile()
		if err != nil {
			return err
		}

		if cfg.DryRun {
			fmt.Println("[DRY RUN MODE] Nothing will be moved.")
		}

		disposal := pass.engine.Run(rec.Stale)

		if !cfg.DryRun {
			if err := pass.save(rec, disposal); err != nil {
				return err
			}
		}

		report := reporter.Build(cfg.DownloadsDir, cfg.DryRun, rec, disposal)
		rptr := reporter.New(os.Stdout, reporter.FormatSummary)
		if err := rptr.Report(report); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}

		if errs := disposal.Errors(); len(errs) > 0 {
			fmt.Print(dispose.FormatErrorSummary(errs))
		}

		return nil
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Show what a run would do without moving anything",
	Long:  `Scans the downloads directory against the history and reports the stale entries. The history store is not modified.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := logging.Init(cfg.Verbose); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		defer logging.Sync()

		pass, err := newPass(cfg)
		if err != nil {
			return err
		}
		defer pass.close()

		rec, err := pass.reconcile()
		if err != nil {
			return err
		}

		report := reporter.Build(cfg.DownloadsDir, true, rec, nil)
		rptr := reporter.New(os.Stdout, parseFormat(outputFmt))
		if err := rptr.Report(report); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}

		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [dir]",
	Short: "Generate a detailed report of the pending dispositions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := logging.Init(cfg.Verbose); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		defer logging.Sync()

		pass, err := newPass(cfg)
		if err != nil {
			return err
		}
		defer pass.close()

		rec, err := pass.reconcile()
		if err != nil {
			return err
		}

		report := reporter.Build(cfg.DownloadsDir, true, rec, nil)
		format := parseFormat(outputFmt)

		if outputFile != "" {
			if err := reporter.SaveToFile(report, outputFile, format); err != nil {
				return fmt.Errorf("failed to save report: %w", err)
			}
			fmt.Printf("Report saved to: %s\n", outputFile)
			return nil
		}

		rptr := reporter.New(os.Stdout, format)
		if err := rptr.Report(report); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}

		return nil
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review [dir]",
	Short: "Interactively review and apply the planned dispositions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := logging.Init(cfg.Verbose); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		defer logging.Sync()

		pass, err := newPass(cfg)
		if err != nil {
			return err
		}
		defer pass.close()

		rec, err := pass.reconcile()
		if err != nil {
			return err
		}

		candidates := make([]ui.Candidate, 0, len(rec.Stale))
		for _, entry := range rec.Stale {
			candidates = append(candidates, ui.Candidate{
				Entry:  entry,
				Action: pass.engine.Decide(entry),
			})
		}

		approved, confirmed, err := ui.Review(candidates)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Review cancelled, nothing was moved.")
			return nil
		}

		// Skipped candidates stay active: their records are kept untouched.
		skipped := make(map[string]bool, len(rec.Stale))
		for _, c := range candidates {
			skipped[c.Entry.Record.Path] = true
		}
		stale := make([]reconcile.Entry, 0, len(approved))
		for _, c := range approved {
			delete(skipped, c.Entry.Record.Path)
			stale = append(stale, c.Entry)
		}
		for _, entry := range rec.Stale {
			if skipped[entry.Record.Path] {
				rec.Active = append(rec.Active, entry)
			}
		}
		rec.Stale = stale

		disposal := pass.engine.Run(rec.Stale)
		if err := pass.save(rec, disposal); err != nil {
			return err
		}

		report := reporter.Build(cfg.DownloadsDir, false, rec, disposal)
		rptr := reporter.New(os.Stdout, reporter.FormatSummary)
		return rptr.Report(report)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if initConfig {
			cfgPath, err := config.EnsureConfigExists()
			if err != nil {
				return err
			}
			fmt.Printf("Config file: %s\n", cfgPath)
			return nil
		}

		cfgPath := configPath
		if cfgPath == "" {
			var err error
			cfgPath, err = config.GetConfigPath()
			if err != nil {
				return err
			}
		}

		fmt.Printf("Config file: %s\n", cfgPath)
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			fmt.Println("Config file does not exist. Using default configuration.")
			fmt.Println("Run 'downkeep config --init' to create it.")
		}

		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s", data)
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")
	rootCmd.PersistentFlags().IntVar(&thresholdDays, "threshold-days", 0, "days without use before an entry is stale")
	rootCmd.PersistentFlags().IntVar(&useLimit, "use-limit", 0, "use count at which a stale entry is archived instead of trashed")
	rootCmd.PersistentFlags().StringVar(&downloadsDir, "downloads-dir", "", "downloads directory to keep tidy")
	rootCmd.PersistentFlags().StringVar(&archiveDir, "archive-dir", "", "directory for archived entries")
	rootCmd.PersistentFlags().StringVar(&historyPath, "history", "", "usage history store path")

	// Run command flags
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would happen without moving anything")

	// Scan/report command flags
	scanCmd.Flags().StringVar(&outputFmt, "output", "summary", "output format (summary, table, json, yaml)")
	reportCmd.Flags().StringVar(&outputFmt, "output", "table", "output format (summary, table, json, yaml)")
	reportCmd.Flags().StringVar(&outputFile, "file", "", "save report to file")

	// Config command flags
	configCmd.Flags().BoolVar(&initConfig, "init", false, "create the config file with defaults")

	// Add commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfgPath := configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.GetConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	// Flags override the file
	if cmd.Flags().Changed("threshold-days") {
		cfg.ThresholdDays = thresholdDays
	}
	if cmd.Flags().Changed("use-limit") {
		cfg.UseLimit = useLimit
	}
	if downloadsDir != "" {
		cfg.DownloadsDir = downloadsDir
	}
	if archiveDir != "" {
		cfg.ArchiveDir = archiveDir
	}
	if historyPath != "" {
		cfg.HistoryPath = historyPath
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.DryRun = dryRun
	}
	if verbose {
		cfg.Verbose = true
	}

	// A positional target directory wins over both file and flag.
	if len(args) == 1 {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return nil, fmt.Errorf("invalid target directory %q: %w", args[0], err)
		}
		cfg.DownloadsDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func parseFormat(name string) reporter.OutputFormat {
	switch name {
	case "json":
		return reporter.FormatJSON
	case "yaml":
		return reporter.FormatYAML
	case "table":
		return reporter.FormatTable
	default:
		return reporter.FormatSummary
	}
}

// pass bundles the locked store and the components of one run.
type pass struct {
	cfg    *config.Config
	store  *history.Store
	prior  []history.Record
	engine *dispose.Engine
	rec    *reconcile.Reconciler
}

// newPass locks the history store and wires the run components. The caller
// must close the pass to release the lock.
func newPass(cfg *config.Config) (*pass, error) {
	info, err := platform.GetInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get platform info: %w", err)
	}

	if info.IsProtectedPath(cfg.DownloadsDir) {
		return nil, fmt.Errorf("refusing to run on protected path %s", cfg.DownloadsDir)
	}

	store := history.NewStore(cfg.HistoryPath)
	if err := store.Lock(); err != nil {
		var locked *history.LockedError
		if errors.As(err, &locked) {
			return nil, fmt.Errorf("another downkeep instance is running: %w", err)
		}
		return nil, err
	}

	prior, err := store.Load()
	if err != nil {
		store.Unlock()
		return nil, fmt.Errorf("refusing to run: %w", err)
	}

	rec := reconcile.New(cfg.Threshold())
	rec.Exclude = cfg.ExcludePatterns

	engine := dispose.NewEngine(cfg.UseLimit, trash.New(info), archive.New(cfg.ArchiveDir))
	engine.DryRun = cfg.DryRun

	return &pass{
		cfg:    cfg,
		store:  store,
		prior:  prior,
		engine: engine,
		rec:    rec,
	}, nil
}

func (p *pass) close() {
	p.store.Unlock()
}

func (p *pass) reconcile() (*reconcile.Result, error) {
	return p.rec.Reconcile(p.cfg.DownloadsDir, p.prior)
}

// save persists the records that survive the pass: active entries plus the
// stale ones whose disposition failed.
func (p *pass) save(rec *reconcile.Result, disposal *dispose.Result) error {
	records := make([]history.Record, 0, len(rec.Active)+len(disposal.Retained))
	for _, entry := range rec.Active {
		records = append(records, entry.Record)
	}
	for _, entry := range disposal.KeptRecords() {
		records = append(records, entry.Record)
	}

	if err := p.store.Save(records); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}
