package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefault(t *testing.T) {
	cfg, err := GetDefault()
	if err != nil {
		t.Fatalf("GetDefault failed: %v", err)
	}

	if cfg.ThresholdDays != 30 {
		t.Errorf("expected threshold_days 30, got %d", cfg.ThresholdDays)
	}
	if cfg.UseLimit != 3 {
		t.Errorf("expected use_limit 3, got %d", cfg.UseLimit)
	}
	if cfg.DryRun {
		t.Error("expected dry_run disabled by default")
	}
	if cfg.DownloadsDir == "" || !filepath.IsAbs(cfg.DownloadsDir) {
		t.Errorf("expected absolute downloads dir, got %q", cfg.DownloadsDir)
	}
	if cfg.HistoryPath == "" || !filepath.IsAbs(cfg.HistoryPath) {
		t.Errorf("expected absolute history path, got %q", cfg.HistoryPath)
	}
	if len(cfg.ExcludePatterns) == 0 {
		t.Error("expected default exclude patterns for partial downloads")
	}
}

func TestThresholdDuration(t *testing.T) {
	cfg := &Config{ThresholdDays: 30}
	if got := cfg.Threshold().Hours(); got != 30*24 {
		t.Errorf("Threshold() = %v hours, want %v", got, 30*24)
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ThresholdDays != 30 || cfg.UseLimit != 3 {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "threshold_days: 7\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ThresholdDays != 7 {
		t.Errorf("expected threshold_days 7, got %d", cfg.ThresholdDays)
	}
	if cfg.UseLimit != 3 {
		t.Errorf("unset fields keep defaults, got use_limit %d", cfg.UseLimit)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := GetDefault()
	if err != nil {
		t.Fatalf("GetDefault failed: %v", err)
	}
	cfg.ThresholdDays = 14
	cfg.UseLimit = 5
	cfg.ExcludePatterns = []string{"*.part"}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ThresholdDays != 14 || loaded.UseLimit != 5 {
		t.Errorf("round trip mangled config: %+v", loaded)
	}
	if len(loaded.ExcludePatterns) != 1 || loaded.ExcludePatterns[0] != "*.part" {
		t.Errorf("exclude patterns mangled: %v", loaded.ExcludePatterns)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("threshold_days: [not a number"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"negative threshold", func(c *Config) { c.ThresholdDays = -1 }, true},
		{"negative use limit", func(c *Config) { c.UseLimit = -3 }, true},
		{"zero threshold is allowed", func(c *Config) { c.ThresholdDays = 0 }, false},
		{"relative downloads dir", func(c *Config) { c.DownloadsDir = "Downloads" }, true},
		{"relative history path", func(c *Config) { c.HistoryPath = "history.csv" }, true},
		{"bad glob", func(c *Config) { c.ExcludePatterns = []string{"[unclosed"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := GetDefault()
			if err != nil {
				t.Fatalf("GetDefault failed: %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
