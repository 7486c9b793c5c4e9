package platform

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestDetect(t *testing.T) {
	p := Detect()
	switch runtime.GOOS {
	case "darwin":
		if p != MacOS {
			t.Errorf("Detect() = %v, want MacOS", p)
		}
	case "linux":
		if p != Linux {
			t.Errorf("Detect() = %v, want Linux", p)
		}
	default:
		if p != Unknown {
			t.Errorf("Detect() = %v, want Unknown", p)
		}
	}
}

func TestGetInfo(t *testing.T) {
	if Detect() == Unknown {
		t.Skip("unsupported platform")
	}

	info, err := GetInfo()
	if err != nil {
		t.Fatalf("GetInfo failed: %v", err)
	}

	if info.HomeDir == "" {
		t.Error("HomeDir is empty")
	}
	for name, path := range map[string]string{
		"DownloadsDir": info.DownloadsDir,
		"ArchiveDir":   info.ArchiveDir,
		"TrashDir":     info.TrashDir,
		"HistoryPath":  info.HistoryPath,
	} {
		if !filepath.IsAbs(path) {
			t.Errorf("%s = %q, want absolute path", name, path)
		}
	}
	if len(info.ProtectedPaths) == 0 {
		t.Error("expected protected paths")
	}
}

func TestIsProtectedPath(t *testing.T) {
	info := &Info{ProtectedPaths: []string{"/", "/etc", "/usr"}}

	tests := []struct {
		path      string
		protected bool
	}{
		{"/", true},
		{"/etc", true},
		{"/etc/passwd", true},
		{"/usr/local", true},
		{"/home/user/Downloads", false},
		{"/etcetera", false},
	}

	for _, tt := range tests {
		if got := info.IsProtectedPath(tt.path); got != tt.protected {
			t.Errorf("IsProtectedPath(%q) = %v, want %v", tt.path, got, tt.protected)
		}
	}
}
