// Package testutil provides test helpers and fixtures for downkeep tests.
// All file operations use t.TempDir() for safe, isolated testing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestFixture holds paths to test directories and files
type TestFixture struct {
	T       *testing.T
	RootDir string // Root temp directory (auto-cleaned)

	// Standard test directories
	DownloadsDir string
	ArchiveDir   string
	TrashDir     string
	HistoryPath  string
}

// NewFixture creates a new test fixture with standard directory structure
func NewFixture(t *testing.T) *TestFixture {
	t.Helper()

	root := t.TempDir()

	f := &TestFixture{
		T:            t,
		RootDir:      root,
		DownloadsDir: filepath.Join(root, "Downloads"),
		ArchiveDir:   filepath.Join(root, "Archives"),
		TrashDir:     filepath.Join(root, "Trash"),
		HistoryPath:  filepath.Join(root, "state", "history.csv"),
	}

	dirs := []string{
		f.DownloadsDir,
		f.ArchiveDir,
		f.TrashDir,
		filepath.Dir(f.HistoryPath),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}

	return f
}

// CreateFile creates a file with specified content and returns its path
func (f *TestFixture) CreateFile(relPath string, content []byte) string {
	f.T.Helper()

	fullPath := filepath.Join(f.RootDir, relPath)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		f.T.Fatalf("failed to create file %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateDownload creates a file in the downloads directory
func (f *TestFixture) CreateDownload(name string, content []byte) string {
	f.T.Helper()
	return f.CreateFile(filepath.Join("Downloads", name), content)
}

// CreateDownloadWithAge creates a download and backdates both its access
// and modification times
func (f *TestFixture) CreateDownloadWithAge(name string, content []byte, age time.Duration) string {
	f.T.Helper()

	fullPath := f.CreateDownload(name, content)
	oldTime := time.Now().Add(-age)

	if err := os.Chtimes(fullPath, oldTime, oldTime); err != nil {
		f.T.Fatalf("failed to set file time for %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateDownloadDir creates a directory in the downloads directory
func (f *TestFixture) CreateDownloadDir(name string) string {
	f.T.Helper()

	fullPath := filepath.Join(f.DownloadsDir, name)
	if err := os.MkdirAll(fullPath, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", fullPath, err)
	}

	return fullPath
}

// SetAccessTime sets the access time of path, keeping its mtime
func (f *TestFixture) SetAccessTime(path string, atime time.Time) {
	f.T.Helper()

	info, err := os.Stat(path)
	if err != nil {
		f.T.Fatalf("failed to stat %s: %v", path, err)
	}
	if err := os.Chtimes(path, atime, info.ModTime()); err != nil {
		f.T.Fatalf("failed to set access time for %s: %v", path, err)
	}
}

// Path returns the full path for a relative path within the fixture
func (f *TestFixture) Path(relPath string) string {
	return filepath.Join(f.RootDir, relPath)
}

// FileExists checks if a file exists
func (f *TestFixture) FileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// AssertFileExists fails the test if the file doesn't exist
func (f *TestFixture) AssertFileExists(path string) {
	f.T.Helper()
	if !f.FileExists(path) {
		f.T.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists fails the test if the file exists
func (f *TestFixture) AssertFileNotExists(path string) {
	f.T.Helper()
	if f.FileExists(path) {
		f.T.Errorf("expected file to not exist: %s", path)
	}
}

// ListDir returns the sorted entry names of a directory
func (f *TestFixture) ListDir(path string) []string {
	f.T.Helper()

	entries, err := os.ReadDir(path)
	if err != nil {
		f.T.Fatalf("failed to read directory %s: %v", path, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// SkipIfRoot skips the test if running as root (permission tests need a
// non-root user)
func SkipIfRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("skipping test when running as root")
	}
}
