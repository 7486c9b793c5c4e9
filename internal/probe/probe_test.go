package probe

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStatFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "download.bin")
	if err := os.WriteFile(path, []byte("12345"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	atime := time.Now().Add(-48 * time.Hour).Truncate(time.Second)
	if err := os.Chtimes(path, atime, atime); err != nil {
		t.Fatalf("chtimes failed: %v", err)
	}

	meta, err := Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}

	if meta.Size != 5 {
		t.Errorf("size = %d, want 5", meta.Size)
	}
	if meta.IsDir {
		t.Error("file reported as directory")
	}
	if !meta.LastUsedAt.Equal(atime) {
		t.Errorf("last used at = %v, want %v", meta.LastUsedAt, atime)
	}
	if meta.CreatedAt.IsZero() {
		t.Error("created at is zero")
	}
}

func TestStatDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "extracted")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	meta, err := Stat(sub)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if !meta.IsDir {
		t.Error("directory not reported as directory")
	}
}

func TestStatMissing(t *testing.T) {
	_, err := Stat(filepath.Join(t.TempDir(), "nope"))
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStatDoesNotFollowSymlink(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(dir, "dangling")
	if err := os.Symlink(filepath.Join(dir, "target-gone"), link); err != nil {
		t.Fatalf("symlink failed: %v", err)
	}

	// A dangling symlink is still a real directory entry.
	if _, err := Stat(link); err != nil {
		t.Errorf("Stat followed the symlink: %v", err)
	}
}
