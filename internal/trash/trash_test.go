package trash

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tclaudel/downkeep/internal/platform"
	"github.com/tclaudel/downkeep/internal/testutil"
)

func TestNewPicksStyleForPlatform(t *testing.T) {
	linux := New(&platform.Info{OS: platform.Linux, TrashDir: "/t"})
	if linux.Style != StyleFreedesktop {
		t.Errorf("expected freedesktop style on Linux, got %v", linux.Style)
	}

	mac := New(&platform.Info{OS: platform.MacOS, TrashDir: "/t"})
	if mac.Style != StylePlain {
		t.Errorf("expected plain style on macOS, got %v", mac.Style)
	}
}

func TestMovePlain(t *testing.T) {
	f := testutil.NewFixture(t)
	src := f.CreateDownload("old.iso", []byte("dvd"))

	bin := &Bin{Dir: f.TrashDir, Style: StylePlain}
	if err := bin.Move(src); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	f.AssertFileNotExists(src)
	f.AssertFileExists(filepath.Join(f.TrashDir, "old.iso"))
}

func TestMovePlainCollision(t *testing.T) {
	f := testutil.NewFixture(t)
	bin := &Bin{Dir: f.TrashDir, Style: StylePlain}

	first := f.CreateDownload("dup.txt", []byte("a"))
	if err := bin.Move(first); err != nil {
		t.Fatalf("first Move failed: %v", err)
	}

	second := f.CreateDownload("dup.txt", []byte("b"))
	if err := bin.Move(second); err != nil {
		t.Fatalf("second Move failed: %v", err)
	}

	names := f.ListDir(f.TrashDir)
	if len(names) != 2 {
		t.Fatalf("expected 2 trashed entries, got %v", names)
	}
}

func TestMoveFreedesktop(t *testing.T) {
	f := testutil.NewFixture(t)
	src := f.CreateDownload("report 2025.pdf", []byte("pdf"))

	bin := &Bin{
		Dir:   f.TrashDir,
		Style: StyleFreedesktop,
		now:   func() time.Time { return time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC) },
	}
	if err := bin.Move(src); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	f.AssertFileNotExists(src)
	f.AssertFileExists(filepath.Join(f.TrashDir, "files", "report 2025.pdf"))

	infoPath := filepath.Join(f.TrashDir, "info", "report 2025.pdf.trashinfo")
	data, err := os.ReadFile(infoPath)
	if err != nil {
		t.Fatalf("missing trashinfo: %v", err)
	}

	content := string(data)
	if !strings.HasPrefix(content, "[Trash Info]\n") {
		t.Errorf("trashinfo missing section header:\n%s", content)
	}
	if !strings.Contains(content, "DeletionDate=2026-03-01T14:30:00\n") {
		t.Errorf("trashinfo missing deletion date:\n%s", content)
	}
	// Spaces must be percent-encoded, separators kept.
	if !strings.Contains(content, "report%202025.pdf") {
		t.Errorf("trashinfo path not escaped:\n%s", content)
	}
}

func TestMoveFreedesktopDirectory(t *testing.T) {
	f := testutil.NewFixture(t)
	src := f.CreateDownloadDir("node_modules")
	f.CreateFile(filepath.Join("Downloads", "node_modules", "left-pad", "index.js"), []byte("js"))

	bin := &Bin{Dir: f.TrashDir, Style: StyleFreedesktop}
	if err := bin.Move(src); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	f.AssertFileNotExists(src)
	f.AssertFileExists(filepath.Join(f.TrashDir, "files", "node_modules", "left-pad", "index.js"))
}

func TestMoveMissingEntry(t *testing.T) {
	f := testutil.NewFixture(t)

	bin := &Bin{Dir: f.TrashDir, Style: StylePlain}
	err := bin.Move(filepath.Join(f.DownloadsDir, "never-existed"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
