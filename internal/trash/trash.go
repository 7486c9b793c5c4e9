// Package trash moves entries into the operating system trash bin so users
// can still recover rarely-used files after disposition.
package trash

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tclaudel/downkeep/internal/platform"
)

// Style selects the on-disk trash layout.
type Style int

const (
	// StyleFreedesktop is the XDG Trash layout (files/ + info/), used on Linux.
	StyleFreedesktop Style = iota
	// StylePlain is a bare directory move, used for macOS ~/.Trash.
	StylePlain
)

// Bin moves entries into a trash directory.
type Bin struct {
	Dir   string
	Style Style

	// now is pinned in tests for deterministic .trashinfo content.
	now func() time.Time
}

// New creates a Bin for the detected platform.
func New(info *platform.Info) *Bin {
	style := StylePlain
	if info.OS == platform.Linux {
		style = StyleFreedesktop
	}
	return &Bin{
		Dir:   info.TrashDir,
		Style: style,
		now:   time.Now,
	}
}

// Move relocates path into the trash bin. The entry keeps its base name,
// with a short unique suffix on collision.
func (b *Bin) Move(path string) error {
	switch b.Style {
	case StyleFreedesktop:
		return b.moveFreedesktop(path)
	default:
		return b.movePlain(path)
	}
}

func (b *Bin) movePlain(path string) error {
	if err := os.MkdirAll(b.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create trash directory: %w", err)
	}

	dest := filepath.Join(b.Dir, trashName(b.Dir, filepath.Base(path)))
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("failed to move %s to trash: %w", path, err)
	}
	return nil
}

func (b *Bin) moveFreedesktop(path string) error {
	filesDir := filepath.Join(b.Dir, "files")
	infoDir := filepath.Join(b.Dir, "info")
	for _, dir := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create trash directory: %w", err)
		}
	}

	name := trashName(filesDir, filepath.Base(path))

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	infoPath := filepath.Join(infoDir, name+".trashinfo")
	info := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		escapePath(abs), b.clock().Format("2006-01-02T15:04:05"))
	if err := os.WriteFile(infoPath, []byte(info), 0600); err != nil {
		return fmt.Errorf("failed to write trash info for %s: %w", path, err)
	}

	if err := os.Rename(path, filepath.Join(filesDir, name)); err != nil {
		os.Remove(infoPath)
		return fmt.Errorf("failed to move %s to trash: %w", path, err)
	}
	return nil
}

func (b *Bin) clock() time.Time {
	if b.now != nil {
		return b.now()
	}
	return time.Now()
}

// trashName picks a destination base name that does not collide with an
// earlier trashed entry of the same name.
func trashName(dir, base string) string {
	if _, err := os.Lstat(filepath.Join(dir, base)); os.IsNotExist(err) {
		return base
	}
	return base + "." + uuid.NewString()[:8]
}

// escapePath percent-encodes a path for a .trashinfo file, keeping the
// separators readable as the Freedesktop trash format requires.
func escapePath(path string) string {
	u := url.URL{Path: path}
	return u.EscapedPath()
}
