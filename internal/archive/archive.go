// Package archive packs dispositioned entries into per-entry zip containers
// inside the configured archive directory.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Writer produces one compressed container per archived entry.
type Writer struct {
	Dir string

	// now is pinned in tests for deterministic container names.
	now func() time.Time
}

// New creates a Writer that stores containers under dir.
func New(dir string) *Writer {
	return &Writer{Dir: dir, now: time.Now}
}

// Archive packs path (a file or a directory tree) into a new container and
// removes the original only after the container is fully written. It
// returns the container path.
func (w *Writer) Archive(path string) (string, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	containerPath := filepath.Join(w.Dir, w.containerName(filepath.Base(path)))
	if err := w.writeContainer(containerPath, path); err != nil {
		os.Remove(containerPath)
		return "", err
	}

	if err := os.RemoveAll(path); err != nil {
		return "", fmt.Errorf("archived %s but failed to remove the original: %w", path, err)
	}
	return containerPath, nil
}

func (w *Writer) containerName(base string) string {
	stamp := w.clock().Format("20060102")
	return fmt.Sprintf("%s-%s-%s.zip", base, stamp, uuid.NewString()[:8])
}

func (w *Writer) clock() time.Time {
	if w.now != nil {
		return w.now()
	}
	return time.Now()
}

func (w *Writer) writeContainer(containerPath, src string) error {
	out, err := os.Create(containerPath)
	if err != nil {
		return fmt.Errorf("failed to create archive container: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	info, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	base := filepath.Base(src)
	if info.IsDir() {
		err = filepath.Walk(src, func(path string, fi os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if fi.IsDir() {
				return nil
			}
			rel, relErr := filepath.Rel(src, path)
			if relErr != nil {
				return relErr
			}
			return addEntry(zw, path, filepath.ToSlash(filepath.Join(base, rel)), fi)
		})
	} else {
		err = addEntry(zw, src, base, info)
	}
	if err != nil {
		zw.Close()
		return fmt.Errorf("failed to pack %s: %w", src, err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive container: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("failed to sync archive container: %w", err)
	}
	return nil
}

func addEntry(zw *zip.Writer, path, name string, info os.FileInfo) error {
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = strings.TrimPrefix(name, "/")
	hdr.Method = zip.Deflate

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(dst, src)
	return err
}
