// Package probe reads filesystem usage metadata for a single path.
package probe

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrNotFound reports that the probed path no longer exists. Callers treat
// this as steady-state: the entry vanished between listing and probing.
var ErrNotFound = errors.New("probe: path not found")

// Metadata holds the filesystem timestamps tracked per entry.
type Metadata struct {
	CreatedAt  time.Time
	LastUsedAt time.Time
	Size       int64
	IsDir      bool
}

// Stat returns creation and last-access metadata for path. It has no side
// effects and does not follow symlinks.
func Stat(path string) (Metadata, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Metadata{}, ErrNotFound
		}
		return Metadata{}, fmt.Errorf("probe %s: %w", path, err)
	}

	created, lastUsed := timesFromSys(info)

	return Metadata{
		CreatedAt:  created,
		LastUsedAt: lastUsed,
		Size:       info.Size(),
		IsDir:      info.IsDir(),
	}, nil
}
