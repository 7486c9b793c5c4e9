//go:build darwin

package probe

import (
	"os"
	"syscall"
	"time"
)

// timesFromSys extracts access and birth times from the stat result.
func timesFromSys(info os.FileInfo) (created, lastUsed time.Time) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime(), info.ModTime()
	}

	created = time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec)
	lastUsed = time.Unix(stat.Atimespec.Sec, stat.Atimespec.Nsec)
	return created, lastUsed
}
