//go:build linux

package probe

import (
	"os"
	"syscall"
	"time"
)

// timesFromSys extracts access and creation times from the stat result.
// Linux does not expose a birth time through Stat_t; ctime is the closest
// stand-in and is stable for files that only get read.
func timesFromSys(info os.FileInfo) (created, lastUsed time.Time) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime(), info.ModTime()
	}

	created = time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
	lastUsed = time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
	return created, lastUsed
}
