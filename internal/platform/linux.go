package platform

import (
	"os"
	"path/filepath"
)

// getLinuxInfo returns platform-specific information for Linux
func getLinuxInfo(homeDir, username string) *Info {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(homeDir, ".local/share")
	}

	return &Info{
		OS:           Linux,
		HomeDir:      homeDir,
		Username:     username,
		DownloadsDir: filepath.Join(homeDir, "Downloads"),
		ArchiveDir:   filepath.Join(homeDir, "Archives"),
		TrashDir:     filepath.Join(dataHome, "Trash"),
		HistoryPath:  filepath.Join(dataHome, "downkeep", "history.csv"),
		ProtectedPaths: []string{
			"/",
			"/bin",
			"/boot",
			"/dev",
			"/etc",
			"/lib",
			"/lib64",
			"/opt",
			"/proc",
			"/root",
			"/run",
			"/sbin",
			"/srv",
			"/sys",
			"/usr",
			"/var",
			filepath.Join(homeDir, ".config"),
			filepath.Join(homeDir, ".local/share"),
		},
	}
}
