package platform

import "path/filepath"

// getMacOSInfo returns platform-specific information for macOS
func getMacOSInfo(homeDir, username string) *Info {
	return &Info{
		OS:           MacOS,
		HomeDir:      homeDir,
		Username:     username,
		DownloadsDir: filepath.Join(homeDir, "Downloads"),
		ArchiveDir:   filepath.Join(homeDir, "Archives"),
		TrashDir:     filepath.Join(homeDir, ".Trash"),
		HistoryPath:  filepath.Join(homeDir, "Library/Application Support/downkeep/history.csv"),
		ProtectedPaths: []string{
			"/",
			"/System",
			"/Applications",
			"/Library/System",
			"/bin",
			"/sbin",
			"/usr",
			"/etc",
			"/var",
			"/dev",
			"/private/etc",
			filepath.Join(homeDir, "Library/Application Support"),
			filepath.Join(homeDir, "Library/Preferences"),
		},
	}
}
