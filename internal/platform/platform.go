package platform

import (
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform represents the operating system platform
type Platform string

const (
	MacOS   Platform = "darwin"
	Linux   Platform = "linux"
	Unknown Platform = "unknown"
)

// Info contains platform-specific information and paths
type Info struct {
	OS             Platform
	HomeDir        string
	Username       string
	DownloadsDir   string
	ArchiveDir     string
	TrashDir       string
	HistoryPath    string
	ProtectedPaths []string
}

// Detect returns the current platform
func Detect() Platform {
	switch runtime.GOOS {
	case "darwin":
		return MacOS
	case "linux":
		return Linux
	default:
		return Unknown
	}
}

// GetInfo returns platform-specific information
func GetInfo() (*Info, error) {
	platform := Detect()

	currentUser, err := user.Current()
	if err != nil {
		return nil, err
	}

	homeDir := currentUser.HomeDir
	username := currentUser.Username

	var info *Info

	switch platform {
	case MacOS:
		info = getMacOSInfo(homeDir, username)
	case Linux:
		info = getLinuxInfo(homeDir, username)
	default:
		return nil, ErrUnsupportedPlatform
	}

	return info, nil
}

// IsProtectedPath checks if a path must never be dispositioned
func (i *Info) IsProtectedPath(path string) bool {
	for _, protected := range i.ProtectedPaths {
		if path == protected || strings.HasPrefix(path, protected+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Errors
var (
	ErrUnsupportedPlatform = &PlatformError{"unsupported platform"}
)

// PlatformError represents a platform-related error
type PlatformError struct {
	Message string
}

func (e *PlatformError) Error() string {
	return e.Message
}
