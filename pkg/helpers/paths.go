package helpers

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/dscontroller/dscontroller/pkg/config"
)

// LogDir is where the log file is written.
func LogDir() string {
	return filepath.Join(xdg.DataHome, config.AppName, config.LogsDir)
}

// LogPath is the full path of the current log file.
func LogPath() string {
	return filepath.Join(LogDir(), config.LogFile)
}
