package env

import (
	"os"
	"path/filepath"
)

const (
	defaultXDGConfigDirname = ".config"
	defaultXDGDataDirname   = ".local/share"
	defaultTrashDirname     = ".saferm"
)

var (
	SAFERM_CONFIG_PATH string

	SAFERM_LOG_PATH string
)

func init() {
	// https://github.com/charmbracelet/log/issues/35
	os.Setenv("CLICOLOR_FORCE", "1")

	// Follow https://specifications.freedesktop.org/basedir-spec/latest/
	SAFERM_CONFIG_PATH = os.Getenv("SAFERM_CONFIG_PATH")
	if SAFERM_CONFIG_PATH == "" {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			configDir = filepath.Join(homeDir(), defaultXDGConfigDirname)
		}
		SAFERM_CONFIG_PATH = filepath.Join(configDir, "saferm", "config.yaml")
	}

	SAFERM_LOG_PATH = os.Getenv("SAFERM_LOG_PATH")
	if SAFERM_LOG_PATH == "" {
		dataDir := os.Getenv("XDG_DATA_HOME")
		if dataDir == "" {
			dataDir = filepath.Join(homeDir(), defaultXDGDataDirname)
		}
		SAFERM_LOG_PATH = filepath.Join(dataDir, "saferm", "debug.log")
	}
}

// DefaultTrashDir returns the trash root used when the config leaves it unset
func DefaultTrashDir() string {
	return filepath.Join(homeDir(), defaultTrashDirname)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	return home
}
