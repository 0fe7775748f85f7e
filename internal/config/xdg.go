// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const appName = "typetest"

// Environment overrides, also read from a .env file by LoadEnv.
const (
	EnvConfigDir = "TYPETEST_CONFIG_DIR"
	EnvDataDir   = "TYPETEST_DATA_DIR"
	EnvDebug     = "TYPETEST_DEBUG"
)

// LoadEnv loads variables from a .env file in the working directory, if present.
// Variables already set in the environment win.
func LoadEnv() {
	_ = godotenv.Load()
}

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// ConfigDir returns the application config directory.
func ConfigDir() string {
	if v := os.Getenv(EnvConfigDir); v != "" {
		return v
	}
	return filepath.Join(XDGConfigHome(), appName)
}

// DataDir returns the application data directory.
func DataDir() string {
	if v := os.Getenv(EnvDataDir); v != "" {
		return v
	}
	return filepath.Join(XDGDataHome(), appName)
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DefaultLanguageDir returns the directory holding language packs.
func DefaultLanguageDir() string {
	return filepath.Join(ConfigDir(), "languages")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), appName+".db")
}

// DefaultLogPath returns the debug log path.
func DefaultLogPath() string {
	return filepath.Join(DataDir(), "debug.log")
}

// DebugEnabled reports whether debug logging was requested.
func DebugEnabled() bool {
	switch os.Getenv(EnvDebug) {
	case "", "0", "false":
		return false
	default:
		return true
	}
}
