// Package infra implements infrastructure concerns (process table, files, helpers, notifications).
package infra

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// EnvHome overrides the per-user data directory.
const EnvHome = "IDLECTL_HOME"

const (
	configFileName   = "config.json"
	lockFileName     = "idlectl.lock"
	settingsFileName = "settings.yaml"
	logFileName      = "idlectl.log"

	// Written by the older auto-shutdown GUI, directly in the home directory.
	legacyConfigFileName = ".auto_shutdown_config.json"
)

// Paths holds every per-user file location.
type Paths struct {
	DataDir      string // Holds config, lock, settings and log
	ConfigPath   string
	LockPath     string
	SettingsPath string
	LogPath      string
	HomeDir      string

	// LegacyConfigPath is read while ConfigPath does not exist. Empty disables the import.
	LegacyConfigPath string
}

// DefaultPaths resolves paths under ~/.idlectl, or $IDLECTL_HOME when set.
func DefaultPaths() Paths {
	home := RealUserHome()
	dir := os.Getenv(EnvHome)
	if dir == "" {
		dir = filepath.Join(home, ".idlectl")
	}
	p := PathsIn(dir, home)
	p.LegacyConfigPath = filepath.Join(home, legacyConfigFileName)
	return p
}

// PathsIn builds paths rooted at a specific data directory (for tests and --data-dir).
func PathsIn(dataDir, home string) Paths {
	return Paths{
		DataDir:      dataDir,
		ConfigPath:   filepath.Join(dataDir, configFileName),
		LockPath:     filepath.Join(dataDir, lockFileName),
		SettingsPath: filepath.Join(dataDir, settingsFileName),
		LogPath:      filepath.Join(dataDir, logFileName),
		HomeDir:      home,
	}
}

// ExpandHome expands ~ to the user's home directory.
func (p Paths) ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(p.HomeDir, path[2:])
	}
	if path == "~" {
		return p.HomeDir
	}
	return path
}

// RealUserHome returns the real user's home directory, even when running under sudo.
// Under sudo, os.UserHomeDir() returns root's home, so we use SUDO_USER to find the real user.
func RealUserHome() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		if u, err := user.Lookup(sudoUser); err == nil {
			return u.HomeDir
		}
	}
	home, _ := os.UserHomeDir()
	return home
}
