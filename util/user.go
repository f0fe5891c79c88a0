package util

import (
	"os"
	"os/user"
	"path/filepath"
)

const configDirName = "curl-inject-opt"

// ConfigDir returns the directory holding the launcher's config file. When
// running under sudo the invoking user's directory is used, not root's.
func ConfigDir() string {
	// Only consider SUDO_USER if we're actually running with elevated privileges
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && os.Geteuid() == 0 && sudoUser != "root" {
		u, err := user.Lookup(sudoUser)
		if err == nil {
			return configDirFor(u.HomeDir, "")
		}
	}
	return configDirFor(homeDir(), os.Getenv("XDG_CONFIG_HOME"))
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	if u, err := user.Current(); err == nil {
		return u.HomeDir
	}
	return ""
}

// configDirFor uses XDG_CONFIG_HOME if set, otherwise falls back to ~/.config
func configDirFor(home, xdgConfigHome string) string {
	if xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, configDirName)
	}
	return filepath.Join(home, ".config", configDirName)
}
