package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/coder/curl-inject-opt/util"
)

// FileName is the config file looked up in the user's config directory.
const FileName = "config.yaml"

// LoadFile reads the config file. An explicit path must exist; the default
// location is optional. The returned path is empty when no file was read.
func LoadFile(configPath string) (FileConfig, string, error) {
	var cfg FileConfig
	path := resolveConfigPath(configPath, util.ConfigDir())
	if path == "" {
		return cfg, "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, "", fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, "", fmt.Errorf("failed to parse YAML in %s: %w", path, err)
	}
	return cfg, path, nil
}

func resolveConfigPath(configPath, configDir string) string {
	if configPath != "" {
		return configPath
	}
	if configDir == "" {
		return ""
	}
	path := filepath.Join(configDir, FileName)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
