package config

import (
	"github.com/coder/serpent"
)

// DefaultLogLevel applies when neither the CLI nor the config file set one.
const DefaultLogLevel = "warn"

// CliConfig holds the launcher's ambient flags. Per-option flags are
// recorded separately so their relative order survives parsing.
type CliConfig struct {
	ConfigPath   serpent.String `yaml:"-"`
	LogLevel     serpent.String `yaml:"log_level"`
	LogDir       serpent.String `yaml:"log_dir"`
	Debug        serpent.Bool   `yaml:"debug"`
	PrintEnv     serpent.Bool   `yaml:"-"`
	NoInherit    serpent.Bool   `yaml:"no_inherit"`
	PreloadLib   serpent.String `yaml:"preload_lib"`
	OTelEndpoint serpent.String `yaml:"otel_endpoint"`
}

// FileOption is one entry of the config file's options list.
type FileOption struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// FileConfig is the on-disk YAML configuration.
type FileConfig struct {
	LogLevel     string       `yaml:"log_level"`
	LogDir       string       `yaml:"log_dir"`
	Debug        bool         `yaml:"debug"`
	NoInherit    bool         `yaml:"no_inherit"`
	PreloadLib   string       `yaml:"preload_lib"`
	OTelEndpoint string       `yaml:"otel_endpoint"`
	Options      []FileOption `yaml:"options"`
}

type AppConfig struct {
	ConfigFile   string
	LogLevel     string
	LogDir       string
	Debug        bool
	PrintEnv     bool
	NoInherit    bool
	PreloadLib   string
	OTelEndpoint string
	// FileOptions are applied before any option given on the command line.
	FileOptions []FileOption
	TargetCMD   []string
}

// NewAppConfig applies CLI over file config (CLI wins).
func NewAppConfig(cli CliConfig, file FileConfig, configFile string, targetCMD []string) AppConfig {
	cfg := AppConfig{
		ConfigFile:   configFile,
		LogLevel:     cli.LogLevel.Value(),
		LogDir:       cli.LogDir.Value(),
		Debug:        cli.Debug.Value(),
		PrintEnv:     cli.PrintEnv.Value(),
		NoInherit:    cli.NoInherit.Value(),
		PreloadLib:   cli.PreloadLib.Value(),
		OTelEndpoint: cli.OTelEndpoint.Value(),
		FileOptions:  file.Options,
		TargetCMD:    targetCMD,
	}

	// Fill from file where CLI left zero values
	if cfg.LogLevel == "" {
		cfg.LogLevel = file.LogLevel
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogDir == "" {
		cfg.LogDir = file.LogDir
	}
	if !cfg.Debug && file.Debug {
		cfg.Debug = true
	}
	if !cfg.NoInherit && file.NoInherit {
		cfg.NoInherit = true
	}
	if cfg.PreloadLib == "" {
		cfg.PreloadLib = file.PreloadLib
	}
	if cfg.OTelEndpoint == "" {
		cfg.OTelEndpoint = file.OTelEndpoint
	}

	return cfg
}
