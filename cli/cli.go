package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/coder/serpent"

	"github.com/coder/curl-inject-opt/audit"
	"github.com/coder/curl-inject-opt/config"
	"github.com/coder/curl-inject-opt/launcher"
	"github.com/coder/curl-inject-opt/preload"
	"github.com/coder/curl-inject-opt/shim"
)

// Exit codes of the launcher.
const (
	ExitInvalidInput = 1
	ExitExecFailed   = 127
)

// NewCommand creates and returns the root serpent command
func NewCommand() *serpent.Command {
	var cliConfig config.CliConfig
	recorder := &occurrenceRecorder{}

	opts := serpent.OptionSet{
		{
			Name:          "debug",
			Flag:          "debug",
			FlagShorthand: "d",
			Env:           "CURL_INJECT_OPT_DEBUG",
			Description:   "Log every intercepted call and applied option from the target process, and log the launcher at debug level.",
			Value:         &cliConfig.Debug,
		},
		{
			Name:        "print-env",
			Flag:        "print-env",
			Description: "Print the environment variables that would be set and exit without running anything.",
			Value:       &cliConfig.PrintEnv,
		},
		{
			Name:        "no-inherit",
			Flag:        "no-inherit",
			Env:         "CURL_INJECT_OPT_NO_INHERIT",
			Description: "Only inject into the target command, not into processes it spawns.",
			Value:       &cliConfig.NoInherit,
		},
		{
			Name:        "preload-lib",
			Flag:        "preload-lib",
			Env:         "CURL_INJECT_OPT_PRELOAD_LIB",
			Description: "Path of the interception library. A bare file name is looked up by the dynamic loader.",
			Value:       &cliConfig.PreloadLib,
		},
		{
			Name:        "config",
			Flag:        "config",
			Env:         "CURL_INJECT_OPT_CONFIG",
			Description: "Path to YAML config file. Defaults to $XDG_CONFIG_HOME/curl-inject-opt/config.yaml.",
			Value:       &cliConfig.ConfigPath,
		},
		{
			Name:        "log-level",
			Flag:        "log-level",
			Env:         "CURL_INJECT_OPT_LOG_LEVEL",
			Description: "Set log level (error, warn, info, debug). Defaults to warn.",
			Value:       &cliConfig.LogLevel,
		},
		{
			Name:        "log-dir",
			Flag:        "log-dir",
			Env:         "CURL_INJECT_OPT_LOG_DIR",
			Description: "Set a directory to write launcher logs to rather than stderr.",
			Value:       &cliConfig.LogDir,
		},
		{
			Name:        "otel-endpoint",
			Flag:        "otel-endpoint",
			Env:         "CURL_INJECT_OPT_OTEL_ENDPOINT",
			Description: "OTLP/HTTP endpoint (e.g. http://localhost:4318) to export an audit record of each launch to.",
			Value:       &cliConfig.OTelEndpoint,
		},
	}

	return &serpent.Command{
		Use:   "curl-inject-opt [flags] -- command [args...]",
		Short: "Inject libcurl options into an unmodified program",
		Long: `curl-inject-opt runs a command with an interception library preloaded
ahead of libcurl. Every request handle the command performs is configured
with the given options, in the order given, before libcurl runs it.

Examples:
  # Use a client certificate for every request git makes
  curl-inject-opt --client-cert ~/.pki/me.pem --client-key ~/.pki/me.key -- git fetch

  # Route through a SOCKS5 proxy (CURLPROXY_SOCKS5 = 5) without affecting subprocesses
  curl-inject-opt --no-inherit --proxy localhost:1080 --proxy-type 5 -- ./my-app

  # Show what would be passed to the command
  curl-inject-opt --timeout 10000 --verbose 1 --print-env`,
		Options: append(opts, optionFlags(recorder)...),
		Handler: func(inv *serpent.Invocation) error {
			return Run(inv, cliConfig, recorder.Occurrences())
		},
	}
}

// Run launches the target command with the configured options injected. It
// only returns on failure, or after printing the environment.
func Run(inv *serpent.Invocation, cliConfig config.CliConfig, occurrences []launcher.Occurrence) error {
	ctx := inv.Context()

	fileConfig, configFile, err := config.LoadFile(cliConfig.ConfigPath.Value())
	if err != nil {
		return err
	}
	cfg := config.NewAppConfig(cliConfig, fileConfig, configFile, inv.Args)

	logger, err := setupLogging(cfg, inv.Stderr)
	if err != nil {
		return fmt.Errorf("could not set up logging: %w", err)
	}
	if configFile != "" {
		logger.Debug("loaded config file", "path", configFile, "options", len(cfg.FileOptions))
	}

	list, err := launcher.BuildOptionList(append(launcher.FileOccurrences(cfg.FileOptions), occurrences...))
	if err != nil {
		return err
	}

	preloadLib, err := launcher.ResolvePreloadLib(cfg.PreloadLib)
	if err != nil {
		return err
	}

	handoff := launcher.Handoff{
		Options:    list,
		PreloadLib: preloadLib,
		Debug:      cfg.Debug,
		NoInherit:  cfg.NoInherit,
	}
	parent := inv.Environ.ToOS()
	vars := handoff.Variables(parent)

	if cfg.PrintEnv {
		return launcher.PrintEnv(inv.Stdout, vars)
	}
	if len(cfg.TargetCMD) == 0 {
		return launcher.ErrNoCommand
	}

	auditor, err := newAuditor(ctx, logger, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	auditor.AuditInjection(ctx, audit.Injection{
		Command:     cfg.TargetCMD,
		Options:     vars[shim.EnvOptions],
		OptionCount: len(list),
		Preload:     vars[preload.EnvVar],
		NoInherit:   cfg.NoInherit,
		Debug:       cfg.Debug,
	})
	if err := auditor.Close(ctx); err != nil {
		logger.Warn("failed to close auditor", "error", err)
	}

	logger.Debug("executing target command", "command", cfg.TargetCMD)
	return launcher.Exec(cfg.TargetCMD, handoff.Environment(parent))
}

func newAuditor(ctx context.Context, logger *slog.Logger, otelEndpoint string) (audit.Auditor, error) {
	logAuditor := audit.NewLogAuditor(logger)
	if otelEndpoint == "" {
		return logAuditor, nil
	}

	otelAuditor, err := audit.NewOTelAuditor(ctx, logger, otelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenTelemetry auditor: %w", err)
	}
	return audit.NewMultiAuditor(logAuditor, otelAuditor), nil
}

// ExitCode maps an error returned by the command to the process exit status.
// Failures to start the target command are distinguished from bad input.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var execErr *launcher.ExecError
	if errors.As(err, &execErr) {
		return ExitExecFailed
	}
	return ExitInvalidInput
}

// setupLogging creates a slog logger with the specified level
func setupLogging(cfg config.AppConfig, stderr io.Writer) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	default:
		level = slog.LevelWarn // Default to warn if invalid level
	}
	if cfg.Debug {
		level = slog.LevelDebug
	}

	logTarget := stderr

	if cfg.LogDir != "" {
		// Set up the logging directory if it doesn't exist yet
		if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
			return nil, fmt.Errorf("could not set up log dir %s: %w", cfg.LogDir, err)
		}

		// Create a logfile (timestamp and pid to avoid clashes between concurrent launches)
		logFilePath := fmt.Sprintf("curl-inject-opt-%s-%d.log",
			time.Now().Format("2006-01-02_15-04-05"),
			os.Getpid())

		logFile, err := os.Create(filepath.Join(cfg.LogDir, logFilePath))
		if err != nil {
			return nil, fmt.Errorf("could not create log file %s: %w", logFilePath, err)
		}

		// Set the log target to the file rather than stderr.
		logTarget = logFile
	}

	handler := slog.NewTextHandler(logTarget, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler), nil
}
