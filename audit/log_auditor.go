package audit

import (
	"context"
	"log/slog"
	"strings"
)

// LogAuditor implements Auditor by logging to slog
type LogAuditor struct {
	logger *slog.Logger
}

// NewLogAuditor creates a new LogAuditor
func NewLogAuditor(logger *slog.Logger) *LogAuditor {
	return &LogAuditor{
		logger: logger,
	}
}

// AuditInjection logs the injection using structured logging
func (a *LogAuditor) AuditInjection(ctx context.Context, inj Injection) {
	a.logger.InfoContext(ctx, "INJECT",
		"command", strings.Join(inj.Command, " "),
		"options", inj.Options,
		"option_count", inj.OptionCount,
		"preload", inj.Preload,
		"no_inherit", inj.NoInherit,
		"debug", inj.Debug)
}

func (a *LogAuditor) Close(context.Context) error {
	return nil
}
