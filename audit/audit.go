package audit

import "context"

// Injection describes one launch of a target command with injected options.
type Injection struct {
	Command []string
	// Options is the encoded option list as placed in the environment.
	Options     string
	OptionCount int
	Preload     string
	NoInherit   bool
	Debug       bool
}

// Auditor records injections.
type Auditor interface {
	// AuditInjection records inj. It must not block the launch on failure.
	AuditInjection(ctx context.Context, inj Injection)
	// Close flushes pending records. It is called before the launcher
	// replaces its process image.
	Close(ctx context.Context) error
}
