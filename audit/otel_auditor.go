package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
)

const (
	instrumentationName = "github.com/coder/curl-inject-opt/audit"
	serviceName         = "curl-inject-opt"
)

// OTelAuditor exports injections as OpenTelemetry log records.
type OTelAuditor struct {
	provider *sdklog.LoggerProvider
	emitter  otellog.Logger
	logger   *slog.Logger
}

// NewOTelAuditor creates an OTelAuditor exporting over OTLP/HTTP to
// endpoint, a URL such as http://localhost:4318.
func NewOTelAuditor(ctx context.Context, logger *slog.Logger, endpoint string) (*OTelAuditor, error) {
	exporter, err := otlploghttp.New(ctx, otlploghttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, fmt.Errorf("create OTLP log exporter: %w", err)
	}
	return newOTelAuditor(logger, sdklog.NewBatchProcessor(exporter))
}

func newOTelAuditor(logger *slog.Logger, processor sdklog.Processor) (*OTelAuditor, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(processor),
	)

	return &OTelAuditor{
		provider: provider,
		emitter:  provider.Logger(instrumentationName),
		logger:   logger,
	}, nil
}

// AuditInjection emits one log record for inj.
func (a *OTelAuditor) AuditInjection(ctx context.Context, inj Injection) {
	var record otellog.Record
	record.SetTimestamp(time.Now())
	record.SetSeverity(otellog.SeverityInfo)
	record.SetSeverityText("INFO")
	record.SetBody(otellog.StringValue("curl options injected"))
	record.AddAttributes(
		otellog.String("command", strings.Join(inj.Command, " ")),
		otellog.String("options", inj.Options),
		otellog.Int("option_count", inj.OptionCount),
		otellog.String("preload", inj.Preload),
		otellog.Bool("no_inherit", inj.NoInherit),
		otellog.Bool("debug", inj.Debug),
	)
	a.emitter.Emit(ctx, record)
}

// Close flushes and shuts down the exporter. Export failures are logged,
// not returned.
func (a *OTelAuditor) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := a.provider.Shutdown(ctx); err != nil {
		a.logger.Warn("failed to flush audit log records", "error", err)
	}
	return nil
}
