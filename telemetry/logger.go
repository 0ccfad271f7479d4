package telemetry

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTELHook adds trace and span IDs to every log entry
type OTELHook struct{}

func (h OTELHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return
	}

	e.Str("trace_id", span.SpanContext().TraceID().String())
	e.Str("span_id", span.SpanContext().SpanID().String())

	if level == zerolog.ErrorLevel {
		span.SetStatus(codes.Error, msg)
	}
}

// Logger wraps zerolog with OTEL integration
type Logger struct {
	zerolog.Logger
}

// NewLogger creates a new logger with OTEL hooks
func NewLogger(service string) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", service).
		Logger().
		Hook(OTELHook{})

	return &Logger{Logger: logger}
}

// WithContext returns a logger with context (for trace propagation)
func (l *Logger) WithContext(ctx context.Context) *zerolog.Logger {
	logger := l.Logger.With().Ctx(ctx).Logger()
	return &logger
}

// Convenience methods for scan lifecycle logging

func (l *Logger) LogScanStart(ctx context.Context, scanID string, regions []string, taskCount int) {
	l.WithContext(ctx).Info().
		Str("scan_id", scanID).
		Strs("regions", regions).
		Int("task_count", taskCount).
		Msg("scan started")
}

func (l *Logger) LogScanComplete(ctx context.Context, scanID string, resources, violations int, durationMS float64) {
	l.WithContext(ctx).Info().
		Str("scan_id", scanID).
		Int("resources", resources).
		Int("violations", violations).
		Float64("duration_ms", durationMS).
		Msg("scan completed")
}

func (l *Logger) LogScanFailed(ctx context.Context, scanID string, err error) {
	l.WithContext(ctx).Error().
		Err(err).
		Str("scan_id", scanID).
		Msg("scan failed")
}

func (l *Logger) LogTaskFailed(ctx context.Context, scanID, region, resourceType string, err error) {
	l.WithContext(ctx).Warn().
		Err(err).
		Str("scan_id", scanID).
		Str("region", region).
		Str("resource_type", resourceType).
		Msg("discovery task failed")
}

func (l *Logger) LogStageFailed(ctx context.Context, scanID, stage string, err error) {
	l.WithContext(ctx).Warn().
		Err(err).
		Str("scan_id", scanID).
		Str("stage", stage).
		Msg("enrichment stage failed")
}

func (l *Logger) LogStorageError(ctx context.Context, operation string, err error) {
	l.WithContext(ctx).Error().
		Err(err).
		Str("operation", operation).
		Msg("storage operation failed")
}
