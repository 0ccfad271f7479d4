package telemetry

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	promclient "github.com/prometheus/client_golang/prometheus"
)

// Global telemetry handles
var (
	// Tracer for distributed tracing
	Tracer = otel.Tracer("github.com/finlens/finlens")

	// Meter for metrics
	Meter = otel.Meter("github.com/finlens/finlens")

	// PrometheusRegistry for Prometheus scraping. The OTEL exporter
	// registers itself with this registry.
	PrometheusRegistry *promclient.Registry

	// Metrics
	ScansStarted        metric.Int64Counter
	ScansCompleted      metric.Int64Counter
	ScansFailed         metric.Int64Counter
	TasksFailed         metric.Int64Counter
	ResourcesDiscovered metric.Int64Counter
	ViolationsFound     metric.Int64Counter
	ScanDuration        metric.Float64Histogram
	ScanRiskScore       metric.Int64Gauge
	MonthlyWaste        metric.Float64Gauge
)

// Config for OTEL initialization
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTELEndpoint   string // e.g., "localhost:4317"
	Insecure       bool   // true for local dev
}

// InitOTEL initializes OpenTelemetry with traces and metrics
func InitOTEL(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	cfg = applyConfigDefaults(cfg)

	res, err := createOTELResource(cfg)
	if err != nil {
		return nil, err
	}

	return setupProviders(ctx, cfg, res)
}

func applyConfigDefaults(cfg Config) Config {
	if cfg.OTELEndpoint == "" {
		cfg.OTELEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
		if cfg.OTELEndpoint == "" {
			cfg.OTELEndpoint = "localhost:4317"
		}
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = "finlens"
	}

	return cfg
}

func createOTELResource(cfg Config) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

func setupProviders(ctx context.Context, cfg Config, res *resource.Resource) (func(context.Context) error, error) {
	traceShutdown, err := setupTraceProvider(ctx, cfg, res)
	if err != nil {
		return nil, fmt.Errorf("failed to setup traces: %w", err)
	}

	metricShutdown, err := setupMetricProvider(res)
	if err != nil {
		_ = traceShutdown(ctx)
		return nil, fmt.Errorf("failed to setup metrics: %w", err)
	}

	if err := initMetrics(); err != nil {
		_ = traceShutdown(ctx)
		_ = metricShutdown(ctx)
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return func(ctx context.Context) error {
		var err error
		if e := traceShutdown(ctx); e != nil {
			err = fmt.Errorf("trace shutdown failed: %w", e)
		}
		if e := metricShutdown(ctx); e != nil && err == nil {
			err = fmt.Errorf("metric shutdown failed: %w", e)
		}
		return err
	}, nil
}

func setupTraceProvider(ctx context.Context, cfg Config, res *resource.Resource) (func(context.Context) error, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.OTELEndpoint),
	}

	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithDialOption(
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		))
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	Tracer = provider.Tracer("github.com/finlens/finlens")

	return provider.Shutdown, nil
}

// setupMetricProvider configures a pull-based Prometheus exporter. The
// metrics endpoint serves this registry.
func setupMetricProvider(res *resource.Resource) (func(context.Context) error, error) {
	registry := promclient.NewRegistry()
	PrometheusRegistry = registry

	prometheusExporter, err := prometheus.New(
		prometheus.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(prometheusExporter),
	)

	otel.SetMeterProvider(provider)
	Meter = provider.Meter("github.com/finlens/finlens")

	return provider.Shutdown, nil
}

func initMetrics() error {
	if err := initCounters(); err != nil {
		return err
	}
	if err := initHistograms(); err != nil {
		return err
	}
	return initGauges()
}

func initCounters() error {
	var err error

	ScansStarted, err = Meter.Int64Counter("finlens.scans.started.total",
		metric.WithDescription("Total number of scans started"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create scans_started counter: %w", err)
	}

	ScansCompleted, err = Meter.Int64Counter("finlens.scans.completed.total",
		metric.WithDescription("Total number of scans completed successfully"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create scans_completed counter: %w", err)
	}

	ScansFailed, err = Meter.Int64Counter("finlens.scans.failed.total",
		metric.WithDescription("Total number of scans that ended in failure"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create scans_failed counter: %w", err)
	}

	TasksFailed, err = Meter.Int64Counter("finlens.tasks.failed.total",
		metric.WithDescription("Total number of discovery tasks that failed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create tasks_failed counter: %w", err)
	}

	ResourcesDiscovered, err = Meter.Int64Counter("finlens.resources.discovered.total",
		metric.WithDescription("Total number of resources discovered"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create resources_discovered counter: %w", err)
	}

	ViolationsFound, err = Meter.Int64Counter("finlens.violations.found.total",
		metric.WithDescription("Total number of rule violations found"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create violations_found counter: %w", err)
	}

	return nil
}

func initHistograms() error {
	var err error

	ScanDuration, err = Meter.Float64Histogram("finlens.scan.duration.seconds",
		metric.WithDescription("Duration of full scan runs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create scan_duration histogram: %w", err)
	}

	return nil
}

func initGauges() error {
	var err error

	ScanRiskScore, err = Meter.Int64Gauge("finlens.scan.risk.score",
		metric.WithDescription("Overall risk score of the most recent scan"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create scan_risk_score gauge: %w", err)
	}

	MonthlyWaste, err = Meter.Float64Gauge("finlens.waste.monthly.usd",
		metric.WithDescription("Estimated monthly waste in USD from the most recent scan"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create monthly_waste gauge: %w", err)
	}

	return nil
}
