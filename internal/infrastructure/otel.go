package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"sumocli/internal/config"
	"sumocli/pkg/contracts"
)

const (
	ServiceName    = "banzuke"
	ServiceVersion = contracts.Version
	MeterName      = "sumocli"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "file", "none"
	TraceFile      string
	SampleRatio    float64
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	// Registry receives every OTel instrument through the Prometheus exporter
	Registry *prom.Registry
	Logger   *slog.Logger

	traceOut io.Closer
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    env,
		TraceExporter:  "none",
		SampleRatio:    1.0,
	}
}

// OTelConfigFrom maps the telemetry section of the application config
func OTelConfigFrom(cfg config.TelemetryConfig) *OTelConfig {
	out := DefaultOTelConfig()
	out.TraceExporter = cfg.TraceExporter
	out.TraceFile = cfg.TraceFile
	return out
}

// InitializeOTel sets up tracing and metrics and installs them globally
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx := context.Background()

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{Logger: logger}

	if err := initializeTracing(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.DebugContext(ctx, "otel_initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("trace_exporter", cfg.TraceExporter))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return fmt.Errorf("failed to create trace directory: %w", err)
		}
		f, ferr := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if ferr != nil {
			return fmt.Errorf("failed to open trace file: %w", ferr)
		}
		providers.traceOut = f
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(f))
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.DebugContext(ctx, "tracing_initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))
	return nil
}

// initializeMetrics routes OTel instruments into a private Prometheus registry
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := prom.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.Registry = registry
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetMeterProvider(mp)

	providers.Logger.DebugContext(ctx, "metrics_initialized", slog.String("exporter", "prometheus"))
	return nil
}

// WriteMetrics writes the registry to path in the node exporter textfile format
func (p *OTelProviders) WriteMetrics(path string) error {
	if p.Registry == nil {
		return errors.New("metrics are not initialized")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prom.WriteToTextfile(path, p.Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// PipelineMetrics holds the counters of a pipeline run
type PipelineMetrics struct {
	StageExecutions metric.Int64Counter
	StageDuration   metric.Float64Histogram
	StageErrors     metric.Int64Counter

	RosterSlots         metric.Int64Counter
	RosterDuplicates    metric.Int64Counter
	ProfilesFetched     metric.Int64Counter
	ProfileFailures     metric.Int64Counter
	ConsistencyFailures metric.Int64Counter
	Matchups            metric.Int64Counter
	AwardRows           metric.Int64Counter
}

// CreatePipelineMetrics creates the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.StageExecutions, "stage_executions_total", "Total number of pipeline stage executions"},
		{&m.StageErrors, "stage_errors_total", "Total number of failed pipeline stages"},
		{&m.RosterSlots, "roster_slots_total", "Roster slots collected"},
		{&m.RosterDuplicates, "roster_duplicates_total", "Roster slots flagged as duplicate positions"},
		{&m.ProfilesFetched, "profiles_fetched_total", "Profiles fetched"},
		{&m.ProfileFailures, "profile_failures_total", "Identities that ran out of navigation attempts"},
		{&m.ConsistencyFailures, "consistency_failures_total", "Cross-source consistency failures"},
		{&m.Matchups, "matchups_total", "Matchup rows scraped"},
		{&m.AwardRows, "award_rows_total", "Champion and special prize rows scraped"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	duration, err := meter.Float64Histogram(
		"stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	m.StageDuration = duration
	return m, nil
}

// Shutdown flushes and stops the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if p.traceOut != nil {
		if err := p.traceOut.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
	}

	return errors.Join(errs...)
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// RecordStageMetrics records one stage execution
func RecordStageMetrics(ctx context.Context, metrics *PipelineMetrics, operationID, stageID string, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation.id", operationID),
		attribute.String("stage.id", stageID),
	}
	metrics.StageExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))

	status := attribute.String("status", "success")
	if err != nil {
		status = attribute.String("status", "failure")
		metrics.StageErrors.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.String("error.type", fmt.Sprintf("%T", err)))...))
	}
	metrics.StageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(append(attrs, status)...))
}
