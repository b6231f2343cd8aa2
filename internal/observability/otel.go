package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"hiredly/internal/config"
	"hiredly/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// Manager owns the OpenTelemetry providers and the application metrics.
type Manager struct {
	config         config.ObservabilityConfig
	logger         *errors.Logger
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	shutdownFuncs  []func(context.Context) error
	promServer     *http.Server
}

// NewManager sets up tracing and metrics. When observability is disabled the
// manager still hands out Metrics backed by a no-op meter.
func NewManager(cfg config.ObservabilityConfig, version string, logger *errors.Logger) (*Manager, error) {
	if logger == nil {
		logger = errors.Discard()
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = version
	}

	m := &Manager{config: cfg, logger: logger}
	if !cfg.Enabled {
		metrics, err := NewMetrics(noop.NewMeterProvider().Meter(cfg.ServiceName), cfg.CustomMetrics)
		if err != nil {
			return nil, err
		}
		m.metrics = metrics
		return m, nil
	}

	res, err := m.newResource()
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	if err := m.initTracing(res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := m.initMetrics(res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Info("Observability initialized",
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"console", cfg.ConsoleOutput,
		"otlp", cfg.OTLP.Enabled,
		"prometheus", cfg.Prometheus.Enabled)
	return m, nil
}

func (m *Manager) newResource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(m.config.ServiceName),
			semconv.ServiceVersion(m.config.ServiceVersion),
			attribute.String("service.instance.id", m.serviceInstanceID()),
		),
	)
}

func (m *Manager) initTracing(res *resource.Resource) error {
	var (
		exporter trace.SpanExporter
		err      error
	)
	switch {
	case m.config.ConsoleOutput:
		opts := []stdouttrace.Option{}
		if m.config.Console.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case m.config.OTLP.Enabled:
		exporter, err = m.createOTLPTraceExporter()
	default:
		exporter = noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(m.config.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	m.tracerProvider = tp
	m.shutdownFuncs = append(m.shutdownFuncs, tp.Shutdown)
	return nil
}

func (m *Manager) initMetrics(res *resource.Resource) error {
	if !m.config.Metrics.Enabled {
		metrics, err := NewMetrics(noop.NewMeterProvider().Meter(m.config.ServiceName), m.config.CustomMetrics)
		if err != nil {
			return err
		}
		m.metrics = metrics
		return nil
	}

	readers, err := m.metricReaders()
	if err != nil {
		return err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)

	m.meterProvider = mp
	m.shutdownFuncs = append(m.shutdownFuncs, mp.Shutdown)

	metrics, err := NewMetrics(mp.Meter(m.config.ServiceName), m.config.CustomMetrics)
	if err != nil {
		return err
	}
	m.metrics = metrics
	return nil
}

func (m *Manager) metricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader
	interval := m.collectionInterval()

	if m.config.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	}

	if m.config.OTLP.Enabled {
		reader, err := m.createOTLPMetricsReader(interval)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, reader)
	}

	if m.config.Prometheus.Enabled {
		reader, mux, err := SetupPrometheusExporter(m.config.Prometheus)
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		readers = append(readers, reader)
		m.promServer = StartPrometheusServer(mux, m.config.Prometheus.Port, m.logger)
		m.shutdownFuncs = append(m.shutdownFuncs, m.promServer.Shutdown)
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}
	return readers, nil
}

// Metrics returns the application instruments. Never nil.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (m *Manager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !m.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}
	opts := []otelhttp.Option{otelhttp.WithTracerProvider(m.tracerProvider)}
	if m.meterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(m.meterProvider))
	}
	return otelhttp.NewMiddleware(m.config.ServiceName, opts...)
}

// Shutdown flushes exporters in reverse setup order.
func (m *Manager) Shutdown(ctx context.Context) error {
	for i := len(m.shutdownFuncs) - 1; i >= 0; i-- {
		if err := m.shutdownFuncs[i](ctx); err != nil {
			return err
		}
	}
	return nil
}

type noOpSpanExporter struct{}

func (noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

func (m *Manager) createOTLPTraceExporter() (trace.SpanExporter, error) {
	otlp := m.config.OTLP
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(otlp.Endpoint)}
	if otlp.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlp.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlp.Headers))
	}
	return otlptracehttp.New(context.Background(), opts...)
}

func (m *Manager) createOTLPMetricsReader(interval time.Duration) (sdkmetric.Reader, error) {
	otlp := m.config.OTLP
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(otlp.Endpoint)}
	if otlp.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlp.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlp.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)), nil
}

func (m *Manager) serviceInstanceID() string {
	if m.config.ServiceInstance != "" {
		return m.config.ServiceInstance
	}
	return "hiredly-1"
}

func (m *Manager) collectionInterval() time.Duration {
	if m.config.Metrics.CollectionInterval > 0 {
		return m.config.Metrics.CollectionInterval
	}
	return 15 * time.Second
}
