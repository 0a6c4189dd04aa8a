package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName names the tracer and meter of every jsxtestid package.
const InstrumentationName = "jsxtestid"

// Providers is what a command needs from telemetry for one run.
type Providers struct {
	Tracer trace.Tracer
	Meter  metric.Meter
	Logger *slog.Logger

	// Shutdown flushes exported spans and metrics. It is a no-op when
	// nothing is exported.
	Shutdown func(ctx context.Context) error
}

// Init installs the global tracer and meter providers and builds the run's
// logger. Spans and metrics leave the process over OTLP gRPC only when
// cfg.OTLPEndpoint is set.
func Init(cfg Config) (Providers, error) {
	var (
		tracerProvider trace.TracerProvider = nooptrace.NewTracerProvider()
		meterProvider  metric.MeterProvider = noopmetric.NewMeterProvider()
		flushers       []func(context.Context) error
	)

	if cfg.OTLPEndpoint != "" {
		tp, mp, err := exportingProviders(context.Background(), cfg)
		if err != nil {
			return Providers{}, err
		}

		tracerProvider, meterProvider = tp, mp
		flushers = append(flushers, tp.Shutdown, mp.Shutdown)
	}

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return Providers{
		Tracer:   tracerProvider.Tracer(InstrumentationName),
		Meter:    meterProvider.Meter(InstrumentationName),
		Logger:   NewLogger(cfg),
		Shutdown: flushWithin(cfg.shutdownTimeout(), flushers),
	}, nil
}

// exportingProviders builds SDK providers that ship to cfg.OTLPEndpoint.
func exportingProviders(
	ctx context.Context, cfg Config,
) (*sdktrace.TracerProvider, *sdkmetric.MeterProvider, error) {
	res, err := serviceResource(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}

	if cfg.OTLPInsecure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
	}

	if len(cfg.OTLPHeaders) > 0 {
		traceOpts = append(traceOpts, otlptracegrpc.WithHeaders(cfg.OTLPHeaders))
		metricOpts = append(metricOpts, otlpmetricgrpc.WithHeaders(cfg.OTLPHeaders))
	}

	spans, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("otlp trace exporter: %w", err)
	}

	points, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("otlp metric exporter: %w", err), spans.Shutdown(ctx))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spans),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg)),
	)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(points)),
		sdkmetric.WithResource(res),
	)

	return tp, mp, nil
}

func serviceResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}

	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}

	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.Environment))
	}

	if cfg.Mode != "" {
		attrs = append(attrs, attribute.String("app.mode", string(cfg.Mode)))
	}

	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	return res, nil
}

// flushWithin runs every flusher under one deadline and joins their errors.
func flushWithin(timeout time.Duration, flushers []func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		if len(flushers) == 0 {
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		errs := make([]error, 0, len(flushers))
		for _, flush := range flushers {
			errs = append(errs, flush(ctx))
		}

		return errors.Join(errs...)
	}
}
