// Package otel configures the global OpenTelemetry tracer provider from the
// standard OTEL_* environment variables.
package otel

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"
)

const defaultServiceName = "studocs"

// settings is the subset of OTEL_* variables the portal honours.
type settings struct {
	Disabled    bool
	ServiceName string
	Protocol    string
	Endpoint    string
	Sampler     string
	SamplerArg  string
}

func settingsFromEnv() settings {
	s := settings{
		Disabled:    os.Getenv("OTEL_SDK_DISABLED") == "true",
		ServiceName: getEnv("OTEL_SERVICE_NAME", defaultServiceName),
		Protocol:    getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
		Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"),
		Sampler:     getEnv("OTEL_TRACES_SAMPLER", "parentbased_traceidratio"),
		SamplerArg:  getEnv("OTEL_TRACES_SAMPLER_ARG", "1.0"),
	}
	if s.Endpoint == "" {
		s.Endpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	return s
}

// Shutdown flushes and stops the tracer provider.
type Shutdown func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init installs the W3C propagators and, unless the SDK is disabled, an
// OTLP-exporting tracer provider. An exporter that cannot be built is
// logged and tracing stays off; the portal runs either way.
func Init(ctx context.Context, log *zap.Logger) (Shutdown, error) {
	if log == nil {
		log = zap.NewNop()
	}
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	s := settingsFromEnv()
	if s.Disabled {
		log.Info("tracing_configured", zap.Bool("tracing_enabled", false))
		return noopShutdown, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String(s.ServiceName)),
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := newExporter(ctx, s.Protocol)
	if err != nil {
		log.Error("tracing_init_failed", zap.Error(err))
		return noopShutdown, nil
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(s.Sampler, s.SamplerArg)),
	)
	otel.SetTracerProvider(tp)

	log.Info("tracing_configured",
		zap.Bool("tracing_enabled", true),
		zap.String("service_name", s.ServiceName),
		zap.String("otlp_protocol", s.Protocol),
		zap.String("otlp_endpoint", s.Endpoint),
		zap.String("sampler", s.Sampler),
		zap.String("sampler_arg", s.SamplerArg),
	)
	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, protocol string) (*otlptrace.Exporter, error) {
	switch protocol {
	case "grpc":
		return otlptracegrpc.New(ctx)
	case "http/protobuf":
		return otlptracehttp.New(ctx)
	}
	return nil, fmt.Errorf("unsupported OTLP protocol: %s", protocol)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// newSampler maps OTEL_TRACES_SAMPLER names onto SDK samplers. Unknown
// names and unparsable ratios fall back to sampling everything.
func newSampler(name, arg string) sdktrace.Sampler {
	ratio := func() float64 {
		r, err := strconv.ParseFloat(arg, 64)
		if err != nil || r < 0 || r > 1 {
			return 1.0
		}
		return r
	}

	switch name {
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "traceidratio":
		return sdktrace.TraceIDRatioBased(ratio())
	case "parentbased_always_on":
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case "parentbased_always_off":
		return sdktrace.ParentBased(sdktrace.NeverSample())
	case "parentbased_traceidratio":
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio()))
	default:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}
