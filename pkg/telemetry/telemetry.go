// Package telemetry wires optional OpenTelemetry trace export. When an
// OTLP endpoint is configured, every Dradis API round-trip becomes a
// client span (the dradis package starts spans from the global tracer
// this package installs). Without an endpoint nothing is installed and
// span creation is a no-op.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/dradis-tools/dradis-mcp/pkg/defaults"
)

// Options configures trace export.
type Options struct {
	// Endpoint is the OTLP gRPC endpoint (e.g. "localhost:4317").
	// Empty disables telemetry entirely.
	Endpoint string

	// Insecure uses a plaintext connection (no TLS).
	Insecure bool

	// ConnectionTimeout bounds exporter connection setup (default: 10s).
	ConnectionTimeout time.Duration
}

// Setup installs a global tracer provider exporting to the configured
// OTLP endpoint. It returns a shutdown function that flushes pending
// spans; call it on process exit. With an empty endpoint it installs
// nothing and returns a no-op shutdown.
func Setup(ctx context.Context, opts Options) (func(context.Context) error, error) {
	if opts.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	if opts.ConnectionTimeout == 0 {
		opts.ConnectionTimeout = 10 * time.Second
	}

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}

	connectCtx, cancel := context.WithTimeout(ctx, opts.ConnectionTimeout)
	defer cancel()

	exporter, err := otlptracegrpc.New(connectCtx, exporterOpts...)
	if err != nil {
		return nil, err
	}

	// Fixed resource attributes; not merged with resource.Default to
	// avoid schema URL conflicts.
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(defaults.ToolName),
		semconv.ServiceVersion(defaults.Version),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}
