// Package telemetry wires OpenTelemetry traces, metrics and logs, the
// otelgorm database plugin and Pyroscope profiling. Every part is a no-op
// unless enabled.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// ServiceVersion is reported on every exported signal
var ServiceVersion = "dev"

const shutdownTimeout = 10 * time.Second

// Config holds the settings shared by all exporters
type Config struct {
	Enabled           bool
	CollectorEndpoint string
	ServiceName       string
	Insecure          bool
	SamplingRatio     float64       // traces only
	ExportInterval    time.Duration // metrics only
}

func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

func shutdownWithTimeout(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		return fmt.Errorf("failed to shutdown %s provider: %w", name, err)
	}
	return nil
}
