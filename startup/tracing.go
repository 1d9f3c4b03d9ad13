package startup

import (
	"context"

	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "roombuddy"

// newTracerProvider exports to Jaeger when an address is configured and
// otherwise records nothing.
func newTracerProvider(address string) (trace.TracerProvider, func(context.Context) error, error) {
	if address == "" {
		return trace.NewNoopTracerProvider(), func(context.Context) error { return nil }, nil
	}
	exp, err := newExporter(address)
	if err != nil {
		return nil, nil, err
	}
	tp, err := newTraceProvider(exp)
	if err != nil {
		return nil, nil, err
	}
	return tp, tp.Shutdown, nil
}

func newExporter(address string) (*jaeger.Exporter, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(address)))
	if err != nil {
		return nil, err
	}
	return exp, nil
}

func newTraceProvider(exp sdktrace.SpanExporter) (*sdktrace.TracerProvider, error) {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(r),
	), nil
}
