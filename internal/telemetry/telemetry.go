// Package telemetry wires OpenTelemetry tracing for the compile-attach
// pipeline, exporting to Jaeger when enabled.
package telemetry

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer

// Init sets up the global tracer provider. Passing an empty jaegerEndpoint
// leaves tracing disabled and GetTracer falls back to a no-op tracer.
func Init(serviceName, jaegerEndpoint string) error {
	if jaegerEndpoint == "" {
		return nil
	}

	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerEndpoint)))
	if err != nil {
		return err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String("1.0.0"),
		),
	)
	if err != nil {
		return err
	}

	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tracer = otel.Tracer(serviceName)
	return nil
}

// GetTracer returns the global tracer, falling back to a package-named
// no-op tracer before Init has run.
func GetTracer() trace.Tracer {
	if tracer == nil {
		return otel.Tracer("bpf-filter")
	}
	return tracer
}

// StartCompile starts a span around a predicate-to-program compilation.
func StartCompile(ctx context.Context, filterName string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "filter.compile", trace.WithAttributes(attribute.String("filter.name", filterName)))
}

// StartAttach starts a span around loading and attaching a compiled program.
func StartAttach(ctx context.Context, filterName string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "filter.attach", trace.WithAttributes(attribute.String("filter.name", filterName)))
}

// InjectTraceContext injects trace context into an outgoing admin-API request's headers.
func InjectTraceContext(ctx context.Context, req *http.Request) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
}

// ExtractTraceContext extracts trace context from an incoming admin-API request's headers.
func ExtractTraceContext(ctx context.Context, req *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(req.Header))
}
