// Package tracing wires an OpenTelemetry tracer provider for the HTTP
// servers. Spans go to stdout; this is a local debugging aid.
package tracing

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type Config struct {
	Enabled     bool
	ServiceName string
	Environment string
	SampleRatio float64
	// 为空时写 stdout
	Writer io.Writer
}

// Init 未启用时返回空操作的 shutdown
func Init(ctx context.Context, l *zap.Logger, c Config) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !c.Enabled {
		return noop, nil
	}
	w := c.Writer
	if w == nil {
		w = os.Stdout
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return noop, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", c.ServiceName),
		attribute.String("deployment.environment", c.Environment),
	))
	if err != nil {
		l.Warn("otel resource init failed (continuing)", zap.Error(err))
	}
	ratio := c.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	l.Info("otel tracing initialized", zap.String("service", c.ServiceName), zap.Float64("ratio", ratio))
	return tp.Shutdown, nil
}
