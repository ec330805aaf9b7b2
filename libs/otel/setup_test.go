package otelx

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("OTEL_SAMPLING_RATIO", "3")

	cfg, err := ConfigFromEnv("availability-service")
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.Enabled {
		t.Fatal("expected tracing disabled")
	}
	if cfg.SampleRatio != 1 {
		t.Fatalf("out-of-range ratio should reset to 1, got %v", cfg.SampleRatio)
	}
	if cfg.ServiceName != "availability-service" || cfg.OTLPEndpoint != "jaeger:4317" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestDisabledSetupStillInstallsPropagator(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	tp, ts := TraceContextStrings(ctx)
	if tp == "" {
		t.Fatal("expected traceparent")
	}
	restored := trace.SpanContextFromContext(ContextWithTraceContext(context.Background(), tp, ts))
	if restored.TraceID() != traceID {
		t.Fatalf("trace id mismatch %s", restored.TraceID())
	}
}
