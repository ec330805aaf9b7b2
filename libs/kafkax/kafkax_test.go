package kafkax

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers %v", got)
	}
	if SplitBrokers("") != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestExtractEventMetaFallbacks(t *testing.T) {
	msg := NewEventMessage("evt-1", "booking.created.v1", "booking-9", []byte(`{}`))
	meta := ExtractEventMeta(msg)
	if meta.EventID != "evt-1" || meta.EventType != "booking.created.v1" {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if msg.Topic != "booking.created.v1" || string(msg.Key) != "booking-9" {
		t.Fatalf("unexpected topic/key %q/%q", msg.Topic, msg.Key)
	}

	bare := kafka.Message{Topic: "user.profile.updated.v1", Key: []byte("user-1")}
	meta = ExtractEventMeta(bare)
	if meta.EventID != "user-1" || meta.EventType != "user.profile.updated.v1" {
		t.Fatalf("expected key/topic fallback, got %+v", meta)
	}
}

func TestTraceHeadersRoundTrip(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	headers := InjectTraceHeaders(ctx, nil)
	if HeaderValue(headers, "traceparent") == "" {
		t.Fatalf("expected traceparent header, got %v", headers)
	}

	extracted := trace.SpanContextFromContext(ExtractTraceContext(context.Background(), kafka.Message{Headers: headers}))
	if extracted.TraceID() != traceID {
		t.Fatalf("trace id mismatch: %s", extracted.TraceID())
	}
}
