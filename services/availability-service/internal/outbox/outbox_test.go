package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/md-rashed-zaman/tutorslots/libs/kafkax"
	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/availability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func TestBookingEvents(t *testing.T) {
	start := time.Date(2026, 6, 15, 8, 0, 0, 0, time.UTC)
	b := availability.Booking{
		ID:         "b1",
		TutorID:    "tutor-1",
		StudentID:  "student-1",
		Status:     availability.StatusConfirmed,
		CreatedAt:  start.Add(-48 * time.Hour),
		TutorStart: start,
		TutorEnd:   start.Add(time.Hour),
	}

	created, err := BookingCreated(b)
	if err != nil {
		t.Fatalf("BookingCreated: %v", err)
	}
	if created.EventType != EventBookingCreated || created.AggregateID != "tutor-1" || created.AggregateType != AggregateBooking {
		t.Fatalf("unexpected event %+v", created)
	}

	changed, err := BookingStatusChanged(b, availability.StatusPending)
	if err != nil {
		t.Fatalf("BookingStatusChanged: %v", err)
	}
	var payload BookingPayload
	if err := json.Unmarshal(changed.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.PreviousStatus != "pending" || payload.Status != "confirmed" || !payload.StartTime.Equal(start) {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestToMessageCarriesMetaAndTrace(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceparent := "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	msg := toMessage(context.Background(), Record{
		ID:          7,
		EventID:     "evt-1",
		AggregateID: "tutor-1",
		EventType:   EventBookingCreated,
		Payload:     []byte(`{}`),
		Traceparent: traceparent,
	})

	if msg.Topic != EventBookingCreated || string(msg.Key) != "tutor-1" {
		t.Fatalf("unexpected routing topic=%q key=%q", msg.Topic, msg.Key)
	}
	meta := kafkax.ExtractEventMeta(msg)
	if meta.EventID != "evt-1" || meta.EventType != EventBookingCreated {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if got := kafkax.HeaderValue(msg.Headers, "traceparent"); got != traceparent {
		t.Fatalf("expected traceparent header %q, got %q", traceparent, got)
	}
}
