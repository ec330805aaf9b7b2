package outbox

import (
	"encoding/json"
	"time"

	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/availability"
)

const (
	AggregateBooking = "booking"

	EventBookingCreated       = "booking.created.v1"
	EventBookingStatusChanged = "booking.status_changed.v1"
)

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// BookingPayload is the JSON body of booking events.
type BookingPayload struct {
	BookingID      string    `json:"booking_id"`
	TutorID        string    `json:"tutor_id"`
	StudentID      string    `json:"student_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	CreatedAt      time.Time `json:"created_at"`
}

func BookingCreated(b availability.Booking) (Event, error) {
	return bookingEvent(EventBookingCreated, b, "")
}

func BookingStatusChanged(b availability.Booking, previous availability.BookingStatus) (Event, error) {
	return bookingEvent(EventBookingStatusChanged, b, previous)
}

func bookingEvent(eventType string, b availability.Booking, previous availability.BookingStatus) (Event, error) {
	payload, err := json.Marshal(BookingPayload{
		BookingID:      b.ID,
		TutorID:        b.TutorID,
		StudentID:      b.StudentID,
		Status:         string(b.Status),
		PreviousStatus: string(previous),
		StartTime:      b.TutorStart.UTC(),
		EndTime:        b.TutorEnd.UTC(),
		CreatedAt:      b.CreatedAt.UTC(),
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: AggregateBooking,
		AggregateID:   b.TutorID,
		EventType:     eventType,
		Payload:       payload,
	}, nil
}
