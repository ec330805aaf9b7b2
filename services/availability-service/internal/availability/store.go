package availability

import (
	"context"
	"time"
)

// BookingStore persists bookings. Implementations make InsertChecked atomic
// per tutor: check sees every booking committed before it, and no other insert
// for the same tutor can interleave between check and insert.
type BookingStore interface {
	FindByTutor(ctx context.Context, tutorID string) ([]Booking, error)
	// FindByID returns ErrBookingNotFound when id is unknown.
	FindByID(ctx context.Context, id string) (Booking, error)
	// InsertChecked calls check with the tutor's current bookings and inserts
	// b only if check returns nil. check's error is returned unchanged.
	InsertChecked(ctx context.Context, b Booking, check func(existing []Booking) error) error
	// UpdateStatus locks the booking, calls guard with its current state and
	// writes next only if guard returns nil.
	UpdateStatus(ctx context.Context, id string, next BookingStatus, guard func(current Booking) error) (Booking, error)
}

// UserDirectory looks up tutors and students by id.
type UserDirectory interface {
	// GetUser returns ErrUserNotFound when id is unknown.
	GetUser(ctx context.Context, id string) (User, error)
}

// ZoneResolver maps numeric ISO-3166 country codes to locations.
type ZoneResolver interface {
	Resolve(countryISONum int) (string, error)
	ResolveLocation(countryISONum int) (*time.Location, error)
}
