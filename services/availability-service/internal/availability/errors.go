package availability

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientNotice      = errors.New("insufficient booking notice")
	ErrBookingTooFarInFuture   = errors.New("booking too far in the future")
	ErrInvalidInterval         = errors.New("booking end must be after start")
	ErrBookingConflict         = errors.New("booking conflict")
	ErrBookingNotFound         = errors.New("booking not found")
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidStatus           = errors.New("invalid booking status")
	ErrIllegalStatusTransition = errors.New("illegal booking status transition")
	ErrInvalidTimeRange        = errors.New("invalid availability time range")
	ErrInvalidBookingRequest   = errors.New("invalid booking request")
)

// ConflictError carries the reason and the booking that blocked a save.
// It matches ErrBookingConflict with errors.Is.
type ConflictError struct {
	Reason  ConflictReason
	Booking Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s with booking %s", ErrBookingConflict, e.Reason, e.Booking.ID)
}

func (e *ConflictError) Unwrap() error {
	return ErrBookingConflict
}
