package availability

import (
	"strings"
	"time"
)

type Role string

const (
	RoleTutor   Role = "tutor"
	RoleStudent Role = "student"
)

// User is a scheduling participant. Availability is only set for tutors.
type User struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	CountryISONum int               `json:"country_iso_num"`
	Role          Role              `json:"role"`
	Availability  DailyAvailability `json:"availability,omitempty"`
}

// TimeRange is a wall-clock HH:mm range in the owning tutor's zone. End may be
// "24:00" for end of day.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DailyAvailability maps lowercase weekday names ("monday") to ranges.
// Ranges are consumed as given; overlaps are not rejected.
type DailyAvailability map[string][]TimeRange

// For returns the ranges configured for the weekday of day.
func (d DailyAvailability) For(day time.Weekday) []TimeRange {
	if d == nil {
		return nil
	}
	return d[WeekdayKey(day)]
}

func WeekdayKey(day time.Weekday) string {
	return strings.ToLower(day.String())
}

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Booking is a persisted reservation. Both time pairs are UTC and denote the
// same instants; they are kept apart for each party's display.
type Booking struct {
	ID           string        `json:"id"`
	TutorID      string        `json:"tutor_id"`
	StudentID    string        `json:"student_id"`
	Status       BookingStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	TutorStart   time.Time     `json:"tutor_start_time"`
	TutorEnd     time.Time     `json:"tutor_end_time"`
	StudentStart time.Time     `json:"student_start_time"`
	StudentEnd   time.Time     `json:"student_end_time"`
}

func (b Booking) TutorInterval() Interval {
	return Interval{Start: b.TutorStart, End: b.TutorEnd}
}

// BookingRequest is a student's request for [Start, End).
type BookingRequest struct {
	TutorID   string
	StudentID string
	Start     time.Time
	End       time.Time
}

// Interval is half-open: [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether i and o share any instant.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

type TransitionType string

const (
	TransitionStart TransitionType = "start" // clocks move forward
	TransitionEnd   TransitionType = "end"   // clocks move back
)

// DSTTransition is an offset change crossed by an interval in a viewer's zone.
type DSTTransition struct {
	Type          TransitionType `json:"type"`
	ChangeMinutes int            `json:"change_amount"`
	At            time.Time      `json:"at"`
	Message       string         `json:"message"`
}

type ConflictReason string

const (
	ReasonDirectOverlap   ConflictReason = "direct_overlap"
	ReasonBufferViolation ConflictReason = "buffer_violation"
)

type ConflictResult struct {
	HasConflict        bool           `json:"has_conflict"`
	Reason             ConflictReason `json:"reason,omitempty"`
	ConflictingBooking *Booking       `json:"conflicting_booking,omitempty"`
}

// TimeSlot is a computed candidate slot; never persisted.
type TimeSlot struct {
	StudentStart   time.Time       `json:"student_start_time"`
	StudentEnd     time.Time       `json:"student_end_time"`
	TutorStart     time.Time       `json:"tutor_start_time"`
	TutorEnd       time.Time       `json:"tutor_end_time"`
	DSTTransitions []DSTTransition `json:"dst_transitions,omitempty"`
	Available      bool            `json:"available"`
	ConflictReason ConflictReason  `json:"conflict_reason,omitempty"`
}

// PrimaryDST returns the first transition crossed by the slot, if any.
func (s TimeSlot) PrimaryDST() (DSTTransition, bool) {
	if len(s.DSTTransitions) == 0 {
		return DSTTransition{}, false
	}
	return s.DSTTransitions[0], true
}

// DSTWarning joins every transition message with "; ".
func (s TimeSlot) DSTWarning() string {
	msgs := make([]string, 0, len(s.DSTTransitions))
	for _, t := range s.DSTTransitions {
		msgs = append(msgs, t.Message)
	}
	return strings.Join(msgs, "; ")
}
