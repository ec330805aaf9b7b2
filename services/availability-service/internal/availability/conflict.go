package availability

import "time"

// DetectConflict checks [start, end) against the tutor's bookings. Cancelled
// bookings are ignored. The first offending booking wins and a direct overlap
// is reported before a buffer violation for the same booking.
//
// The buffer zones of a booking are [start-buffer, start) and [end, end+buffer),
// so a candidate that merely touches a booking is a buffer violation when
// buffer > 0.
func DetectConflict(bookings []Booking, start, end time.Time, buffer time.Duration) ConflictResult {
	candidate := Interval{Start: start, End: end}
	for i := range bookings {
		b := bookings[i]
		if b.Status == StatusCancelled {
			continue
		}
		booked := b.TutorInterval()
		if candidate.Overlaps(booked) {
			return ConflictResult{HasConflict: true, Reason: ReasonDirectOverlap, ConflictingBooking: &b}
		}
		if buffer <= 0 {
			continue
		}
		before := Interval{Start: booked.Start.Add(-buffer), End: booked.Start}
		after := Interval{Start: booked.End, End: booked.End.Add(buffer)}
		if candidate.Overlaps(before) || candidate.Overlaps(after) {
			return ConflictResult{HasConflict: true, Reason: ReasonBufferViolation, ConflictingBooking: &b}
		}
	}
	return ConflictResult{}
}
