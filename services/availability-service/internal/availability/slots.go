package availability

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SplitRange returns back-to-back windows of length duration inside
// [start, end). A trailing window that would run past end is dropped.
func SplitRange(start, end time.Time, duration time.Duration) []Interval {
	if duration <= 0 || !end.After(start) {
		return nil
	}
	var out []Interval
	for t := start; !t.Add(duration).After(end); t = t.Add(duration) {
		out = append(out, Interval{Start: t, End: t.Add(duration)})
	}
	return out
}

// Bounds anchors r to the calendar day of day in loc.
func (r TimeRange) Bounds(day time.Time, loc *time.Location) (time.Time, time.Time, error) {
	sh, sm, err := parseClock(r.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	eh, em, err := parseClock(r.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if sh == 24 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start %q", ErrInvalidTimeRange, r.Start)
	}
	y, m, d := day.In(loc).Date()
	// time.Date normalizes hour 24 to midnight of the following day.
	return time.Date(y, m, d, sh, sm, 0, 0, loc), time.Date(y, m, d, eh, em, 0, 0, loc), nil
}

func parseClock(s string) (int, int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}
	return h, m, nil
}

// GenerateTimeSlots lists candidate slots for tutor on date, expressed in both
// the tutor's and the student's zone. date is interpreted in the tutor's zone.
// A non-positive duration falls back to the configured default.
func (s *Service) GenerateTimeSlots(ctx context.Context, tutor, student User, date time.Time, duration time.Duration) ([]TimeSlot, error) {
	ctx, span := s.tracer.Start(ctx, "availability.GenerateTimeSlots", trace.WithAttributes(
		attribute.String("tutor.id", tutor.ID),
		attribute.String("student.id", student.ID),
	))
	defer span.End()

	if duration <= 0 {
		duration = s.cfg.defaultSlot()
	}
	tutorLoc, err := s.zones.ResolveLocation(tutor.CountryISONum)
	if err != nil {
		return nil, fmt.Errorf("tutor zone: %w", err)
	}
	studentLoc, err := s.zones.ResolveLocation(student.CountryISONum)
	if err != nil {
		return nil, fmt.Errorf("student zone: %w", err)
	}

	day := date.In(tutorLoc)
	ranges := tutor.Availability.For(day.Weekday())
	slots := []TimeSlot{}
	if len(ranges) == 0 {
		return slots, nil
	}

	bookings, err := s.store.FindByTutor(ctx, tutor.ID)
	if err != nil {
		return nil, err
	}

	buffer := s.cfg.buffer()
	for _, r := range ranges {
		start, end, err := r.Bounds(day, tutorLoc)
		if err != nil {
			return nil, err
		}
		for _, w := range SplitRange(start, end, duration) {
			studentStart := w.Start.In(studentLoc)
			studentEnd := w.End.In(studentLoc)
			res := DetectConflict(bookings, w.Start, w.End, buffer)
			slots = append(slots, TimeSlot{
				StudentStart:   studentStart,
				StudentEnd:     studentEnd,
				TutorStart:     w.Start,
				TutorEnd:       w.End,
				DSTTransitions: DetectTransitions(studentStart, studentEnd, studentLoc),
				Available:      !res.HasConflict,
				ConflictReason: res.Reason,
			})
		}
	}

	span.SetAttributes(attribute.Int("slots.count", len(slots)))
	s.logger.DebugContext(ctx, "generated slots",
		"tutor_id", tutor.ID,
		"student_id", student.ID,
		"weekday", WeekdayKey(day.Weekday()),
		"count", len(slots),
	)
	return slots, nil
}
