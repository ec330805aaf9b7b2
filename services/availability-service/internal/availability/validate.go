package availability

import (
	"fmt"
	"time"
)

// ValidateBookingTime applies the notice, horizon and ordering rules in that
// order and returns the first failure.
func ValidateBookingTime(now, start, end time.Time, cfg Config) error {
	earliest := now.Add(cfg.minNotice())
	if start.Before(earliest) {
		return fmt.Errorf("%w: start %s is before %s (%dh notice)",
			ErrInsufficientNotice, start.UTC().Format(time.RFC3339), earliest.UTC().Format(time.RFC3339), cfg.MinAdvanceBookingHours)
	}
	latest := now.Add(cfg.maxHorizon())
	if start.After(latest) {
		return fmt.Errorf("%w: start %s is after %s (%d days ahead)",
			ErrBookingTooFarInFuture, start.UTC().Format(time.RFC3339), latest.UTC().Format(time.RFC3339), cfg.MaxFutureBookingDays)
	}
	if !end.After(start) {
		return ErrInvalidInterval
	}
	return nil
}

func (s *Service) ValidateBookingTime(start, end time.Time) error {
	return ValidateBookingTime(s.now(), start, end, s.cfg)
}
