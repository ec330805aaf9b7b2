package availability

import (
	"fmt"
	"time"
)

// Config holds the engine tunables. It is copied into the Service at
// construction and never mutated afterwards.
type Config struct {
	BufferMinutes           int  `envconfig:"BUFFER_MINUTES" default:"10"`
	DefaultSlotMinutes      int  `envconfig:"DEFAULT_SLOT_MINUTES" default:"60"`
	MaxFutureBookingDays    int  `envconfig:"MAX_FUTURE_BOOKING_DAYS" default:"90"`
	MinAdvanceBookingHours  int  `envconfig:"MIN_ADVANCE_BOOKING_HOURS" default:"24"`
	StrictStatusTransitions bool `envconfig:"STRICT_STATUS_TRANSITIONS" default:"false"`
}

func DefaultConfig() Config {
	return Config{
		BufferMinutes:          10,
		DefaultSlotMinutes:     60,
		MaxFutureBookingDays:   90,
		MinAdvanceBookingHours: 24,
	}
}

func (c Config) Validate() error {
	if c.BufferMinutes < 0 {
		return fmt.Errorf("buffer minutes must be >= 0 (got %d)", c.BufferMinutes)
	}
	if c.DefaultSlotMinutes <= 0 {
		return fmt.Errorf("default slot minutes must be > 0 (got %d)", c.DefaultSlotMinutes)
	}
	if c.MaxFutureBookingDays <= 0 {
		return fmt.Errorf("max future booking days must be > 0 (got %d)", c.MaxFutureBookingDays)
	}
	if c.MinAdvanceBookingHours < 0 {
		return fmt.Errorf("min advance booking hours must be >= 0 (got %d)", c.MinAdvanceBookingHours)
	}
	return nil
}

func (c Config) buffer() time.Duration {
	return time.Duration(c.BufferMinutes) * time.Minute
}

func (c Config) defaultSlot() time.Duration {
	return time.Duration(c.DefaultSlotMinutes) * time.Minute
}

func (c Config) minNotice() time.Duration {
	return time.Duration(c.MinAdvanceBookingHours) * time.Hour
}

func (c Config) maxHorizon() time.Duration {
	return time.Duration(c.MaxFutureBookingDays) * 24 * time.Hour
}
