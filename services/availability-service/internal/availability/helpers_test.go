package availability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/timezone"
)

const (
	portugal = 620
	usa      = 840
)

type fakeStore struct {
	mu       sync.Mutex
	bookings []Booking
}

func (f *fakeStore) FindByTutor(_ context.Context, tutorID string) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.bookings {
		if b.TutorID == tutorID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return Booking{}, ErrBookingNotFound
}

func (f *fakeStore) InsertChecked(_ context.Context, b Booking, check func([]Booking) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var existing []Booking
	for _, e := range f.bookings {
		if e.TutorID == b.TutorID {
			existing = append(existing, e)
		}
	}
	if err := check(existing); err != nil {
		return err
	}
	f.bookings = append(f.bookings, b)
	return nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id string, next BookingStatus, guard func(Booking) error) (Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bookings {
		if f.bookings[i].ID != id {
			continue
		}
		if guard != nil {
			if err := guard(f.bookings[i]); err != nil {
				return Booking{}, err
			}
		}
		f.bookings[i].Status = next
		return f.bookings[i], nil
	}
	return Booking{}, ErrBookingNotFound
}

func newTestService(t *testing.T, cfg Config, store BookingStore, now time.Time) *Service {
	t.Helper()
	zones, err := timezone.Default()
	if err != nil {
		t.Fatalf("timezone.Default: %v", err)
	}
	seq := 0
	return NewService(cfg, zones, store,
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string { seq++; return fmt.Sprintf("b-%d", seq) }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	return loc
}

func booking(id, tutorID string, start, end time.Time, status BookingStatus) Booking {
	return Booking{
		ID:           id,
		TutorID:      tutorID,
		StudentID:    "student-1",
		Status:       status,
		TutorStart:   start.UTC(),
		TutorEnd:     end.UTC(),
		StudentStart: start.UTC(),
		StudentEnd:   end.UTC(),
	}
}

func lisbonTutor(avail DailyAvailability) User {
	return User{ID: "tutor-1", Name: "Ana", CountryISONum: portugal, Role: RoleTutor, Availability: avail}
}

func newYorkStudent() User {
	return User{ID: "student-1", Name: "Sam", CountryISONum: usa, Role: RoleStudent}
}
