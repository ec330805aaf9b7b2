package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/availability"
)

// MemoryStore is an in-process BookingStore. Inserts and status changes for
// one tutor are serialized by a per-tutor mutex; reads only take the map lock.
// The per-tutor lock map is never pruned and grows with every tutor id seen,
// which is fine for development and tests but not for long-lived processes.
type MemoryStore struct {
	mu       sync.RWMutex
	bookings map[string]availability.Booking
	byTutor  map[string][]string

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings: map[string]availability.Booking{},
		byTutor:  map[string][]string{},
		locks:    map[string]*sync.Mutex{},
	}
}

func (s *MemoryStore) tutorLock(tutorID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[tutorID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[tutorID] = l
	}
	return l
}

func (s *MemoryStore) FindByTutor(_ context.Context, tutorID string) ([]availability.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byTutor[tutorID]
	out := make([]availability.Booking, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.bookings[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TutorStart.Before(out[j].TutorStart) })
	return out, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (availability.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return availability.Booking{}, availability.ErrBookingNotFound
	}
	return b, nil
}

func (s *MemoryStore) InsertChecked(ctx context.Context, b availability.Booking, check func([]availability.Booking) error) error {
	l := s.tutorLock(b.TutorID)
	l.Lock()
	defer l.Unlock()

	existing, err := s.FindByTutor(ctx, b.TutorID)
	if err != nil {
		return err
	}
	if err := check(existing); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = b
	s.byTutor[b.TutorID] = append(s.byTutor[b.TutorID], b.ID)
	return nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, next availability.BookingStatus, guard func(availability.Booking) error) (availability.Booking, error) {
	current, err := s.FindByID(ctx, id)
	if err != nil {
		return availability.Booking{}, err
	}
	l := s.tutorLock(current.TutorID)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	current = s.bookings[id]
	if guard != nil {
		if err := guard(current); err != nil {
			return availability.Booking{}, err
		}
	}
	current.Status = next
	s.bookings[id] = current
	return current, nil
}
