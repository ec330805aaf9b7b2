package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/tutorslots/libs/db"
	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/outbox"
)

// openTestPool connects to TEST_DATABASE_URL or skips the test.
func openTestPool(t *testing.T) *db.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := db.Open(ctx, url)
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := RunMigrations(ctx, pool); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	return pool
}

func TestPostgresStore_SaveAndUpdate(t *testing.T) {
	pool := openTestPool(t)
	store := NewPostgresStore(pool, outbox.NewRepository())
	svc := newService(t, store)
	ctx := context.Background()
	tutorID := "tutor-" + uuid.NewString()
	start := time.Date(2026, 6, 15, 8, 0, 0, 0, time.UTC)

	b, err := svc.SaveBooking(ctx, availability.BookingRequest{TutorID: tutorID, StudentID: "s1", Start: start, End: start.Add(time.Hour)})
	if err != nil {
		t.Fatalf("SaveBooking: %v", err)
	}
	got, err := store.FindByID(ctx, b.ID)
	if err != nil || !got.TutorStart.Equal(start) || got.Status != availability.StatusPending {
		t.Fatalf("FindByID: %+v (%v)", got, err)
	}

	_, err = svc.SaveBooking(ctx, availability.BookingRequest{TutorID: tutorID, StudentID: "s2", Start: start.Add(30 * time.Minute), End: start.Add(90 * time.Minute)})
	if !errors.Is(err, availability.ErrBookingConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	updated, err := svc.UpdateBookingStatus(ctx, b.ID, availability.StatusConfirmed)
	if err != nil || updated.Status != availability.StatusConfirmed {
		t.Fatalf("UpdateBookingStatus: %+v (%v)", updated, err)
	}

	var events int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM outbox_events WHERE aggregate_id = $1`, tutorID).Scan(&events); err != nil {
		t.Fatalf("count outbox: %v", err)
	}
	if events != 2 {
		t.Fatalf("expected created and status_changed events, got %d", events)
	}
}

func TestPostgresUsers_Upsert(t *testing.T) {
	pool := openTestPool(t)
	users := NewPostgresUsers(pool)
	ctx := context.Background()
	id := "tutor-" + uuid.NewString()

	u := availability.User{
		ID:            id,
		Name:          "Ana",
		CountryISONum: 620,
		Role:          availability.RoleTutor,
		Availability:  availability.DailyAvailability{"monday": {{Start: "09:00", End: "11:00"}}},
	}
	if err := users.PutUser(ctx, u); err != nil {
		t.Fatalf("PutUser: %v", err)
	}
	got, err := users.GetUser(ctx, id)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.CountryISONum != 620 || len(got.Availability["monday"]) != 1 {
		t.Fatalf("unexpected user %+v", got)
	}
	if _, err := users.GetUser(ctx, "missing-"+id); !errors.Is(err, availability.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
