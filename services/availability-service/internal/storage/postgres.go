package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/tutorslots/libs/db"
	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/outbox"
)

const selectBooking = `
	SELECT id, tutor_id, student_id, status, created_at,
		tutor_start_time, tutor_end_time, student_start_time, student_end_time
	FROM bookings
`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists bookings in Postgres. Each write runs in one
// transaction together with its outbox event.
type PostgresStore struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewPostgresStore(pool *db.Pool, outboxRepo *outbox.Repository) *PostgresStore {
	return &PostgresStore{pool: pool, outbox: outboxRepo}
}

func (s *PostgresStore) FindByTutor(ctx context.Context, tutorID string) ([]availability.Booking, error) {
	return listByTutor(ctx, s.pool, tutorID)
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (availability.Booking, error) {
	b, err := scanBooking(s.pool.QueryRow(ctx, selectBooking+` WHERE id = $1`, id))
	if IsNotFound(err) {
		return availability.Booking{}, availability.ErrBookingNotFound
	}
	return b, err
}

// InsertChecked holds a transaction-scoped advisory lock on the tutor while
// it reads the tutor's bookings, runs check and inserts b.
func (s *PostgresStore) InsertChecked(ctx context.Context, b availability.Booking, check func([]availability.Booking) error) error {
	return s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		if err := db.AdvisoryXactLock(ctx, tx, "tutor:"+b.TutorID); err != nil {
			return err
		}
		existing, err := listByTutor(ctx, tx, b.TutorID)
		if err != nil {
			return err
		}
		if err := check(existing); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO bookings
				(id, tutor_id, student_id, status, created_at,
				 tutor_start_time, tutor_end_time, student_start_time, student_end_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, b.ID, b.TutorID, b.StudentID, string(b.Status), b.CreatedAt,
			b.TutorStart, b.TutorEnd, b.StudentStart, b.StudentEnd)
		if IsConflict(err) {
			return fmt.Errorf("%w: overlapping booking for tutor %s", availability.ErrBookingConflict, b.TutorID)
		}
		if err != nil {
			return err
		}

		evt, err := outbox.BookingCreated(b)
		if err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, evt)
	})
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, next availability.BookingStatus, guard func(availability.Booking) error) (availability.Booking, error) {
	var updated availability.Booking
	err := s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		current, err := scanBooking(tx.QueryRow(ctx, selectBooking+` WHERE id = $1 FOR UPDATE`, id))
		if IsNotFound(err) {
			return availability.ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(current); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx, `UPDATE bookings SET status = $2 WHERE id = $1`, id, string(next))
		if IsConflict(err) {
			return fmt.Errorf("%w: reactivating booking %s overlaps another booking", availability.ErrBookingConflict, id)
		}
		if err != nil {
			return err
		}

		previous := current.Status
		current.Status = next
		evt, err := outbox.BookingStatusChanged(current, previous)
		if err != nil {
			return err
		}
		if err := s.outbox.Insert(ctx, tx, evt); err != nil {
			return err
		}
		updated = current
		return nil
	})
	return updated, err
}

func listByTutor(ctx context.Context, q querier, tutorID string) ([]availability.Booking, error) {
	rows, err := q.Query(ctx, selectBooking+` WHERE tutor_id = $1 ORDER BY tutor_start_time ASC`, tutorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []availability.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBooking(row pgx.Row) (availability.Booking, error) {
	var (
		b      availability.Booking
		status string
	)
	err := row.Scan(&b.ID, &b.TutorID, &b.StudentID, &status, &b.CreatedAt,
		&b.TutorStart, &b.TutorEnd, &b.StudentStart, &b.StudentEnd)
	if err != nil {
		return availability.Booking{}, err
	}
	b.Status = availability.BookingStatus(status)
	b.CreatedAt = b.CreatedAt.UTC()
	b.TutorStart, b.TutorEnd = b.TutorStart.UTC(), b.TutorEnd.UTC()
	b.StudentStart, b.StudentEnd = b.StudentStart.UTC(), b.StudentEnd.UTC()
	return b, nil
}

var _ availability.BookingStore = (*PostgresStore)(nil)
var _ availability.BookingStore = (*MemoryStore)(nil)
