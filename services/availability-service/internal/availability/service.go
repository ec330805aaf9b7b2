package availability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Service struct {
	cfg    Config
	zones  ZoneResolver
	store  BookingStore
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for validation and CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func NewService(cfg Config, zones ZoneResolver, store BookingStore, opts ...Option) *Service {
	if cfg.DefaultSlotMinutes <= 0 {
		cfg.DefaultSlotMinutes = DefaultConfig().DefaultSlotMinutes
	}
	s := &Service{
		cfg:    cfg,
		zones:  zones,
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("availability-service/availability"),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Config() Config {
	return s.cfg
}

func (s *Service) Zones() ZoneResolver {
	return s.zones
}

// CheckConflicts reports whether [start, end) clashes with any active booking
// of tutorID, honoring the configured buffer.
func (s *Service) CheckConflicts(ctx context.Context, tutorID string, start, end time.Time) (ConflictResult, error) {
	ctx, span := s.tracer.Start(ctx, "availability.CheckConflicts", trace.WithAttributes(attribute.String("tutor.id", tutorID)))
	defer span.End()

	bookings, err := s.store.FindByTutor(ctx, tutorID)
	if err != nil {
		span.RecordError(err)
		return ConflictResult{}, err
	}
	res := DetectConflict(bookings, start, end, s.cfg.buffer())
	span.SetAttributes(attribute.Bool("conflict", res.HasConflict))
	return res, nil
}

// SaveBooking validates req and inserts a pending booking unless it conflicts
// with the tutor's existing bookings. Conflicts are returned as *ConflictError.
func (s *Service) SaveBooking(ctx context.Context, req BookingRequest) (Booking, error) {
	ctx, span := s.tracer.Start(ctx, "availability.SaveBooking", trace.WithAttributes(
		attribute.String("tutor.id", req.TutorID),
		attribute.String("student.id", req.StudentID),
	))
	defer span.End()

	if strings.TrimSpace(req.TutorID) == "" || strings.TrimSpace(req.StudentID) == "" {
		return Booking{}, fmt.Errorf("%w: tutor_id and student_id are required", ErrInvalidBookingRequest)
	}
	if err := s.ValidateBookingTime(req.Start, req.End); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return Booking{}, err
	}

	start, end := req.Start.UTC(), req.End.UTC()
	b := Booking{
		ID:           s.newID(),
		TutorID:      req.TutorID,
		StudentID:    req.StudentID,
		Status:       StatusPending,
		CreatedAt:    s.now().UTC(),
		StudentStart: start,
		StudentEnd:   end,
		TutorStart:   start,
		TutorEnd:     end,
	}
	buffer := s.cfg.buffer()
	err := s.store.InsertChecked(ctx, b, func(existing []Booking) error {
		res := DetectConflict(existing, b.TutorStart, b.TutorEnd, buffer)
		if !res.HasConflict {
			return nil
		}
		return &ConflictError{Reason: res.Reason, Booking: *res.ConflictingBooking}
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		s.logger.InfoContext(ctx, "booking rejected", "tutor_id", req.TutorID, "student_id", req.StudentID, "err", err)
		return Booking{}, err
	}

	span.SetAttributes(attribute.String("booking.id", b.ID))
	s.logger.InfoContext(ctx, "booking saved",
		"booking_id", b.ID,
		"tutor_id", b.TutorID,
		"student_id", b.StudentID,
		"start", b.TutorStart.Format(time.RFC3339),
		"end", b.TutorEnd.Format(time.RFC3339),
	)
	return b, nil
}

// UpdateBookingStatus overwrites the status of booking id. With strict
// transitions enabled only the lifecycle moves in CanTransition are allowed.
func (s *Service) UpdateBookingStatus(ctx context.Context, id string, status BookingStatus) (Booking, error) {
	ctx, span := s.tracer.Start(ctx, "availability.UpdateBookingStatus", trace.WithAttributes(
		attribute.String("booking.id", id),
		attribute.String("booking.status", string(status)),
	))
	defer span.End()

	if !status.Valid() {
		return Booking{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	var guard func(Booking) error
	if s.cfg.StrictStatusTransitions {
		guard = func(current Booking) error { return checkTransition(current.Status, status) }
	}
	b, err := s.store.UpdateStatus(ctx, id, status, guard)
	if err != nil {
		span.RecordError(err)
		return Booking{}, err
	}
	s.logger.InfoContext(ctx, "booking status updated", "booking_id", id, "status", status)
	return b, nil
}

func (s *Service) GetBooking(ctx context.Context, id string) (Booking, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) ListTutorBookings(ctx context.Context, tutorID string) ([]Booking, error) {
	return s.store.FindByTutor(ctx, tutorID)
}
