package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/timezone"
)

type Handler struct {
	svc    *availability.Service
	users  availability.UserDirectory
	logger *slog.Logger
}

func New(svc *availability.Service, users availability.UserDirectory, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, users: users, logger: logger}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/slots", h.Slots)
	mux.HandleFunc("/api/v1/conflicts/check", h.CheckConflicts)
	mux.HandleFunc("/api/v1/bookings", h.Bookings)
	mux.HandleFunc("/api/v1/bookings/get", h.GetBooking)
	mux.HandleFunc("/api/v1/bookings/status", h.UpdateStatus)
	mux.HandleFunc("/api/v1/bookings/display", h.Display)
	mux.HandleFunc("/api/v1/timezones/resolve", h.ResolveTimezone)
}

type slotItem struct {
	StudentStartTime string                       `json:"student_start_time"`
	StudentEndTime   string                       `json:"student_end_time"`
	TutorStartTime   string                       `json:"tutor_start_time"`
	TutorEndTime     string                       `json:"tutor_end_time"`
	Available        bool                         `json:"available"`
	ConflictReason   string                       `json:"conflict_reason,omitempty"`
	DSTTransitions   []availability.DSTTransition `json:"dst_transitions,omitempty"`
	DSTWarning       string                       `json:"dst_warning,omitempty"`
}

type slotsResponse struct {
	TutorID         string     `json:"tutor_id"`
	StudentID       string     `json:"student_id"`
	Date            string     `json:"date"`
	DurationMinutes int        `json:"duration_minutes"`
	Slots           []slotItem `json:"slots"`
}

type intervalRequest struct {
	TutorID   string `json:"tutor_id"`
	StudentID string `json:"student_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type statusRequest struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

type conflictResponse struct {
	Error                string `json:"error"`
	Reason               string `json:"reason,omitempty"`
	ConflictingBookingID string `json:"conflicting_booking_id,omitempty"`
}

func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	tutorID := strings.TrimSpace(q.Get("tutor_id"))
	studentID := strings.TrimSpace(q.Get("student_id"))
	dateStr := strings.TrimSpace(q.Get("date"))
	if tutorID == "" || studentID == "" || dateStr == "" {
		http.Error(w, "tutor_id, student_id and date are required", http.StatusBadRequest)
		return
	}
	duration := h.svc.Config().DefaultSlotMinutes
	if raw := strings.TrimSpace(q.Get("duration_minutes")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > 24*60 {
			http.Error(w, "invalid duration_minutes", http.StatusBadRequest)
			return
		}
		duration = v
	}

	ctx := r.Context()
	tutor, err := h.users.GetUser(ctx, tutorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if tutor.Role != availability.RoleTutor {
		http.Error(w, "tutor_id does not refer to a tutor", http.StatusBadRequest)
		return
	}
	student, err := h.users.GetUser(ctx, studentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	tutorLoc, err := h.svc.Zones().ResolveLocation(tutor.CountryISONum)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, tutorLoc)
	if err != nil {
		http.Error(w, "invalid date (want YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	slots, err := h.svc.GenerateTimeSlots(ctx, tutor, student, date, time.Duration(duration)*time.Minute)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := slotsResponse{
		TutorID:         tutorID,
		StudentID:       studentID,
		Date:            dateStr,
		DurationMinutes: duration,
		Slots:           make([]slotItem, 0, len(slots)),
	}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, slotItem{
			StudentStartTime: s.StudentStart.Format(time.RFC3339),
			StudentEndTime:   s.StudentEnd.Format(time.RFC3339),
			TutorStartTime:   s.TutorStart.Format(time.RFC3339),
			TutorEndTime:     s.TutorEnd.Format(time.RFC3339),
			Available:        s.Available,
			ConflictReason:   string(s.ConflictReason),
			DSTTransitions:   s.DSTTransitions,
			DSTWarning:       s.DSTWarning(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, start, end, ok := decodeInterval(w, r)
	if !ok {
		return
	}
	if req.TutorID == "" {
		http.Error(w, "missing tutor_id", http.StatusBadRequest)
		return
	}
	res, err := h.svc.CheckConflicts(r.Context(), req.TutorID, start, end)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Bookings serves GET (list by tutor) and POST (create).
func (h *Handler) Bookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listBookings(w, r)
	case http.MethodPost:
		h.createBooking(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) createBooking(w http.ResponseWriter, r *http.Request) {
	req, start, end, ok := decodeInterval(w, r)
	if !ok {
		return
	}
	if req.TutorID == "" || req.StudentID == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	for _, id := range []string{req.TutorID, req.StudentID} {
		if _, err := h.users.GetUser(ctx, id); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	b, err := h.svc.SaveBooking(ctx, availability.BookingRequest{
		TutorID:   req.TutorID,
		StudentID: req.StudentID,
		Start:     start,
		End:       end,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) listBookings(w http.ResponseWriter, r *http.Request) {
	tutorID := strings.TrimSpace(r.URL.Query().Get("tutor_id"))
	if tutorID == "" {
		http.Error(w, "missing tutor_id", http.StatusBadRequest)
		return
	}
	list, err := h.svc.ListTutorBookings(r.Context(), tutorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []availability.Booking{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tutor_id": tutorID, "bookings": list})
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("booking_id"))
	if id == "" {
		http.Error(w, "missing booking_id", http.StatusBadRequest)
		return
	}
	b, err := h.svc.GetBooking(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BookingID = strings.TrimSpace(req.BookingID)
	if req.BookingID == "" || req.Status == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	status := availability.BookingStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	b, err := h.svc.UpdateBookingStatus(r.Context(), req.BookingID, status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) Display(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	id := strings.TrimSpace(q.Get("booking_id"))
	country, err := strconv.Atoi(strings.TrimSpace(q.Get("viewer_country")))
	if id == "" || err != nil {
		http.Error(w, "booking_id and numeric viewer_country are required", http.StatusBadRequest)
		return
	}
	b, err := h.svc.GetBooking(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	info, err := h.svc.GetBookingDisplayInfo(b, country)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) ResolveTimezone(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	country, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("country")))
	if err != nil {
		http.Error(w, "numeric country is required", http.StatusBadRequest)
		return
	}
	zone, err := h.svc.Zones().Resolve(country)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"country_iso_num": country, "timezone": zone})
}

func decodeInterval(w http.ResponseWriter, r *http.Request) (intervalRequest, time.Time, time.Time, bool) {
	var req intervalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return req, time.Time{}, time.Time{}, false
	}
	req.TutorID = strings.TrimSpace(req.TutorID)
	req.StudentID = strings.TrimSpace(req.StudentID)
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return req, time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		http.Error(w, "invalid end_time", http.StatusBadRequest)
		return req, time.Time{}, time.Time{}, false
	}
	return req, start, end, true
}

// writeError maps domain errors to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *availability.ConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, conflictResponse{
			Error:                availability.ErrBookingConflict.Error(),
			Reason:               string(conflict.Reason),
			ConflictingBookingID: conflict.Booking.ID,
		})
	case errors.Is(err, availability.ErrBookingConflict),
		errors.Is(err, availability.ErrIllegalStatusTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, availability.ErrBookingNotFound),
		errors.Is(err, availability.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, availability.ErrInsufficientNotice),
		errors.Is(err, availability.ErrBookingTooFarInFuture),
		errors.Is(err, availability.ErrInvalidInterval),
		errors.Is(err, timezone.ErrUnsupportedCountry),
		errors.Is(err, availability.ErrInvalidTimeRange):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, availability.ErrInvalidStatus),
		errors.Is(err, availability.ErrInvalidBookingRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
