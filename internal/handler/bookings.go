package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/campusportal/internal/domain"
	"github.com/yourorg/campusportal/internal/security/audit"
	"github.com/yourorg/campusportal/internal/security/middleware"
	"github.com/yourorg/campusportal/internal/service"
)

// BookingsHandler handles the reservation ledger endpoints
type BookingsHandler struct {
	bookingService *service.BookingService
	audit          *audit.Logger
	logger         *slog.Logger
}

// NewBookingsHandler creates a new bookings handler
func NewBookingsHandler(bookingService *service.BookingService, auditLog *audit.Logger, logger *slog.Logger) *BookingsHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &BookingsHandler{
		bookingService: bookingService,
		audit:          auditLog,
		logger:         logger,
	}
}

// CreateBookingRequest represents a new booking submission
type CreateBookingRequest struct {
	RoomID    string    `json:"roomId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Purpose   string    `json:"purpose"`
	Attendees int       `json:"attendees"`
}

// Create handles POST /api/bookings
func (h *BookingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	booking, err := h.bookingService.Create(service.CreateRequest{
		RoomID:    req.RoomID,
		UserID:    claims.UserID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Purpose:   req.Purpose,
		Attendees: req.Attendees,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

// ListMine handles GET /api/bookings/my-bookings
func (h *BookingsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	bookings, err := h.bookingService.ListMine(claims.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if bookings == nil {
		bookings = []*domain.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// ListAll handles GET /api/bookings (admin only)
func (h *BookingsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookingService.ListAll()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if bookings == nil {
		bookings = []*domain.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// UpdateStatusRequest carries the target booking status
type UpdateStatusRequest struct {
	Status domain.BookingStatus `json:"status"`
}

// UpdateStatus handles PATCH /api/bookings/{id}/status (admin only)
func (h *BookingsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	before, err := h.bookingService.Get(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	booking, err := h.bookingService.UpdateStatus(id, req.Status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
		h.audit.LogBookingStatusChange(r.Context(), claims.UserID, id, string(before.Status), string(booking.Status))
	}

	writeJSON(w, http.StatusOK, booking)
}

// Cancel handles DELETE /api/bookings/{id}; owner or admin, soft cancel
func (h *BookingsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.bookingService.Cancel(r.PathValue("id"), claims.UserID, claims.Role); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking cancelled successfully"})
}
