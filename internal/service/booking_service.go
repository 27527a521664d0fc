package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/campusportal/internal/domain"
	"github.com/yourorg/campusportal/internal/observability/metrics"
	"github.com/yourorg/campusportal/internal/security"
)

// BookingService manages the reservation ledger
type BookingService struct {
	bookingRepo domain.BookingRepository
	roomRepo    domain.RoomRepository
	authz       *security.AuthorizationServiceV2
	logger      *slog.Logger
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo domain.BookingRepository,
	roomRepo domain.RoomRepository,
	authz *security.AuthorizationServiceV2,
	logger *slog.Logger,
) *BookingService {
	if logger == nil {
		logger = slog.Default()
	}

	return &BookingService{
		bookingRepo: bookingRepo,
		roomRepo:    roomRepo,
		authz:       authz,
		logger:      logger,
	}
}

// CreateRequest carries the fields a caller supplies for a new booking.
type CreateRequest struct {
	RoomID    string
	UserID    string
	StartTime time.Time
	EndTime   time.Time
	Purpose   string
	Attendees int
}

// Create reserves a room for a half-open [start, end) range. Cancelled
// bookings do not block the slot; two ranges that merely touch do not
// conflict.
func (s *BookingService) Create(req CreateRequest) (*domain.Booking, error) {
	if req.RoomID == "" || req.UserID == "" {
		return nil, fmt.Errorf("room and user are required: %w", domain.ErrInvalidInput)
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return nil, fmt.Errorf("start and end times are required: %w", domain.ErrInvalidInput)
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, fmt.Errorf("start time must be before end time: %w", domain.ErrInvalidInput)
	}
	if req.Attendees < 0 {
		return nil, fmt.Errorf("attendees cannot be negative: %w", domain.ErrInvalidInput)
	}

	if _, err := s.roomRepo.GetByID(req.RoomID); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		RoomID:    req.RoomID,
		UserID:    req.UserID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Purpose:   req.Purpose,
		Attendees: req.Attendees,
		Status:    domain.BookingPending,
	}

	if err := s.bookingRepo.CreateIfAvailable(booking); err != nil {
		if isConflict(err) {
			metrics.ObserveBookingConflict()
			s.logger.Info("booking conflict",
				slog.String("room_id", req.RoomID),
				slog.Time("start", req.StartTime),
				slog.Time("end", req.EndTime),
			)
		}
		return nil, err
	}

	metrics.ObserveBookingCreated()
	s.logger.Info("booking created",
		slog.String("booking_id", booking.ID),
		slog.String("room_id", booking.RoomID),
		slog.String("user_id", booking.UserID),
	)

	return booking, nil
}

// ListMine returns the caller's bookings
func (s *BookingService) ListMine(userID string) ([]*domain.Booking, error) {
	return s.bookingRepo.ListByUser(userID)
}

// ListAll returns every booking in the ledger
func (s *BookingService) ListAll() ([]*domain.Booking, error) {
	return s.bookingRepo.List()
}

// Get returns a booking by ID
func (s *BookingService) Get(id string) (*domain.Booking, error) {
	return s.bookingRepo.GetByID(id)
}

// UpdateStatus moves a booking to a new status, rejecting transitions the
// lifecycle table does not allow.
func (s *BookingService) UpdateStatus(id string, status domain.BookingStatus) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown booking status %q: %w", status, domain.ErrInvalidInput)
	}

	booking, err := s.bookingRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !booking.Status.CanTransition(status) {
		return nil, fmt.Errorf("cannot move booking from %s to %s: %w",
			booking.Status, status, domain.ErrInvalidTransition)
	}

	if booking.Status == status {
		return booking, nil
	}

	if err := s.bookingRepo.UpdateStatus(id, status); err != nil {
		return nil, err
	}
	booking.Status = status

	s.logger.Info("booking status updated",
		slog.String("booking_id", id),
		slog.String("status", string(status)),
	)

	return booking, nil
}

// Cancel soft-cancels a booking. Only the owner or an admin may cancel;
// cancelling an already-cancelled booking is a no-op.
func (s *BookingService) Cancel(id, callerID string, role domain.Role) error {
	booking, err := s.bookingRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.authz.ValidateResourceAccess(callerID, role, security.ResourcePermission{
		ResourceType: security.ResourceBooking,
		ResourceID:   id,
		OwnerID:      booking.UserID,
		Action:       security.ActionDelete,
	}); err != nil {
		return err
	}

	if booking.Status == domain.BookingCancelled {
		return nil
	}
	if !booking.Status.CanTransition(domain.BookingCancelled) {
		return fmt.Errorf("cannot cancel a %s booking: %w", booking.Status, domain.ErrInvalidTransition)
	}

	if err := s.bookingRepo.UpdateStatus(id, domain.BookingCancelled); err != nil {
		return err
	}

	s.logger.Info("booking cancelled",
		slog.String("booking_id", id),
		slog.String("cancelled_by", callerID),
	)

	return nil
}

func isConflict(err error) bool {
	return errors.Is(err, domain.ErrConflict)
}
