package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/yourorg/campusportal/internal/domain"
)

// PostgresBookingRepository implements domain.BookingRepository using PostgreSQL
type PostgresBookingRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresBookingRepository creates a new booking repository
func NewPostgresBookingRepository(db *sql.DB, logger *slog.Logger) *PostgresBookingRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBookingRepository{
		db:     db,
		logger: logger,
	}
}

const bookingColumns = `id, room_id, user_id, start_time, end_time, purpose,
	attendees, status, created_at, updated_at`

// CreateIfAvailable inserts the booking only when no non-cancelled booking
// on the same room overlaps its half-open [start, end) range. The overlap
// check and the insert run as one conditional statement so two concurrent
// requests cannot both pass the check.
func (r *PostgresBookingRepository) CreateIfAvailable(booking *domain.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = domain.BookingPending
	}

	query := `
		INSERT INTO bookings (id, room_id, user_id, start_time, end_time, purpose, attendees, status)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE NOT EXISTS (
			SELECT 1 FROM bookings
			WHERE room_id = $2
			  AND status <> 'cancelled'
			  AND start_time < $5
			  AND end_time > $4
		)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		booking.ID,
		booking.RoomID,
		booking.UserID,
		booking.StartTime,
		booking.EndTime,
		booking.Purpose,
		booking.Attendees,
		booking.Status,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The conditional insert matched an overlapping booking.
			return fmt.Errorf("room is already booked for this time slot: %w", domain.ErrConflict)
		}
		r.logger.Error("failed to create booking",
			slog.String("room_id", booking.RoomID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (r *PostgresBookingRepository) GetByID(id string) (*domain.Booking, error) {
	row := r.db.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)

	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

// UpdateStatus overwrites a booking's status
func (r *PostgresBookingRepository) UpdateStatus(id string, status domain.BookingStatus) error {
	result, err := r.db.Exec(
		`UPDATE bookings SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("booking: %w", domain.ErrNotFound)
	}

	return nil
}

// ListByUser returns the caller's bookings, latest start first
func (r *PostgresBookingRepository) ListByUser(userID string) ([]*domain.Booking, error) {
	return r.list(`SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY start_time DESC`, userID)
}

// List returns all bookings, latest start first
func (r *PostgresBookingRepository) List() ([]*domain.Booking, error) {
	return r.list(`SELECT ` + bookingColumns + ` FROM bookings ORDER BY start_time DESC`)
}

func (r *PostgresBookingRepository) list(query string, args ...interface{}) ([]*domain.Booking, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to list bookings", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// MarkCompleted flips confirmed bookings whose end time has passed to
// completed and returns how many rows changed.
func (r *PostgresBookingRepository) MarkCompleted(now time.Time) (int, error) {
	result, err := r.db.Exec(
		`UPDATE bookings SET status = 'completed', updated_at = now()
		 WHERE status = 'confirmed' AND end_time <= $1`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to complete bookings: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return int(rows), nil
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	booking := &domain.Booking{}
	err := row.Scan(
		&booking.ID,
		&booking.RoomID,
		&booking.UserID,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Purpose,
		&booking.Attendees,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return booking, nil
}
