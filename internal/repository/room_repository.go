package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/yourorg/campusportal/internal/domain"
)

// PostgresRoomRepository implements domain.RoomRepository using PostgreSQL
type PostgresRoomRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRoomRepository creates a new room repository
func NewPostgresRoomRepository(db *sql.DB, logger *slog.Logger) *PostgresRoomRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRoomRepository{
		db:     db,
		logger: logger,
	}
}

const roomColumns = `id, name, description, capacity, facilities, status,
	building, floor, room_number, created_at, updated_at`

// Create inserts a new room
func (r *PostgresRoomRepository) Create(room *domain.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if room.Status == "" {
		room.Status = domain.RoomAvailable
	}

	query := `
		INSERT INTO rooms (id, name, description, capacity, facilities, status, building, floor, room_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		room.ID,
		room.Name,
		room.Description,
		room.Capacity,
		pq.Array(room.Facilities),
		room.Status,
		room.Location.Building,
		room.Location.Floor,
		room.Location.RoomNumber,
	).Scan(&room.CreatedAt, &room.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create room",
			slog.String("name", room.Name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create room: %w", err)
	}

	return nil
}

// GetByID retrieves a room by ID
func (r *PostgresRoomRepository) GetByID(id string) (*domain.Room, error) {
	row := r.db.QueryRow(`SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)

	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("room: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

// Update overwrites a room's mutable fields
func (r *PostgresRoomRepository) Update(room *domain.Room) error {
	query := `
		UPDATE rooms
		SET name = $1, description = $2, capacity = $3, facilities = $4,
			status = $5, building = $6, floor = $7, room_number = $8, updated_at = now()
		WHERE id = $9
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		query,
		room.Name,
		room.Description,
		room.Capacity,
		pq.Array(room.Facilities),
		room.Status,
		room.Location.Building,
		room.Location.Floor,
		room.Location.RoomNumber,
		room.ID,
	).Scan(&room.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("room: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("failed to update room: %w", err)
	}

	return nil
}

// Delete removes a room and, through the schema cascade, its bookings
func (r *PostgresRoomRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("room: %w", domain.ErrNotFound)
	}

	return nil
}

// List returns all rooms ordered by name
func (r *PostgresRoomRepository) List() ([]*domain.Room, error) {
	rows, err := r.db.Query(`SELECT ` + roomColumns + ` FROM rooms ORDER BY name`)
	if err != nil {
		r.logger.Error("failed to list rooms", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

// Count returns the number of rooms, used by startup seeding
func (r *PostgresRoomRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM rooms`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRoom(row rowScanner) (*domain.Room, error) {
	room := &domain.Room{}
	err := row.Scan(
		&room.ID,
		&room.Name,
		&room.Description,
		&room.Capacity,
		pq.Array(&room.Facilities),
		&room.Status,
		&room.Location.Building,
		&room.Location.Floor,
		&room.Location.RoomNumber,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return room, nil
}
