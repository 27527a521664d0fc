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

// PostgresMaintenanceRepository implements domain.MaintenanceRepository using PostgreSQL
type PostgresMaintenanceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresMaintenanceRepository creates a new maintenance repository
func NewPostgresMaintenanceRepository(db *sql.DB, logger *slog.Logger) *PostgresMaintenanceRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMaintenanceRepository{
		db:     db,
		logger: logger,
	}
}

const maintenanceColumns = `id, user_id, title, description, location,
	priority, status, assigned_to, images, created_at, updated_at`

// Create inserts a new maintenance request
func (r *PostgresMaintenanceRepository) Create(req *domain.MaintenanceRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = domain.MaintenancePending
	}
	if req.Priority == "" {
		req.Priority = domain.PriorityMedium
	}

	query := `
		INSERT INTO maintenance_requests (id, user_id, title, description, location, priority, status, assigned_to, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		req.ID,
		req.UserID,
		req.Title,
		req.Description,
		req.Location,
		req.Priority,
		req.Status,
		nullableID(req.AssignedTo),
		pq.Array(req.Images),
	).Scan(&req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create maintenance request",
			slog.String("user_id", req.UserID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create maintenance request: %w", err)
	}

	return nil
}

// GetByID retrieves a maintenance request by ID
func (r *PostgresMaintenanceRepository) GetByID(id string) (*domain.MaintenanceRequest, error) {
	row := r.db.QueryRow(`SELECT `+maintenanceColumns+` FROM maintenance_requests WHERE id = $1`, id)

	req, err := scanMaintenance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("maintenance request: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get maintenance request: %w", err)
	}

	return req, nil
}

// Update overwrites the mutable fields of a maintenance request
func (r *PostgresMaintenanceRepository) Update(req *domain.MaintenanceRequest) error {
	query := `
		UPDATE maintenance_requests
		SET title = $1, description = $2, location = $3, priority = $4,
			status = $5, assigned_to = $6, images = $7, updated_at = now()
		WHERE id = $8
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		query,
		req.Title,
		req.Description,
		req.Location,
		req.Priority,
		req.Status,
		nullableID(req.AssignedTo),
		pq.Array(req.Images),
		req.ID,
	).Scan(&req.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("maintenance request: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("failed to update maintenance request: %w", err)
	}

	return nil
}

// Delete removes a maintenance request
func (r *PostgresMaintenanceRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM maintenance_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete maintenance request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("maintenance request: %w", domain.ErrNotFound)
	}

	return nil
}

// ListByUser returns the caller's requests, newest first
func (r *PostgresMaintenanceRepository) ListByUser(userID string) ([]*domain.MaintenanceRequest, error) {
	return r.list(`SELECT `+maintenanceColumns+` FROM maintenance_requests WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// List returns all requests sorted by priority then recency
func (r *PostgresMaintenanceRepository) List() ([]*domain.MaintenanceRequest, error) {
	query := `
		SELECT ` + maintenanceColumns + ` FROM maintenance_requests
		ORDER BY CASE priority
			WHEN 'urgent' THEN 0
			WHEN 'high' THEN 1
			WHEN 'medium' THEN 2
			ELSE 3
		END, created_at DESC
	`
	return r.list(query)
}

func (r *PostgresMaintenanceRepository) list(query string, args ...interface{}) ([]*domain.MaintenanceRequest, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to list maintenance requests", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list maintenance requests: %w", err)
	}
	defer rows.Close()

	var reqs []*domain.MaintenanceRequest
	for rows.Next() {
		req, err := scanMaintenance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan maintenance request: %w", err)
		}
		reqs = append(reqs, req)
	}

	return reqs, rows.Err()
}

func scanMaintenance(row rowScanner) (*domain.MaintenanceRequest, error) {
	req := &domain.MaintenanceRequest{}
	var assignedTo sql.NullString
	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.Title,
		&req.Description,
		&req.Location,
		&req.Priority,
		&req.Status,
		&assignedTo,
		pq.Array(&req.Images),
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if assignedTo.Valid {
		req.AssignedTo = assignedTo.String
	}
	return req, nil
}

func nullableID(id string) interface{} {
	if id == "" {
		return nil
	}
	return id
}
