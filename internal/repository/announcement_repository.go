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

// PostgresAnnouncementRepository implements domain.AnnouncementRepository using PostgreSQL
type PostgresAnnouncementRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAnnouncementRepository creates a new announcement repository
func NewPostgresAnnouncementRepository(db *sql.DB, logger *slog.Logger) *PostgresAnnouncementRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAnnouncementRepository{
		db:     db,
		logger: logger,
	}
}

const announcementColumns = `id, title, content, category, priority,
	attachments, author_id, created_at, updated_at`

// Create inserts a new announcement
func (r *PostgresAnnouncementRepository) Create(a *domain.Announcement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	query := `
		INSERT INTO announcements (id, title, content, category, priority, attachments, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		a.ID,
		a.Title,
		a.Content,
		a.Category,
		a.Priority,
		pq.Array(a.Attachments),
		nullableID(a.AuthorID),
	).Scan(&a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create announcement",
			slog.String("title", a.Title),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create announcement: %w", err)
	}

	return nil
}

// GetByID retrieves an announcement by ID
func (r *PostgresAnnouncementRepository) GetByID(id string) (*domain.Announcement, error) {
	row := r.db.QueryRow(`SELECT `+announcementColumns+` FROM announcements WHERE id = $1`, id)

	a, err := scanAnnouncement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("announcement: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}

	return a, nil
}

// Update overwrites an announcement's mutable fields
func (r *PostgresAnnouncementRepository) Update(a *domain.Announcement) error {
	query := `
		UPDATE announcements
		SET title = $1, content = $2, category = $3, priority = $4, attachments = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		query,
		a.Title,
		a.Content,
		a.Category,
		a.Priority,
		pq.Array(a.Attachments),
		a.ID,
	).Scan(&a.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("announcement: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("failed to update announcement: %w", err)
	}

	return nil
}

// Delete removes an announcement
func (r *PostgresAnnouncementRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("announcement: %w", domain.ErrNotFound)
	}

	return nil
}

// List returns all announcements, newest first
func (r *PostgresAnnouncementRepository) List() ([]*domain.Announcement, error) {
	rows, err := r.db.Query(`SELECT ` + announcementColumns + ` FROM announcements ORDER BY created_at DESC`)
	if err != nil {
		r.logger.Error("failed to list announcements", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	var announcements []*domain.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		announcements = append(announcements, a)
	}

	return announcements, rows.Err()
}

// Count returns the number of announcements, used by startup seeding
func (r *PostgresAnnouncementRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM announcements`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count announcements: %w", err)
	}
	return count, nil
}

func scanAnnouncement(row rowScanner) (*domain.Announcement, error) {
	a := &domain.Announcement{}
	var authorID sql.NullString
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.Category,
		&a.Priority,
		pq.Array(&a.Attachments),
		&authorID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if authorID.Valid {
		a.AuthorID = authorID.String
	}
	return a, nil
}
