package service

import (
	"fmt"
	"log/slog"

	"github.com/yourorg/campusportal/internal/domain"
)

// AnnouncementNotifier receives newly published announcements, e.g. the
// websocket feed hub. Implementations must not block.
type AnnouncementNotifier interface {
	Publish(a *domain.Announcement)
}

// AnnouncementService manages the announcement board
type AnnouncementService struct {
	annRepo  domain.AnnouncementRepository
	notifier AnnouncementNotifier
	logger   *slog.Logger
}

// NewAnnouncementService creates a new announcement service
func NewAnnouncementService(annRepo domain.AnnouncementRepository, logger *slog.Logger) *AnnouncementService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AnnouncementService{
		annRepo: annRepo,
		logger:  logger,
	}
}

// SetNotifier attaches a live-feed sink for newly created announcements.
func (s *AnnouncementService) SetNotifier(n AnnouncementNotifier) {
	s.notifier = n
}

func validateAnnouncement(a *domain.Announcement) error {
	if a.Title == "" || a.Content == "" {
		return fmt.Errorf("title and content are required: %w", domain.ErrInvalidInput)
	}
	if a.Category != "" && !a.Category.Valid() {
		return fmt.Errorf("unknown category %q: %w", a.Category, domain.ErrInvalidInput)
	}
	if a.Priority != "" && !a.Priority.Valid() {
		return fmt.Errorf("unknown priority %q: %w", a.Priority, domain.ErrInvalidInput)
	}
	return nil
}

// Create publishes a new announcement
func (s *AnnouncementService) Create(a *domain.Announcement) error {
	if err := validateAnnouncement(a); err != nil {
		return err
	}
	if a.Category == "" {
		a.Category = domain.CategoryGeneral
	}
	if a.Priority == "" {
		a.Priority = domain.AnnouncementMedium
	}

	if err := s.annRepo.Create(a); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.Publish(a)
	}

	s.logger.Info("announcement created",
		slog.String("announcement_id", a.ID),
		slog.String("category", string(a.Category)),
	)

	return nil
}

// Get returns an announcement by ID
func (s *AnnouncementService) Get(id string) (*domain.Announcement, error) {
	return s.annRepo.GetByID(id)
}

// List returns all announcements, newest first
func (s *AnnouncementService) List() ([]*domain.Announcement, error) {
	return s.annRepo.List()
}

// Update overwrites an announcement's fields
func (s *AnnouncementService) Update(a *domain.Announcement) error {
	if err := validateAnnouncement(a); err != nil {
		return err
	}
	if err := s.annRepo.Update(a); err != nil {
		return err
	}
	s.logger.Info("announcement updated", slog.String("announcement_id", a.ID))
	return nil
}

// Delete removes an announcement
func (s *AnnouncementService) Delete(id string) error {
	if err := s.annRepo.Delete(id); err != nil {
		return err
	}
	s.logger.Info("announcement deleted", slog.String("announcement_id", id))
	return nil
}
