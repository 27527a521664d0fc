package service

import (
	"fmt"
	"log/slog"

	"github.com/yourorg/campusportal/internal/domain"
	"github.com/yourorg/campusportal/internal/security"
)

// MaintenanceService manages the maintenance request ledger
type MaintenanceService struct {
	maintRepo domain.MaintenanceRepository
	userRepo  domain.UserRepository
	authz     *security.AuthorizationServiceV2
	logger    *slog.Logger
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(
	maintRepo domain.MaintenanceRepository,
	userRepo domain.UserRepository,
	authz *security.AuthorizationServiceV2,
	logger *slog.Logger,
) *MaintenanceService {
	if logger == nil {
		logger = slog.Default()
	}

	return &MaintenanceService{
		maintRepo: maintRepo,
		userRepo:  userRepo,
		authz:     authz,
		logger:    logger,
	}
}

// Create files a new maintenance request owned by the caller
func (s *MaintenanceService) Create(req *domain.MaintenanceRequest) (*domain.MaintenanceRequest, error) {
	if req.UserID == "" || req.Title == "" {
		return nil, fmt.Errorf("user and title are required: %w", domain.ErrInvalidInput)
	}
	if req.Priority != "" && !req.Priority.Valid() {
		return nil, fmt.Errorf("unknown priority %q: %w", req.Priority, domain.ErrInvalidInput)
	}

	req.Status = domain.MaintenancePending
	req.AssignedTo = ""

	if err := s.maintRepo.Create(req); err != nil {
		return nil, err
	}

	s.logger.Info("maintenance request created",
		slog.String("request_id", req.ID),
		slog.String("user_id", req.UserID),
		slog.String("priority", string(req.Priority)),
	)

	return req, nil
}

// ListMine returns the caller's requests
func (s *MaintenanceService) ListMine(userID string) ([]*domain.MaintenanceRequest, error) {
	return s.maintRepo.ListByUser(userID)
}

// ListAll returns every request, highest priority first
func (s *MaintenanceService) ListAll() ([]*domain.MaintenanceRequest, error) {
	return s.maintRepo.List()
}

// Get returns a request by ID
func (s *MaintenanceService) Get(id string) (*domain.MaintenanceRequest, error) {
	return s.maintRepo.GetByID(id)
}

// FieldUpdates carries optional field changes for a request. Nil pointers
// leave the existing value in place.
type FieldUpdates struct {
	Title       *string
	Description *string
	Location    *string
	Priority    *domain.MaintenancePriority
	Images      *[]string
}

// Update applies field changes after an ownership check. Non-admin callers
// are restricted to the editable allow-list (title, description, priority,
// images); location, status and assignee require elevated access.
func (s *MaintenanceService) Update(id, callerID string, role domain.Role, updates FieldUpdates) (*domain.MaintenanceRequest, error) {
	req, err := s.maintRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.authz.ValidateResourceAccess(callerID, role, security.ResourcePermission{
		ResourceType: security.ResourceMaintenance,
		ResourceID:   id,
		OwnerID:      req.UserID,
		Action:       security.ActionWrite,
	}); err != nil {
		return nil, err
	}

	if updates.Title != nil {
		req.Title = *updates.Title
	}
	if updates.Description != nil {
		req.Description = *updates.Description
	}
	if updates.Location != nil {
		// Location identifies the asset being serviced and is not part of
		// the owner-editable field set.
		if role != domain.RoleAdmin {
			return nil, fmt.Errorf("only admins can change the location: %w", domain.ErrForbidden)
		}
		req.Location = *updates.Location
	}
	if updates.Priority != nil {
		if !updates.Priority.Valid() {
			return nil, fmt.Errorf("unknown priority %q: %w", *updates.Priority, domain.ErrInvalidInput)
		}
		req.Priority = *updates.Priority
	}
	if updates.Images != nil {
		req.Images = *updates.Images
	}

	if req.Title == "" {
		return nil, fmt.Errorf("title cannot be empty: %w", domain.ErrInvalidInput)
	}

	if err := s.maintRepo.Update(req); err != nil {
		return nil, err
	}

	s.logger.Info("maintenance request updated",
		slog.String("request_id", id),
		slog.String("updated_by", callerID),
	)

	return req, nil
}

// UpdateStatus moves a request to a new status and optionally assigns it.
// Admin only; transitions follow the lifecycle table.
func (s *MaintenanceService) UpdateStatus(id string, status domain.MaintenanceStatus, assignedTo string) (*domain.MaintenanceRequest, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown maintenance status %q: %w", status, domain.ErrInvalidInput)
	}

	req, err := s.maintRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !req.Status.CanTransition(status) {
		return nil, fmt.Errorf("cannot move request from %s to %s: %w",
			req.Status, status, domain.ErrInvalidTransition)
	}

	if assignedTo != "" {
		if _, err := s.userRepo.GetByID(assignedTo); err != nil {
			return nil, fmt.Errorf("assignee: %w", domain.ErrInvalidInput)
		}
		req.AssignedTo = assignedTo
	}
	req.Status = status

	if err := s.maintRepo.Update(req); err != nil {
		return nil, err
	}

	s.logger.Info("maintenance status updated",
		slog.String("request_id", id),
		slog.String("status", string(status)),
		slog.String("assigned_to", req.AssignedTo),
	)

	return req, nil
}

// Delete removes a request after an ownership check
func (s *MaintenanceService) Delete(id, callerID string, role domain.Role) error {
	req, err := s.maintRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.authz.ValidateResourceAccess(callerID, role, security.ResourcePermission{
		ResourceType: security.ResourceMaintenance,
		ResourceID:   id,
		OwnerID:      req.UserID,
		Action:       security.ActionDelete,
	}); err != nil {
		return err
	}

	if err := s.maintRepo.Delete(id); err != nil {
		return err
	}

	s.logger.Info("maintenance request deleted",
		slog.String("request_id", id),
		slog.String("deleted_by", callerID),
	)

	return nil
}
