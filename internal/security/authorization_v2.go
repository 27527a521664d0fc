package security

import (
	"fmt"
	"log/slog"

	"github.com/yourorg/campusportal/internal/domain"
)

// ResourceType identifies the kind of resource being accessed
type ResourceType string

const (
	ResourceBooking     ResourceType = "booking"
	ResourceMaintenance ResourceType = "maintenance"
	ResourceUser        ResourceType = "user"
)

// Action identifies what operation is being performed
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// ResourcePermission checks fine-grained permissions on a specific resource
type ResourcePermission struct {
	ResourceType ResourceType
	ResourceID   string
	OwnerID      string // User ID that owns the resource
	Action       Action
}

// AuthorizationServiceV2 extends AuthorizationService with resource-level checks
type AuthorizationServiceV2 struct {
	logger *slog.Logger
}

// NewAuthorizationServiceV2 creates a new resource-aware authorization service
func NewAuthorizationServiceV2(logger *slog.Logger) *AuthorizationServiceV2 {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationServiceV2{logger: logger}
}

// ValidateResourceAccess checks if a user may act on a specific resource.
// Only the owner or an admin can touch a ledger entry.
func (a *AuthorizationServiceV2) ValidateResourceAccess(
	userID string,
	role domain.Role,
	perm ResourcePermission,
) error {
	// Admins bypass resource-level checks
	if role == domain.RoleAdmin {
		return nil
	}

	if perm.OwnerID != userID {
		a.logger.Warn("resource access denied",
			slog.String("user_id", userID),
			slog.String("resource_type", string(perm.ResourceType)),
			slog.String("resource_id", perm.ResourceID),
			slog.String("action", string(perm.Action)),
		)
		return fmt.Errorf("user %s does not own %s %s: %w",
			userID, perm.ResourceType, perm.ResourceID, domain.ErrForbidden)
	}

	return nil
}
