package security

import (
	"fmt"
	"log/slog"

	"github.com/yourorg/campusportal/internal/domain"
)

// Permission represents an action permission
type Permission string

const (
	PermReadRooms            Permission = "read_rooms"
	PermManageRooms          Permission = "manage_rooms"
	PermCreateBooking        Permission = "create_booking"
	PermListAllBookings      Permission = "list_all_bookings"
	PermManageBookingStatus  Permission = "manage_booking_status"
	PermCreateMaintenance    Permission = "create_maintenance"
	PermListAllMaintenance   Permission = "list_all_maintenance"
	PermManageMaintenance    Permission = "manage_maintenance"
	PermReadAnnouncements    Permission = "read_announcements"
	PermManageAnnouncements  Permission = "manage_announcements"
	PermViewAuditLog         Permission = "view_audit_log"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[domain.Role][]Permission{
	domain.RoleAdmin: {
		PermReadRooms,
		PermManageRooms,
		PermCreateBooking,
		PermListAllBookings,
		PermManageBookingStatus,
		PermCreateMaintenance,
		PermListAllMaintenance,
		PermManageMaintenance,
		PermReadAnnouncements,
		PermManageAnnouncements,
		PermViewAuditLog,
	},
	domain.RoleUser: {
		PermReadRooms,
		PermCreateBooking,
		PermCreateMaintenance,
		PermReadAnnouncements,
	},
}

// AuthorizationService handles authorization checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{logger: logger}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role domain.Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// RequirePermission returns an error when the role lacks the permission
func (as *AuthorizationService) RequirePermission(role domain.Role, permission Permission) error {
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("permission", string(permission)),
		)
		return fmt.Errorf("role %s lacks permission %s: %w", role, permission, domain.ErrForbidden)
	}
	return nil
}
