package security

import (
	"errors"
	"testing"

	"github.com/yourorg/campusportal/internal/domain"
)

func TestRolePermissions(t *testing.T) {
	as := NewAuthorizationService(nil)

	if !as.HasPermission(domain.RoleAdmin, PermViewAuditLog) {
		t.Error("admin should hold view_audit_log")
	}
	if as.HasPermission(domain.RoleUser, PermViewAuditLog) {
		t.Error("user should not hold view_audit_log")
	}
	if !as.HasPermission(domain.RoleUser, PermCreateBooking) {
		t.Error("user should hold create_booking")
	}
	if as.HasPermission(domain.Role("ghost"), PermReadRooms) {
		t.Error("unknown role should hold nothing")
	}
}

func TestRequirePermission(t *testing.T) {
	as := NewAuthorizationService(nil)

	if err := as.RequirePermission(domain.RoleAdmin, PermManageRooms); err != nil {
		t.Errorf("admin manage_rooms: %v", err)
	}
	if err := as.RequirePermission(domain.RoleUser, PermManageRooms); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("user manage_rooms: got %v, want forbidden", err)
	}
}
