package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/campusportal/internal/security"
	"github.com/yourorg/campusportal/internal/security/audit"
	"github.com/yourorg/campusportal/internal/security/middleware"
)

// AuditHandler exposes the recent audit trail to roles holding the
// view_audit_log permission.
type AuditHandler struct {
	auditLog *audit.Logger
	authz    *security.AuthorizationService
	logger   *slog.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditLog *audit.Logger, authz *security.AuthorizationService, logger *slog.Logger) *AuditHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuditHandler{
		auditLog: auditLog,
		authz:    authz,
		logger:   logger,
	}
}

// List handles GET /api/audit. Accepts an optional ?limit= query parameter.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.authz.RequirePermission(claims.Role, security.PermViewAuditLog); err != nil {
		writeError(w, h.logger, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeMessage(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	writeJSON(w, http.StatusOK, h.auditLog.Recent(limit))
}
