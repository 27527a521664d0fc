package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/campusportal/internal/domain"
	"github.com/yourorg/campusportal/internal/security/middleware"
	"github.com/yourorg/campusportal/internal/service"
)

// MaintenanceHandler handles the maintenance request endpoints
type MaintenanceHandler struct {
	maintService *service.MaintenanceService
	logger       *slog.Logger
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(maintService *service.MaintenanceService, logger *slog.Logger) *MaintenanceHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &MaintenanceHandler{
		maintService: maintService,
		logger:       logger,
	}
}

// CreateMaintenanceRequest represents a new issue submission
type CreateMaintenanceRequest struct {
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Location    string                     `json:"location"`
	Priority    domain.MaintenancePriority `json:"priority"`
	Images      []string                   `json:"images"`
}

// Create handles POST /api/maintenance
func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	created, err := h.maintService.Create(&domain.MaintenanceRequest{
		UserID:      claims.UserID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Priority:    req.Priority,
		Images:      req.Images,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// ListMine handles GET /api/maintenance/my-requests
func (h *MaintenanceHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	reqs, err := h.maintService.ListMine(claims.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if reqs == nil {
		reqs = []*domain.MaintenanceRequest{}
	}
	writeJSON(w, http.StatusOK, reqs)
}

// ListAll handles GET /api/maintenance (admin only)
func (h *MaintenanceHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.maintService.ListAll()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if reqs == nil {
		reqs = []*domain.MaintenanceRequest{}
	}
	writeJSON(w, http.StatusOK, reqs)
}

// UpdateMaintenanceRequest carries optional field changes. Absent fields
// stay untouched; the service gates location changes to admins.
type UpdateMaintenanceRequest struct {
	Title       *string                     `json:"title"`
	Description *string                     `json:"description"`
	Location    *string                     `json:"location"`
	Priority    *domain.MaintenancePriority `json:"priority"`
	Images      *[]string                   `json:"images"`
}

// Update handles PATCH /api/maintenance/{id}; owner or admin
func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.maintService.Update(r.PathValue("id"), claims.UserID, claims.Role, service.FieldUpdates{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Priority:    req.Priority,
		Images:      req.Images,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// UpdateMaintenanceStatusRequest carries the target status and optional assignee
type UpdateMaintenanceStatusRequest struct {
	Status     domain.MaintenanceStatus `json:"status"`
	AssignedTo string                   `json:"assignedTo"`
}

// UpdateStatus handles PATCH /api/maintenance/{id}/status (admin only)
func (h *MaintenanceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateMaintenanceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.maintService.UpdateStatus(r.PathValue("id"), req.Status, req.AssignedTo)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/maintenance/{id}; owner or admin
func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.maintService.Delete(r.PathValue("id"), claims.UserID, claims.Role); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Request deleted successfully"})
}
