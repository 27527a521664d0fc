package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/campusportal/internal/domain"
	"github.com/yourorg/campusportal/internal/security/audit"
	"github.com/yourorg/campusportal/internal/security/middleware"
	"github.com/yourorg/campusportal/internal/service"
)

// AnnouncementsHandler handles the announcement board endpoints
type AnnouncementsHandler struct {
	annService *service.AnnouncementService
	audit      *audit.Logger
	logger     *slog.Logger
}

// NewAnnouncementsHandler creates a new announcements handler
func NewAnnouncementsHandler(annService *service.AnnouncementService, auditLog *audit.Logger, logger *slog.Logger) *AnnouncementsHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AnnouncementsHandler{
		annService: annService,
		audit:      auditLog,
		logger:     logger,
	}
}

// List handles GET /api/announcements, newest first
func (h *AnnouncementsHandler) List(w http.ResponseWriter, r *http.Request) {
	announcements, err := h.annService.List()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if announcements == nil {
		announcements = []*domain.Announcement{}
	}
	writeJSON(w, http.StatusOK, announcements)
}

// Get handles GET /api/announcements/{id}
func (h *AnnouncementsHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.annService.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// AnnouncementRequest carries an announcement's caller-settable fields
type AnnouncementRequest struct {
	Title       string                      `json:"title"`
	Content     string                      `json:"content"`
	Category    domain.AnnouncementCategory `json:"category"`
	Priority    domain.AnnouncementPriority `json:"priority"`
	Attachments []string                    `json:"attachments"`
}

// Create handles POST /api/announcements (admin only)
func (h *AnnouncementsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AnnouncementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	a := &domain.Announcement{
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Priority:    req.Priority,
		Attachments: req.Attachments,
		AuthorID:    claims.UserID,
	}

	if err := h.annService.Create(a); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.audit.LogAnnouncementMutation(r.Context(), claims.UserID, "create", a.ID)
	writeJSON(w, http.StatusCreated, a)
}

// Update handles PUT /api/announcements/{id} (admin only)
func (h *AnnouncementsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	a, err := h.annService.Get(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req AnnouncementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	a.Title = req.Title
	a.Content = req.Content
	if req.Category != "" {
		a.Category = req.Category
	}
	if req.Priority != "" {
		a.Priority = req.Priority
	}
	a.Attachments = req.Attachments

	if err := h.annService.Update(a); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
		h.audit.LogAnnouncementMutation(r.Context(), claims.UserID, "update", id)
	}

	writeJSON(w, http.StatusOK, a)
}

// Delete handles DELETE /api/announcements/{id} (admin only)
func (h *AnnouncementsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.annService.Delete(id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
		h.audit.LogAnnouncementMutation(r.Context(), claims.UserID, "delete", id)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Announcement deleted successfully"})
}
