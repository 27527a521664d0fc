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

// RoomsHandler handles the room registry endpoints
type RoomsHandler struct {
	roomService *service.RoomService
	audit       *audit.Logger
	logger      *slog.Logger
}

// NewRoomsHandler creates a new rooms handler
func NewRoomsHandler(roomService *service.RoomService, auditLog *audit.Logger, logger *slog.Logger) *RoomsHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &RoomsHandler{
		roomService: roomService,
		audit:       auditLog,
		logger:      logger,
	}
}

// List handles GET /api/rooms
func (h *RoomsHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomService.List()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if rooms == nil {
		rooms = []*domain.Room{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

// Get handles GET /api/rooms/{id}
func (h *RoomsHandler) Get(w http.ResponseWriter, r *http.Request) {
	room, err := h.roomService.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// RoomRequest carries a room's caller-settable fields
type RoomRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Capacity    int               `json:"capacity"`
	Facilities  []string          `json:"facilities"`
	Status      domain.RoomStatus `json:"status"`
	Location    domain.Location   `json:"location"`
}

// Create handles POST /api/rooms (admin only)
func (h *RoomsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req RoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	room := &domain.Room{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		Facilities:  req.Facilities,
		Status:      req.Status,
		Location:    req.Location,
	}

	if err := h.roomService.Create(room); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
		h.audit.LogRoomMutation(r.Context(), claims.UserID, "create", room.ID)
	}

	writeJSON(w, http.StatusCreated, room)
}

// Update handles PUT /api/rooms/{id} (admin only)
func (h *RoomsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	room, err := h.roomService.Get(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req RoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	room.Name = req.Name
	room.Description = req.Description
	room.Capacity = req.Capacity
	room.Facilities = req.Facilities
	if req.Status != "" {
		room.Status = req.Status
	}
	room.Location = req.Location

	if err := h.roomService.Update(room); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
		h.audit.LogRoomMutation(r.Context(), claims.UserID, "update", room.ID)
	}

	writeJSON(w, http.StatusOK, room)
}

// Delete handles DELETE /api/rooms/{id} (admin only)
func (h *RoomsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.roomService.Delete(id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
		h.audit.LogRoomMutation(r.Context(), claims.UserID, "delete", id)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Room deleted successfully"})
}
