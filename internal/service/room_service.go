package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/campusportal/internal/domain"
	"github.com/yourorg/campusportal/pkg/cache"
)

const roomListCacheKey = "rooms:list"
const roomListCacheTTL = 30 * time.Second

// RoomService manages the room registry
type RoomService struct {
	roomRepo domain.RoomRepository
	cache    *cache.Cache[[]*domain.Room]
	logger   *slog.Logger
}

// NewRoomService creates a new room service. A nil cache disables list
// caching.
func NewRoomService(roomRepo domain.RoomRepository, c *cache.Cache[[]*domain.Room], logger *slog.Logger) *RoomService {
	if logger == nil {
		logger = slog.Default()
	}

	return &RoomService{
		roomRepo: roomRepo,
		cache:    c,
		logger:   logger,
	}
}

func validateRoom(room *domain.Room) error {
	if room.Name == "" || room.Description == "" {
		return fmt.Errorf("name and description are required: %w", domain.ErrInvalidInput)
	}
	if room.Capacity < 1 {
		return fmt.Errorf("capacity must be at least 1: %w", domain.ErrInvalidInput)
	}
	if room.Status != "" && !room.Status.Valid() {
		return fmt.Errorf("unknown room status %q: %w", room.Status, domain.ErrInvalidInput)
	}
	return nil
}

// Create adds a new room to the registry
func (s *RoomService) Create(room *domain.Room) error {
	if err := validateRoom(room); err != nil {
		return err
	}
	if err := s.roomRepo.Create(room); err != nil {
		return err
	}
	s.invalidate()
	s.logger.Info("room created", slog.String("room_id", room.ID), slog.String("name", room.Name))
	return nil
}

// Get returns a room by ID
func (s *RoomService) Get(id string) (*domain.Room, error) {
	return s.roomRepo.GetByID(id)
}

// List returns all rooms, served from a short-lived cache when one is
// configured
func (s *RoomService) List() ([]*domain.Room, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(roomListCacheKey); ok {
			return cached, nil
		}
	}

	rooms, err := s.roomRepo.List()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(roomListCacheKey, rooms, roomListCacheTTL)
	}
	return rooms, nil
}

// Update overwrites a room's fields
func (s *RoomService) Update(room *domain.Room) error {
	if err := validateRoom(room); err != nil {
		return err
	}
	if err := s.roomRepo.Update(room); err != nil {
		return err
	}
	s.invalidate()
	s.logger.Info("room updated", slog.String("room_id", room.ID))
	return nil
}

// Delete removes a room
func (s *RoomService) Delete(id string) error {
	if err := s.roomRepo.Delete(id); err != nil {
		return err
	}
	s.invalidate()
	s.logger.Info("room deleted", slog.String("room_id", id))
	return nil
}

func (s *RoomService) invalidate() {
	if s.cache != nil {
		s.cache.Delete(roomListCacheKey)
	}
}
