package domain

import "time"

// RoomStatus describes the administrative state of a room.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomBooked      RoomStatus = "booked"
	RoomMaintenance RoomStatus = "maintenance"
)

// Valid reports whether the status is a known room state.
func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomBooked, RoomMaintenance:
		return true
	}
	return false
}

// Location pinpoints a room inside campus buildings.
type Location struct {
	Building   string `json:"building"`
	Floor      string `json:"floor"`
	RoomNumber string `json:"roomNumber"`
}

// Room represents a bookable campus room
type Room struct {
	ID          string     `json:"id"` // UUID
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Capacity    int        `json:"capacity"` // must be >= 1
	Facilities  []string   `json:"facilities"`
	Status      RoomStatus `json:"status"`
	Location    Location   `json:"location"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// RoomRepository defines data access for rooms
type RoomRepository interface {
	Create(room *Room) error
	GetByID(id string) (*Room, error)
	Update(room *Room) error
	Delete(id string) error
	List() ([]*Room, error)
	Count() (int, error)
}
