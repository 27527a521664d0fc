package domain

import "time"

// BookingStatus describes the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Valid reports whether the status is a known booking state.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// bookingTransitions lists the legal status moves. Cancelled and completed
// are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCancelled, BookingCompleted},
}

// CanTransition reports whether a booking may move from one status to another.
// A no-op transition (same status) is allowed so repeated cancels stay idempotent.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	if s == to {
		return true
	}
	for _, next := range bookingTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Booking reserves a room for a half-open time range [StartTime, EndTime).
type Booking struct {
	ID        string        `json:"id"` // UUID
	RoomID    string        `json:"roomId"`
	UserID    string        `json:"userId"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Purpose   string        `json:"purpose"`
	Attendees int           `json:"attendees"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Overlaps reports whether the booking's range overlaps [start, end).
// Ranges that merely touch (EndTime == start) do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

// BookingRepository defines data access for bookings
type BookingRepository interface {
	// CreateIfAvailable persists the booking only if no non-cancelled
	// booking on the same room overlaps its time range. The check and the
	// insert are a single atomic write; it returns ErrConflict when the
	// slot is taken.
	CreateIfAvailable(booking *Booking) error
	GetByID(id string) (*Booking, error)
	UpdateStatus(id string, status BookingStatus) error
	ListByUser(userID string) ([]*Booking, error)
	List() ([]*Booking, error)
	// MarkCompleted flips confirmed bookings whose end time has passed to
	// completed and returns how many rows changed.
	MarkCompleted(now time.Time) (int, error)
}
