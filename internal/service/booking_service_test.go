package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/yourorg/campusportal/internal/domain"
	"github.com/yourorg/campusportal/internal/security"
)

type memRoomRepo struct {
	byID   map[string]*domain.Room
	nextID int
}

func newMemRoomRepo() *memRoomRepo {
	return &memRoomRepo{byID: map[string]*domain.Room{}}
}

func (m *memRoomRepo) Create(r *domain.Room) error {
	if r.ID == "" {
		m.nextID++
		r.ID = fmt.Sprintf("room-%d", m.nextID)
	}
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	m.byID[r.ID] = r
	return nil
}
func (m *memRoomRepo) GetByID(id string) (*domain.Room, error) {
	if r, ok := m.byID[id]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("room: %w", domain.ErrNotFound)
}
func (m *memRoomRepo) Update(r *domain.Room) error {
	if _, ok := m.byID[r.ID]; !ok {
		return fmt.Errorf("room: %w", domain.ErrNotFound)
	}
	r.UpdatedAt = time.Now()
	m.byID[r.ID] = r
	return nil
}
func (m *memRoomRepo) Delete(id string) error { delete(m.byID, id); return nil }
func (m *memRoomRepo) List() ([]*domain.Room, error) {
	out := []*domain.Room{}
	for _, r := range m.byID {
		out = append(out, r)
	}
	return out, nil
}
func (m *memRoomRepo) Count() (int, error) { return len(m.byID), nil }

type memBookingRepo struct {
	byID   map[string]*domain.Booking
	nextID int
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{byID: map[string]*domain.Booking{}}
}

func (m *memBookingRepo) CreateIfAvailable(b *domain.Booking) error {
	for _, other := range m.byID {
		if other.RoomID != b.RoomID || other.Status == domain.BookingCancelled {
			continue
		}
		if other.Overlaps(b.StartTime, b.EndTime) {
			return fmt.Errorf("room is already booked for this time slot: %w", domain.ErrConflict)
		}
	}
	m.nextID++
	b.ID = fmt.Sprintf("booking-%d", m.nextID)
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.byID[b.ID] = b
	return nil
}
func (m *memBookingRepo) GetByID(id string) (*domain.Booking, error) {
	if b, ok := m.byID[id]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("booking: %w", domain.ErrNotFound)
}
func (m *memBookingRepo) UpdateStatus(id string, status domain.BookingStatus) error {
	b, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("booking: %w", domain.ErrNotFound)
	}
	b.Status = status
	b.UpdatedAt = time.Now()
	return nil
}
func (m *memBookingRepo) ListByUser(userID string) ([]*domain.Booking, error) {
	out := []*domain.Booking{}
	for _, b := range m.byID {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}
func (m *memBookingRepo) List() ([]*domain.Booking, error) {
	out := []*domain.Booking{}
	for _, b := range m.byID {
		out = append(out, b)
	}
	return out, nil
}
func (m *memBookingRepo) MarkCompleted(now time.Time) (int, error) {
	n := 0
	for _, b := range m.byID {
		if b.Status == domain.BookingConfirmed && !b.EndTime.After(now) {
			b.Status = domain.BookingCompleted
			n++
		}
	}
	return n, nil
}

func newBookingFixture(t *testing.T) (*BookingService, *memBookingRepo, string) {
	t.Helper()
	rooms := newMemRoomRepo()
	room := &domain.Room{Name: "Conference Room A", Description: "Large room", Capacity: 10, Status: domain.RoomAvailable}
	if err := rooms.Create(room); err != nil {
		t.Fatalf("seed room: %v", err)
	}
	bookings := newMemBookingRepo()
	s := NewBookingService(bookings, rooms, security.NewAuthorizationServiceV2(nil), nil)
	return s, bookings, room.ID
}

func at(hour int) time.Time {
	return time.Date(2026, 9, 1, hour, 0, 0, 0, time.UTC)
}

func atMin(hour, min int) time.Time {
	return time.Date(2026, 9, 1, hour, min, 0, 0, time.UTC)
}

func TestCreateBooking(t *testing.T) {
	s, _, roomID := newBookingFixture(t)

	b, err := s.Create(CreateRequest{
		RoomID: roomID, UserID: "user-1",
		StartTime: at(10), EndTime: at(11),
		Purpose: "study group", Attendees: 4,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if b.ID == "" {
		t.Fatal("expected booking id")
	}
	if b.Status != domain.BookingPending {
		t.Errorf("status = %q, want pending", b.Status)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	s, _, roomID := newBookingFixture(t)

	cases := []struct {
		name string
		req  CreateRequest
	}{
		{"missing room", CreateRequest{UserID: "user-1", StartTime: at(10), EndTime: at(11)}},
		{"missing user", CreateRequest{RoomID: roomID, StartTime: at(10), EndTime: at(11)}},
		{"zero times", CreateRequest{RoomID: roomID, UserID: "user-1"}},
		{"start equals end", CreateRequest{RoomID: roomID, UserID: "user-1", StartTime: at(10), EndTime: at(10)}},
		{"start after end", CreateRequest{RoomID: roomID, UserID: "user-1", StartTime: at(11), EndTime: at(10)}},
		{"negative attendees", CreateRequest{RoomID: roomID, UserID: "user-1", StartTime: at(10), EndTime: at(11), Attendees: -1}},
	}
	for _, c := range cases {
		if _, err := s.Create(c.req); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%s: expected invalid input, got %v", c.name, err)
		}
	}

	// Unknown room
	if _, err := s.Create(CreateRequest{RoomID: "missing", UserID: "user-1", StartTime: at(10), EndTime: at(11)}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown room: expected not found, got %v", err)
	}
}

func TestBookingOverlapConflicts(t *testing.T) {
	s, _, roomID := newBookingFixture(t)

	mustBook := func(start, end time.Time) *domain.Booking {
		t.Helper()
		b, err := s.Create(CreateRequest{RoomID: roomID, UserID: "user-1", StartTime: start, EndTime: end})
		if err != nil {
			t.Fatalf("booking %v-%v failed: %v", start, end, err)
		}
		return b
	}
	mustConflict := func(start, end time.Time) {
		t.Helper()
		if _, err := s.Create(CreateRequest{RoomID: roomID, UserID: "user-2", StartTime: start, EndTime: end}); !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("booking %v-%v: expected conflict, got %v", start, end, err)
		}
	}

	mustBook(at(10), at(11))

	// Every way a range can overlap [10:00, 11:00)
	mustConflict(atMin(10, 30), atMin(11, 30)) // overlaps the tail
	mustConflict(atMin(9, 30), atMin(10, 30))  // overlaps the head
	mustConflict(atMin(10, 15), atMin(10, 45)) // contained
	mustConflict(at(9), at(12))                // contains
	mustConflict(at(10), at(11))               // identical

	// Touching ranges do not conflict
	mustBook(at(9), at(10))
	mustBook(at(11), at(12))
}

func TestBookingConflictScopesToRoom(t *testing.T) {
	rooms := newMemRoomRepo()
	roomA := &domain.Room{Name: "A", Description: "room", Capacity: 4}
	roomB := &domain.Room{Name: "B", Description: "room", Capacity: 4}
	rooms.Create(roomA)
	rooms.Create(roomB)
	s := NewBookingService(newMemBookingRepo(), rooms, security.NewAuthorizationServiceV2(nil), nil)

	if _, err := s.Create(CreateRequest{RoomID: roomA.ID, UserID: "user-1", StartTime: at(10), EndTime: at(11)}); err != nil {
		t.Fatalf("room A booking failed: %v", err)
	}
	if _, err := s.Create(CreateRequest{RoomID: roomB.ID, UserID: "user-2", StartTime: at(10), EndTime: at(11)}); err != nil {
		t.Errorf("same slot in another room should not conflict: %v", err)
	}
}

func TestCancelledBookingFreesSlot(t *testing.T) {
	s, _, roomID := newBookingFixture(t)

	b, err := s.Create(CreateRequest{RoomID: roomID, UserID: "user-1", StartTime: at(10), EndTime: at(11)})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.Cancel(b.ID, "user-1", domain.RoleUser); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if _, err := s.Create(CreateRequest{RoomID: roomID, UserID: "user-2", StartTime: at(10), EndTime: at(11)}); err != nil {
		t.Errorf("cancelled booking should not block the slot: %v", err)
	}
}

func TestCancelOwnershipAndIdempotence(t *testing.T) {
	s, repo, roomID := newBookingFixture(t)

	b, err := s.Create(CreateRequest{RoomID: roomID, UserID: "user-1", StartTime: at(10), EndTime: at(11)})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// A different non-admin user may not cancel
	if err := s.Cancel(b.ID, "user-2", domain.RoleUser); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// The owner may; repeating is a no-op
	if err := s.Cancel(b.ID, "user-1", domain.RoleUser); err != nil {
		t.Fatalf("owner cancel failed: %v", err)
	}
	if err := s.Cancel(b.ID, "user-1", domain.RoleUser); err != nil {
		t.Fatalf("repeated cancel should be a no-op: %v", err)
	}

	got, _ := repo.GetByID(b.ID)
	if got.Status != domain.BookingCancelled {
		t.Errorf("status = %q, want cancelled", got.Status)
	}

	// An admin may cancel someone else's booking
	b2, err := s.Create(CreateRequest{RoomID: roomID, UserID: "user-1", StartTime: at(12), EndTime: at(13)})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.Cancel(b2.ID, "admin-1", domain.RoleAdmin); err != nil {
		t.Errorf("admin cancel failed: %v", err)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	s, _, roomID := newBookingFixture(t)

	b, err := s.Create(CreateRequest{RoomID: roomID, UserID: "user-1", StartTime: at(10), EndTime: at(11)})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// pending -> completed skips confirmation
	if _, err := s.UpdateStatus(b.ID, domain.BookingCompleted); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	// pending -> confirmed -> completed
	if _, err := s.UpdateStatus(b.ID, domain.BookingConfirmed); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := s.UpdateStatus(b.ID, domain.BookingCompleted); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	// completed is terminal
	if _, err := s.UpdateStatus(b.ID, domain.BookingConfirmed); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition out of completed, got %v", err)
	}

	// unknown status
	if _, err := s.UpdateStatus(b.ID, domain.BookingStatus("sideways")); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown status, got %v", err)
	}
}

func TestMarkCompletedSweep(t *testing.T) {
	s, repo, roomID := newBookingFixture(t)

	past, err := s.Create(CreateRequest{RoomID: roomID, UserID: "user-1", StartTime: at(8), EndTime: at(9)})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	future, err := s.Create(CreateRequest{RoomID: roomID, UserID: "user-1", StartTime: at(15), EndTime: at(16)})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for _, id := range []string{past.ID, future.ID} {
		if _, err := s.UpdateStatus(id, domain.BookingConfirmed); err != nil {
			t.Fatalf("confirm failed: %v", err)
		}
	}

	n, err := repo.MarkCompleted(at(12))
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if n != 1 {
		t.Errorf("swept %d bookings, want 1", n)
	}

	got, _ := repo.GetByID(past.ID)
	if got.Status != domain.BookingCompleted {
		t.Errorf("past booking status = %q, want completed", got.Status)
	}
	got, _ = repo.GetByID(future.ID)
	if got.Status != domain.BookingConfirmed {
		t.Errorf("future booking status = %q, want confirmed", got.Status)
	}
}
