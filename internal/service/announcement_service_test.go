package service

import (
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/yourorg/campusportal/internal/domain"
)

type memAnnouncementRepo struct {
	byID   map[string]*domain.Announcement
	nextID int
}

func newMemAnnouncementRepo() *memAnnouncementRepo {
	return &memAnnouncementRepo{byID: map[string]*domain.Announcement{}}
}

func (m *memAnnouncementRepo) Create(a *domain.Announcement) error {
	m.nextID++
	a.ID = fmt.Sprintf("ann-%d", m.nextID)
	a.CreatedAt = time.Now().Add(time.Duration(m.nextID) * time.Millisecond)
	a.UpdatedAt = a.CreatedAt
	m.byID[a.ID] = a
	return nil
}
func (m *memAnnouncementRepo) GetByID(id string) (*domain.Announcement, error) {
	if a, ok := m.byID[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("announcement: %w", domain.ErrNotFound)
}
func (m *memAnnouncementRepo) Update(a *domain.Announcement) error {
	if _, ok := m.byID[a.ID]; !ok {
		return fmt.Errorf("announcement: %w", domain.ErrNotFound)
	}
	a.UpdatedAt = time.Now()
	m.byID[a.ID] = a
	return nil
}
func (m *memAnnouncementRepo) Delete(id string) error { delete(m.byID, id); return nil }
func (m *memAnnouncementRepo) List() ([]*domain.Announcement, error) {
	out := []*domain.Announcement{}
	for _, a := range m.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
func (m *memAnnouncementRepo) Count() (int, error) { return len(m.byID), nil }

type notifierSpy struct {
	published []*domain.Announcement
}

func (n *notifierSpy) Publish(a *domain.Announcement) { n.published = append(n.published, a) }

func TestCreateAnnouncementDefaults(t *testing.T) {
	s := NewAnnouncementService(newMemAnnouncementRepo(), nil)
	spy := &notifierSpy{}
	s.SetNotifier(spy)

	a := &domain.Announcement{Title: "Library hours", Content: "Open until midnight during finals", AuthorID: "admin-1"}
	if err := s.Create(a); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if a.Category != domain.CategoryGeneral {
		t.Errorf("category = %q, want general default", a.Category)
	}
	if a.Priority != domain.AnnouncementMedium {
		t.Errorf("priority = %q, want medium default", a.Priority)
	}
	if len(spy.published) != 1 || spy.published[0].ID != a.ID {
		t.Error("expected the notifier to receive the new announcement")
	}
}

func TestCreateAnnouncementValidation(t *testing.T) {
	s := NewAnnouncementService(newMemAnnouncementRepo(), nil)

	cases := []domain.Announcement{
		{Content: "no title"},
		{Title: "no content"},
		{Title: "t", Content: "c", Category: "gossip"},
		{Title: "t", Content: "c", Priority: "extreme"},
	}
	for i, a := range cases {
		ann := a
		if err := s.Create(&ann); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("case %d: expected invalid input, got %v", i, err)
		}
	}
}

func TestListAnnouncementsNewestFirst(t *testing.T) {
	s := NewAnnouncementService(newMemAnnouncementRepo(), nil)

	for _, title := range []string{"first", "second", "third"} {
		if err := s.Create(&domain.Announcement{Title: title, Content: "c"}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d announcements, want 3", len(list))
	}
	if list[0].Title != "third" || list[2].Title != "first" {
		t.Errorf("expected newest first, got %q, %q, %q", list[0].Title, list[1].Title, list[2].Title)
	}
}

func TestUpdateAndDeleteAnnouncement(t *testing.T) {
	s := NewAnnouncementService(newMemAnnouncementRepo(), nil)

	a := &domain.Announcement{Title: "Gym closure", Content: "Closed Friday"}
	if err := s.Create(a); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	a.Content = "Closed Friday and Saturday"
	if err := s.Update(a); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, err := s.Get(a.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Content != "Closed Friday and Saturday" {
		t.Errorf("content = %q", got.Content)
	}

	if err := s.Delete(a.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Get(a.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
