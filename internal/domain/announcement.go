package domain

import "time"

// AnnouncementCategory classifies a broadcast message.
type AnnouncementCategory string

const (
	CategoryGeneral     AnnouncementCategory = "general"
	CategoryMaintenance AnnouncementCategory = "maintenance"
	CategorySystem      AnnouncementCategory = "system"
	CategoryServices    AnnouncementCategory = "services"
	CategoryEmergency   AnnouncementCategory = "emergency"
)

// Valid reports whether the category is a known one.
func (c AnnouncementCategory) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryMaintenance, CategorySystem, CategoryServices, CategoryEmergency:
		return true
	}
	return false
}

// AnnouncementPriority ranks how prominently an announcement should surface.
type AnnouncementPriority string

const (
	AnnouncementLow    AnnouncementPriority = "low"
	AnnouncementMedium AnnouncementPriority = "medium"
	AnnouncementHigh   AnnouncementPriority = "high"
)

// Valid reports whether the priority is a known level.
func (p AnnouncementPriority) Valid() bool {
	switch p {
	case AnnouncementLow, AnnouncementMedium, AnnouncementHigh:
		return true
	}
	return false
}

// Announcement is a campus-wide broadcast written by administrators.
type Announcement struct {
	ID          string               `json:"id"` // UUID
	Title       string               `json:"title"`
	Content     string               `json:"content"`
	Category    AnnouncementCategory `json:"category"`
	Priority    AnnouncementPriority `json:"priority"`
	Attachments []string             `json:"attachments"`
	AuthorID    string               `json:"authorId,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// AnnouncementRepository defines data access for announcements
type AnnouncementRepository interface {
	Create(a *Announcement) error
	GetByID(id string) (*Announcement, error)
	Update(a *Announcement) error
	Delete(id string) error
	List() ([]*Announcement, error)
	Count() (int, error)
}
