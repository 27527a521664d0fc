package repository

import (
	"fmt"
	"log/slog"

	"github.com/yourorg/campusportal/internal/domain"
)

// SeedSampleData populates empty room and announcement tables with starter
// records so a fresh deployment has something to show. Tables that already
// hold data are left untouched.
func SeedSampleData(rooms domain.RoomRepository, announcements domain.AnnouncementRepository, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	roomCount, err := rooms.Count()
	if err != nil {
		return fmt.Errorf("failed to check room count: %w", err)
	}
	if roomCount == 0 {
		for _, room := range sampleRooms() {
			if err := rooms.Create(room); err != nil {
				return fmt.Errorf("failed to seed room %q: %w", room.Name, err)
			}
		}
		logger.Info("sample rooms initialized", slog.Int("count", len(sampleRooms())))
	}

	announcementCount, err := announcements.Count()
	if err != nil {
		return fmt.Errorf("failed to check announcement count: %w", err)
	}
	if announcementCount == 0 {
		for _, a := range sampleAnnouncements() {
			if err := announcements.Create(a); err != nil {
				return fmt.Errorf("failed to seed announcement %q: %w", a.Title, err)
			}
		}
		logger.Info("sample announcements initialized", slog.Int("count", len(sampleAnnouncements())))
	}

	return nil
}

func sampleRooms() []*domain.Room {
	return []*domain.Room{
		{
			Name:        "Conference Room A",
			Description: "Large conference room with projector and whiteboard",
			Capacity:    20,
			Facilities:  []string{"Projector", "Whiteboard", "Video Conferencing"},
			Status:      domain.RoomAvailable,
		},
		{
			Name:        "Study Room B",
			Description: "Quiet study room with individual workstations",
			Capacity:    10,
			Facilities:  []string{"Computers", "WiFi", "Printing"},
			Status:      domain.RoomAvailable,
		},
		{
			Name:        "Meeting Room C",
			Description: "Small meeting room for team discussions",
			Capacity:    8,
			Facilities:  []string{"TV Screen", "Whiteboard"},
			Status:      domain.RoomAvailable,
		},
	}
}

func sampleAnnouncements() []*domain.Announcement {
	return []*domain.Announcement{
		{
			Title:    "Campus Maintenance Notice",
			Content:  "The library will be closed for maintenance this weekend. Please plan accordingly.",
			Category: domain.CategoryMaintenance,
			Priority: domain.AnnouncementHigh,
		},
		{
			Title:    "New Study Room Booking System",
			Content:  "We have implemented a new online booking system for study rooms. Please check the portal for more details.",
			Category: domain.CategorySystem,
			Priority: domain.AnnouncementMedium,
		},
		{
			Title:    "Holiday Schedule",
			Content:  "The campus will be closed during the upcoming holidays. Please check the schedule for specific dates.",
			Category: domain.CategoryGeneral,
			Priority: domain.AnnouncementMedium,
		},
		{
			Title:    "WiFi Upgrade",
			Content:  "Campus WiFi will be upgraded to provide better connectivity. Brief interruptions may occur.",
			Category: domain.CategoryMaintenance,
			Priority: domain.AnnouncementLow,
		},
		{
			Title:    "Student Services Update",
			Content:  "New services are now available at the student center. Visit us to learn more!",
			Category: domain.CategoryServices,
			Priority: domain.AnnouncementMedium,
		},
	}
}
