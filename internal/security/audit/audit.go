package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// maxRetained bounds the in-memory trail served to admin viewers; the full
// trail lives in the structured log stream.
const maxRetained = 256

// Entry is a single recorded audit event.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	UserID     string    `json:"userId"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resourceId,omitempty"`
	Status     string    `json:"status"`
	Details    string    `json:"details,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
}

// Logger records security-relevant actions to the structured log and keeps
// a bounded ring of recent entries for the admin audit view.
type Logger struct {
	logger *slog.Logger

	mu     sync.Mutex
	recent []Entry
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, userID, action, resource, resourceID, status, details string) {
	requestID := ""
	if reqID := ctx.Value("request_id"); reqID != nil {
		requestID = reqID.(string)
	}

	entry := Entry{
		Timestamp:  time.Now(),
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Status:     status,
		Details:    details,
		RequestID:  requestID,
	}

	al.mu.Lock()
	al.recent = append(al.recent, entry)
	if len(al.recent) > maxRetained {
		al.recent = al.recent[len(al.recent)-maxRetained:]
	}
	al.mu.Unlock()

	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("user_id", userID),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", requestID),
		slog.Time("timestamp", entry.Timestamp),
	)
}

// Recent returns up to limit retained entries, newest first. A non-positive
// limit returns everything retained.
func (al *Logger) Recent(limit int) []Entry {
	al.mu.Lock()
	defer al.mu.Unlock()

	n := len(al.recent)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		out[i] = al.recent[len(al.recent)-1-i]
	}
	return out
}

func (al *Logger) LogBookingStatusChange(ctx context.Context, userID, bookingID, from, to string) {
	al.LogAction(ctx, userID, "status_change", "booking", bookingID, "applied", from+" -> "+to)
}

func (al *Logger) LogRoomMutation(ctx context.Context, userID, action, roomID string) {
	al.LogAction(ctx, userID, action, "room", roomID, "applied", "")
}

func (al *Logger) LogAnnouncementMutation(ctx context.Context, userID, action, announcementID string) {
	al.LogAction(ctx, userID, action, "announcement", announcementID, "applied", "")
}

func (al *Logger) LogDenied(ctx context.Context, userID, reason string) {
	al.LogAction(ctx, userID, "access_denied", "api", "", "denied", reason)
}
