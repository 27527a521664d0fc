package handler

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yourorg/campusportal/internal/domain"
	"github.com/yourorg/campusportal/internal/observability/metrics"
)

const feedWriteTimeout = 10 * time.Second

// AnnouncementFeedHandler pushes newly created announcements to connected
// WebSocket clients. It implements service.AnnouncementNotifier.
type AnnouncementFeedHandler struct {
	logger         *slog.Logger
	allowedOrigins []string

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewAnnouncementFeedHandler creates a new feed handler
func NewAnnouncementFeedHandler(logger *slog.Logger, allowedOrigins []string) *AnnouncementFeedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AnnouncementFeedHandler{
		logger:         logger,
		allowedOrigins: allowedOrigins,
		clients:        make(map[*websocket.Conn]struct{}),
	}
}

// upgrader is initialized per-request to use instance's allowed origins
func (h *AnnouncementFeedHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Allow requests with no origin (e.g., non-browser clients)
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
}

// ServeHTTP handles GET /ws/announcements requests
func (h *AnnouncementFeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	metrics.IncrementSubscribers()

	h.logger.Debug("announcement feed client connected",
		slog.String("remote", conn.RemoteAddr().String()),
	)

	// Drain reads so close frames and pings are processed; the feed is
	// write-only from the server side.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Publish sends an announcement to every connected client. Clients that
// fail the write are dropped.
func (h *AnnouncementFeedHandler) Publish(a *domain.Announcement) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
		if err := conn.WriteJSON(a); err != nil {
			h.logger.Debug("dropping slow feed client", slog.String("error", err.Error()))
			h.drop(conn)
		}
	}
}

func (h *AnnouncementFeedHandler) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, present := h.clients[conn]
	if present {
		delete(h.clients, conn)
	}
	h.mu.Unlock()

	if present {
		metrics.DecrementSubscribers()
		conn.Close()
	}
}
