package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourorg/campusportal/internal/domain"
	"github.com/yourorg/campusportal/internal/security"
	"github.com/yourorg/campusportal/internal/security/audit"
	"github.com/yourorg/campusportal/internal/security/auth"
	"github.com/yourorg/campusportal/internal/security/middleware"
	"github.com/yourorg/campusportal/internal/security/ratelimit"
	"github.com/yourorg/campusportal/internal/service"
)

type stubUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	nextID  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}}
}

func (m *stubUserRepo) Create(u *domain.User) error {
	if _, exists := m.byEmail[u.Email]; exists {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	m.nextID++
	u.ID = fmt.Sprintf("u-%d", m.nextID)
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}
func (m *stubUserRepo) GetByID(id string) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
}
func (m *stubUserRepo) GetByEmail(email string) (*domain.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
}
func (m *stubUserRepo) Update(u *domain.User) error { m.byID[u.ID] = u; return nil }
func (m *stubUserRepo) Delete(id string) error      { delete(m.byID, id); return nil }
func (m *stubUserRepo) List() ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.byID {
		out = append(out, u)
	}
	return out, nil
}

type stubRoomRepo struct {
	byID   map[string]*domain.Room
	nextID int
}

func newStubRoomRepo() *stubRoomRepo { return &stubRoomRepo{byID: map[string]*domain.Room{}} }

func (m *stubRoomRepo) Create(r *domain.Room) error {
	m.nextID++
	r.ID = fmt.Sprintf("room-%d", m.nextID)
	m.byID[r.ID] = r
	return nil
}
func (m *stubRoomRepo) GetByID(id string) (*domain.Room, error) {
	if r, ok := m.byID[id]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("room: %w", domain.ErrNotFound)
}
func (m *stubRoomRepo) Update(r *domain.Room) error { m.byID[r.ID] = r; return nil }
func (m *stubRoomRepo) Delete(id string) error      { delete(m.byID, id); return nil }
func (m *stubRoomRepo) List() ([]*domain.Room, error) {
	out := []*domain.Room{}
	for _, r := range m.byID {
		out = append(out, r)
	}
	return out, nil
}
func (m *stubRoomRepo) Count() (int, error) { return len(m.byID), nil }

type stubBookingRepo struct {
	byID   map[string]*domain.Booking
	nextID int
}

func newStubBookingRepo() *stubBookingRepo {
	return &stubBookingRepo{byID: map[string]*domain.Booking{}}
}

func (m *stubBookingRepo) CreateIfAvailable(b *domain.Booking) error {
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
	m.byID[b.ID] = b
	return nil
}
func (m *stubBookingRepo) GetByID(id string) (*domain.Booking, error) {
	if b, ok := m.byID[id]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("booking: %w", domain.ErrNotFound)
}
func (m *stubBookingRepo) UpdateStatus(id string, status domain.BookingStatus) error {
	b, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("booking: %w", domain.ErrNotFound)
	}
	b.Status = status
	return nil
}
func (m *stubBookingRepo) ListByUser(userID string) ([]*domain.Booking, error) {
	out := []*domain.Booking{}
	for _, b := range m.byID {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}
func (m *stubBookingRepo) List() ([]*domain.Booking, error) {
	out := []*domain.Booking{}
	for _, b := range m.byID {
		out = append(out, b)
	}
	return out, nil
}
func (m *stubBookingRepo) MarkCompleted(now time.Time) (int, error) { return 0, nil }

type testEnv struct {
	server   *httptest.Server
	users    *stubUserRepo
	rooms    *stubRoomRepo
	bookings *stubBookingRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := newStubUserRepo()
	rooms := newStubRoomRepo()
	bookings := newStubBookingRepo()

	tokens := auth.NewTokenManager("test-secret", "campusportal", time.Hour)
	revocations := auth.NewMemoryRevocationStore()
	authn := middleware.NewAuthenticator(tokens, revocations, log)
	authz := security.NewAuthorizationServiceV2(log)
	auditLog := audit.NewLogger(log)

	authService := service.NewAuthService(users, tokens, revocations, log)
	roomService := service.NewRoomService(rooms, nil, log)
	bookingService := service.NewBookingService(bookings, rooms, authz, log)

	authHandler := NewAuthHandler(authService, nil, 10, false, log)
	roomsHandler := NewRoomsHandler(roomService, auditLog, log)
	bookingsHandler := NewBookingsHandler(bookingService, auditLog, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("POST /api/auth/logout", authn.RequireAuth(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/auth/profile", authn.RequireAuth(http.HandlerFunc(authHandler.Profile)))
	mux.Handle("GET /api/rooms", authn.RequireAuth(http.HandlerFunc(roomsHandler.List)))
	mux.Handle("POST /api/rooms", authn.RequireAdmin(http.HandlerFunc(roomsHandler.Create)))
	mux.Handle("POST /api/bookings", authn.RequireAuth(http.HandlerFunc(bookingsHandler.Create)))
	mux.Handle("GET /api/bookings/my-bookings", authn.RequireAuth(http.HandlerFunc(bookingsHandler.ListMine)))
	mux.Handle("DELETE /api/bookings/{id}", authn.RequireAuth(http.HandlerFunc(bookingsHandler.Cancel)))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{server: server, users: users, rooms: rooms, bookings: bookings}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

// register creates an account and returns a login token.
func (e *testEnv) register(t *testing.T, name, email string) string {
	t.Helper()
	resp, body := e.do(t, "POST", "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "Password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %v", email, resp.StatusCode, body)
	}
	resp, body = e.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email": email, "password": "Password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d, body %v", email, resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token in %v", email, body)
	}
	return token
}

// registerAdmin registers an account and promotes it directly in the store.
func (e *testEnv) registerAdmin(t *testing.T, email string) string {
	t.Helper()
	e.register(t, "Admin", email)
	u, err := e.users.GetByEmail(email)
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}
	u.Role = domain.RoleAdmin
	// Re-login so the token carries the admin role.
	resp, body := e.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email": email, "password": "Password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login: status %d", resp.StatusCode)
	}
	token, _ := body["token"].(string)
	return token
}

func (e *testEnv) seedRoom(t *testing.T) string {
	t.Helper()
	room := &domain.Room{Name: "Conference Room A", Description: "Large room", Capacity: 10, Status: domain.RoomAvailable}
	if err := e.rooms.Create(room); err != nil {
		t.Fatalf("seed room: %v", err)
	}
	return room.ID
}

func TestBookingFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Alice", "alice@example.edu")
	roomID := env.seedRoom(t)

	slot := func(startHour, startMin, endHour, endMin int) map[string]interface{} {
		day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		return map[string]interface{}{
			"roomId":    roomID,
			"startTime": day.Add(time.Duration(startHour)*time.Hour + time.Duration(startMin)*time.Minute).Format(time.RFC3339),
			"endTime":   day.Add(time.Duration(endHour)*time.Hour + time.Duration(endMin)*time.Minute).Format(time.RFC3339),
			"purpose":   "study group",
			"attendees": 3,
		}
	}

	// First booking lands
	resp, body := env.do(t, "POST", "/api/bookings", token, slot(10, 0, 11, 0))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first booking: status %d, body %v", resp.StatusCode, body)
	}

	// Overlapping slot is rejected with the conflict message
	resp, body = env.do(t, "POST", "/api/bookings", token, slot(10, 30, 11, 30))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("overlap: status %d, want 400", resp.StatusCode)
	}
	if msg, _ := body["message"].(string); msg != "room is already booked for this time slot" {
		t.Errorf("overlap message = %q", msg)
	}

	// A slot that merely touches the first one is fine
	resp, _ = env.do(t, "POST", "/api/bookings", token, slot(11, 0, 12, 0))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("adjacent booking: status %d, want 201", resp.StatusCode)
	}

	// Both bookings show up under my-bookings
	resp, _ = env.do(t, "GET", "/api/bookings/my-bookings", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status %d", resp.StatusCode)
	}
}

func TestCancelFreesSlotOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@example.edu")
	bob := env.register(t, "Bob", "bob@example.edu")
	roomID := env.seedRoom(t)

	booking := map[string]interface{}{
		"roomId":    roomID,
		"startTime": "2026-09-01T10:00:00Z",
		"endTime":   "2026-09-01T11:00:00Z",
	}

	resp, body := env.do(t, "POST", "/api/bookings", alice, booking)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("booking: status %d", resp.StatusCode)
	}
	bookingID, _ := body["id"].(string)

	// Bob cannot take the slot or cancel Alice's booking
	resp, _ = env.do(t, "POST", "/api/bookings", bob, booking)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("conflicting booking: status %d, want 400", resp.StatusCode)
	}
	resp, _ = env.do(t, "DELETE", "/api/bookings/"+bookingID, bob, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign cancel: status %d, want 403", resp.StatusCode)
	}

	// Alice cancels; Bob can now book
	resp, _ = env.do(t, "DELETE", "/api/bookings/"+bookingID, alice, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel: status %d", resp.StatusCode)
	}
	resp, _ = env.do(t, "POST", "/api/bookings", bob, booking)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("rebooking after cancel: status %d, want 201", resp.StatusCode)
	}
}

func TestAuthGates(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "Alice", "alice@example.edu")
	admin := env.registerAdmin(t, "root@example.edu")

	// Unauthenticated read is rejected
	resp, _ := env.do(t, "GET", "/api/rooms", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous list: status %d, want 401", resp.StatusCode)
	}

	// Authenticated read works
	resp, _ = env.do(t, "GET", "/api/rooms", user, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("user list: status %d, want 200", resp.StatusCode)
	}

	roomBody := map[string]interface{}{"name": "New Room", "description": "d", "capacity": 5}

	// Non-admin create is rejected with no side effect
	resp, _ = env.do(t, "POST", "/api/rooms", user, roomBody)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("user create room: status %d, want 403", resp.StatusCode)
	}
	if n, _ := env.rooms.Count(); n != 0 {
		t.Errorf("room count = %d after rejected create, want 0", n)
	}

	// Admin create works
	resp, _ = env.do(t, "POST", "/api/rooms", admin, roomBody)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("admin create room: status %d, want 201", resp.StatusCode)
	}
	if n, _ := env.rooms.Count(); n != 1 {
		t.Errorf("room count = %d, want 1", n)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Alice", "alice@example.edu")

	resp, body := env.do(t, "POST", "/api/auth/register", "", map[string]string{
		"name": "Imposter", "email": "alice@example.edu", "password": "Password123",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate register: status %d, want 422", resp.StatusCode)
	}
	if msg, _ := body["message"].(string); msg == "" {
		t.Error("expected an error message")
	}
}

func TestLogoutRevokesTokenOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Alice", "alice@example.edu")

	resp, _ := env.do(t, "GET", "/api/auth/profile", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile before logout: status %d", resp.StatusCode)
	}

	resp, _ = env.do(t, "POST", "/api/auth/logout", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: status %d", resp.StatusCode)
	}

	// The same token no longer works
	resp, _ = env.do(t, "GET", "/api/auth/profile", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("profile after logout: status %d, want 401", resp.StatusCode)
	}
}

func TestClientIPKeying(t *testing.T) {
	direct := &AuthHandler{}
	proxied := &AuthHandler{trustProxy: true}

	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	r.RemoteAddr = "10.0.0.9:51234"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 198.51.100.2")

	// Forwarded headers are client-settable and ignored without a proxy
	if got := direct.clientIP(r); got != "10.0.0.9" {
		t.Errorf("clientIP = %q, want remote addr host", got)
	}
	// Behind a trusted proxy only the first hop counts
	if got := proxied.clientIP(r); got != "203.0.113.7" {
		t.Errorf("clientIP = %q, want first forwarded hop", got)
	}

	r.Header.Del("X-Forwarded-For")
	if got := proxied.clientIP(r); got != "10.0.0.9" {
		t.Errorf("clientIP = %q, want remote addr fallback", got)
	}
}

func TestLoginRateLimitIgnoresForwardedHeader(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter := ratelimit.NewLimiter(100, time.Minute)
	defer limiter.Stop()

	h := &AuthHandler{limiter: limiter, loginLimit: 2, logger: log}

	attempt := func(forwarded string) int {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte("{")))
		r.RemoteAddr = "10.0.0.9:51234"
		r.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		h.Login(w, r)
		return w.Code
	}

	// Rotating the header must not reset the per-address budget
	for i, forwarded := range []string{"1.1.1.1", "2.2.2.2"} {
		if code := attempt(forwarded); code == http.StatusTooManyRequests {
			t.Fatalf("attempt %d rate limited early: status %d", i+1, code)
		}
	}
	if code := attempt("3.3.3.3"); code != http.StatusTooManyRequests {
		t.Fatalf("third attempt: status %d, want 429", code)
	}
}

func TestAuditViewRequiresPermission(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	trail := audit.NewLogger(log)
	trail.LogRoomMutation(context.Background(), "admin-1", "create", "room-1")
	trail.LogBookingStatusChange(context.Background(), "admin-1", "booking-1", "confirmed", "completed")

	h := NewAuditHandler(trail, security.NewAuthorizationService(log), log)

	view := func(role domain.Role) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/api/audit", nil)
		claims := &auth.Claims{UserID: "u-1", Role: role}
		r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsContextKey{}, claims))
		w := httptest.NewRecorder()
		h.List(w, r)
		return w
	}

	if w := view(domain.RoleUser); w.Code != http.StatusForbidden {
		t.Fatalf("user view: status %d, want 403", w.Code)
	}

	w := view(domain.RoleAdmin)
	if w.Code != http.StatusOK {
		t.Fatalf("admin view: status %d, want 200", w.Code)
	}
	var entries []audit.Entry
	if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	// Newest first
	if entries[0].Resource != "booking" || entries[1].Resource != "room" {
		t.Errorf("order = %s, %s; want booking, room", entries[0].Resource, entries[1].Resource)
	}
}
