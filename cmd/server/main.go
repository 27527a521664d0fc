package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourorg/campusportal/internal/domain"
	"github.com/yourorg/campusportal/internal/featureflags"
	"github.com/yourorg/campusportal/internal/handler"
	"github.com/yourorg/campusportal/internal/infrastructure/logger"
	"github.com/yourorg/campusportal/internal/infrastructure/redis"
	"github.com/yourorg/campusportal/internal/observability/metrics"
	"github.com/yourorg/campusportal/internal/observability/tracing"
	"github.com/yourorg/campusportal/internal/reliability/retry"
	"github.com/yourorg/campusportal/internal/repository"
	"github.com/yourorg/campusportal/internal/security"
	"github.com/yourorg/campusportal/internal/security/audit"
	"github.com/yourorg/campusportal/internal/security/auth"
	"github.com/yourorg/campusportal/internal/security/middleware"
	"github.com/yourorg/campusportal/internal/security/ratelimit"
	"github.com/yourorg/campusportal/internal/service"
	"github.com/yourorg/campusportal/internal/worker"
	"github.com/yourorg/campusportal/pkg/cache"
	"github.com/yourorg/campusportal/pkg/config"
	"github.com/yourorg/campusportal/pkg/database"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting campus portal server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, "campusportal", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Connect to PostgreSQL, retrying while the database comes up
	dbCfg := &database.Config{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	}
	pool, err := retry.Do(ctx, retry.DefaultPolicy(), log, "connect database",
		func(ctx context.Context) (*database.ConnectionPool, error) {
			return database.NewConnectionPool(ctx, dbCfg, log)
		})
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		log.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Connect to Redis (token revocation denylist)
	redisClient, err := retry.Do(ctx, retry.DefaultPolicy(), log, "connect redis",
		func(ctx context.Context) (*redis.Client, error) {
			return redis.NewClient(cfg.RedisURL)
		})
	if err != nil {
		log.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	// 6. Initialize repositories
	db := pool.GetDB()
	userRepo := repository.NewPostgresUserRepository(db, log)
	roomRepo := repository.NewPostgresRoomRepository(db, log)
	bookingRepo := repository.NewPostgresBookingRepository(db, log)
	maintRepo := repository.NewPostgresMaintenanceRepository(db, log)
	annRepo := repository.NewPostgresAnnouncementRepository(db, log)

	if cfg.SeedSampleData {
		if err := repository.SeedSampleData(roomRepo, annRepo, log); err != nil {
			log.Error("failed to seed sample data", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// 7. Initialize security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "campusportal", cfg.TokenTTL)
	revocations := auth.NewRedisRevocationStore(redisClient)
	authn := middleware.NewAuthenticator(tokenManager, revocations, log)
	authz := security.NewAuthorizationService(log)
	authzV2 := security.NewAuthorizationServiceV2(log)
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
	auditLogger := audit.NewLogger(log)

	// 8. Initialize services
	authService := service.NewAuthService(userRepo, tokenManager, revocations, log)
	var roomCache *cache.Cache[[]*domain.Room]
	if featureflags.Enabled("room_list_cache") {
		roomCache = cache.New[[]*domain.Room]()
	}
	roomService := service.NewRoomService(roomRepo, roomCache, log)
	bookingService := service.NewBookingService(bookingRepo, roomRepo, authzV2, log)
	maintService := service.NewMaintenanceService(maintRepo, userRepo, authzV2, log)
	annService := service.NewAnnouncementService(annRepo, log)

	// 9. Initialize handlers
	authHandler := handler.NewAuthHandler(authService, rateLimiter, cfg.LoginRateLimit, cfg.TrustProxyHeaders, log)
	roomsHandler := handler.NewRoomsHandler(roomService, auditLogger, log)
	bookingsHandler := handler.NewBookingsHandler(bookingService, auditLogger, log)
	maintHandler := handler.NewMaintenanceHandler(maintService, log)
	annHandler := handler.NewAnnouncementsHandler(annService, auditLogger, log)
	var feedHandler *handler.AnnouncementFeedHandler
	if featureflags.Enabled("announcement_feed") {
		feedHandler = handler.NewAnnouncementFeedHandler(log, cfg.CORSAllowedOrigins)
		annService.SetNotifier(feedHandler)
	}
	auditHandler := handler.NewAuditHandler(auditLogger, authz, log)
	healthHandler := handler.NewHealthHandler(pool, redisClient, log)

	// 10. Setup HTTP routes. Auth gates wrap per route; the strict-rate
	// middleware for login lives inside the auth handler.
	rl := middleware.RateLimitMiddleware(rateLimiter, log)
	protect := func(h http.HandlerFunc) http.Handler { return authn.RequireAuth(rl(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return authn.RequireAdmin(rl(h)) }

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("POST /api/auth/logout", protect(authHandler.Logout))
	mux.Handle("GET /api/auth/profile", protect(authHandler.Profile))
	mux.Handle("POST /api/auth/change-password", protect(authHandler.ChangePassword))

	mux.Handle("GET /api/rooms", protect(roomsHandler.List))
	mux.Handle("GET /api/rooms/{id}", protect(roomsHandler.Get))
	mux.Handle("POST /api/rooms", admin(roomsHandler.Create))
	mux.Handle("PUT /api/rooms/{id}", admin(roomsHandler.Update))
	mux.Handle("DELETE /api/rooms/{id}", admin(roomsHandler.Delete))

	mux.Handle("POST /api/bookings", protect(bookingsHandler.Create))
	mux.Handle("GET /api/bookings/my-bookings", protect(bookingsHandler.ListMine))
	mux.Handle("GET /api/bookings", admin(bookingsHandler.ListAll))
	mux.Handle("PATCH /api/bookings/{id}/status", admin(bookingsHandler.UpdateStatus))
	mux.Handle("DELETE /api/bookings/{id}", protect(bookingsHandler.Cancel))

	mux.Handle("POST /api/maintenance", protect(maintHandler.Create))
	mux.Handle("GET /api/maintenance/my-requests", protect(maintHandler.ListMine))
	mux.Handle("GET /api/maintenance", admin(maintHandler.ListAll))
	mux.Handle("PATCH /api/maintenance/{id}", protect(maintHandler.Update))
	mux.Handle("PATCH /api/maintenance/{id}/status", admin(maintHandler.UpdateStatus))
	mux.Handle("DELETE /api/maintenance/{id}", protect(maintHandler.Delete))

	mux.Handle("GET /api/announcements", protect(annHandler.List))
	mux.Handle("GET /api/announcements/{id}", protect(annHandler.Get))
	mux.Handle("POST /api/announcements", admin(annHandler.Create))
	mux.Handle("PUT /api/announcements/{id}", admin(annHandler.Update))
	mux.Handle("DELETE /api/announcements/{id}", admin(annHandler.Delete))

	// The permission check for the audit view lives in the handler
	mux.Handle("GET /api/audit", protect(auditHandler.List))

	if feedHandler != nil {
		mux.Handle("GET /ws/announcements", authn.RequireAuth(feedHandler))
	}

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", healthHandler.Live)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> content type -> CORS -> mux
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.ValidateJSONContentType(log)(handlerWithCORS),
		),
		log,
	)

	// 11. Start booking sweeper in background
	if featureflags.Enabled("booking_sweeper") {
		sweeper := worker.NewBookingSweeper(
			bookingRepo,
			log,
			time.Duration(cfg.SweepIntervalMinutes)*time.Minute,
		)
		go sweeper.Start(ctx)
	}

	// 12. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "http.server"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
		slog.String("rate_limit_window", "1m"),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop booking sweeper
	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
