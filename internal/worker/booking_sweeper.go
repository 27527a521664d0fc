package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/campusportal/internal/domain"
	"github.com/yourorg/campusportal/internal/observability/metrics"
)

// BookingSweeper periodically closes out confirmed bookings whose end time
// has passed, keeping the completed status meaningful without touching the
// request path.
type BookingSweeper struct {
	bookingRepo domain.BookingRepository
	logger      *slog.Logger
	interval    time.Duration
}

// NewBookingSweeper creates a new booking sweeper
func NewBookingSweeper(bookingRepo domain.BookingRepository, logger *slog.Logger, interval time.Duration) *BookingSweeper {
	if logger == nil {
		logger = slog.Default()
	}

	return &BookingSweeper{
		bookingRepo: bookingRepo,
		logger:      logger,
		interval:    interval,
	}
}

// Start begins the sweep loop; it runs until the context is cancelled.
func (w *BookingSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("booking sweeper started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("booking sweeper stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *BookingSweeper) sweep() {
	count, err := w.bookingRepo.MarkCompleted(time.Now())
	if err != nil {
		w.logger.Error("booking sweep failed", slog.String("error", err.Error()))
		return
	}

	if count > 0 {
		metrics.ObserveBookingsCompleted(count)
		w.logger.Info("bookings completed", slog.Int("count", count))
	}
}
