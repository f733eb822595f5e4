package payments

import (
	"context"
	"log/slog"
	"time"

	"github.com/cozn1l/gorosso/core/logger"
	"github.com/cozn1l/gorosso/metrics"
)

// ExpiredDeleter removes reservations older than the cutoff.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper periodically drops stale reservations whose buyers never paid.
type Sweeper struct {
	ledger   ExpiredDeleter
	ttl      time.Duration
	interval time.Duration
	metrics  *metrics.Shop
}

// NewSweeper builds a sweeper with the given reservation TTL and tick
// interval. metrics may be nil.
func NewSweeper(ledger ExpiredDeleter, ttl, interval time.Duration, m *metrics.Shop) *Sweeper {
	return &Sweeper{ledger: ledger, ttl: ttl, interval: interval, metrics: m}
}

// Run sweeps until ctx is cancelled. One sweep fires immediately on start.
func (s *Sweeper) Run(ctx context.Context) {
	logger.Sweep.Info("sweeper started",
		slog.String("event", "sweep.start"),
		slog.Duration("interval", s.interval),
		slog.Duration("ttl", s.ttl),
	)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Sweep.Info("sweeper stopped", slog.String("event", "sweep.stop"))
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.ttl)
	n, err := s.ledger.DeleteExpired(ctx, cutoff)
	if err != nil {
		logger.Sweep.Error("sweep failed",
			slog.String("event", "sweep.run"),
			slog.String("status", "error"),
			slog.String("err", err.Error()),
		)
		return
	}
	if n > 0 {
		s.metrics.AddReservationsExpired(n)
		logger.Sweep.Info("reservations expired",
			slog.String("event", "sweep.run"),
			slog.Int64("expired", n),
		)
	}
}
