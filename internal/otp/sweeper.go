package otp

import (
	"context"
	"log/slog"
	"time"

	"github.com/linemk/checkout-service/internal/lib/metrics"
)

// Sweeper периодически удаляет просроченные коды из хранилища.
type Sweeper struct {
	log      *slog.Logger
	store    Store
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(log *slog.Logger, store Store, interval time.Duration) *Sweeper {
	return &Sweeper{
		log:      log,
		store:    store,
		interval: interval,
		now:      time.Now,
	}
}

// Run блокируется до отмены контекста.
func (s *Sweeper) Run(ctx context.Context) error {
	const op = "otp.Sweeper.Run"
	logger := s.log.With(slog.String("op", op))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deleted, err := s.store.PurgeExpired(ctx, s.now())
			if err != nil {
				logger.Error("failed to purge expired otp", slog.Any("error", err))
				continue
			}
			if deleted > 0 {
				metrics.OTPPurgedTotal.Add(float64(deleted))
				logger.Debug("purged expired otp records", slog.Int("deleted", deleted))
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
