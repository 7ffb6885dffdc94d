package verification

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ExpiredCodeStore drops codes whose expiry has passed.
type ExpiredCodeStore interface {
	ClearExpiredCodes(ctx context.Context, before time.Time) (int64, error)
}

// Sweeper removes expired codes so stale ones do not linger on user rows. Verify already
// rejects them; this only keeps the table clean.
type Sweeper struct {
	store  ExpiredCodeStore
	logger *slog.Logger
	now    func() time.Time
}

func NewSweeper(store ExpiredCodeStore, logger *slog.Logger) *Sweeper {
	return &Sweeper{store: store, logger: logger, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cleared, err := s.store.ClearExpiredCodes(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("sweep verification codes: %w", err)
	}
	if cleared > 0 {
		s.logger.Info("expired verification codes cleared", "count", cleared)
	}
	return cleared, nil
}
