package ledger

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/molchanovartem/fitness-bot/internal/models"
)

// FailoverLedger routes operations to the primary backend and falls back
// to the secondary when the primary errors. Once marked down, the primary
// is re-probed no more often than retryInterval.
type FailoverLedger struct {
	primary  Ledger
	fallback Ledger
	logger   *zerolog.Logger

	isDown        atomic.Bool
	mu            sync.Mutex
	lastCheck     time.Time
	retryInterval time.Duration
}

func NewFailoverLedger(primary, fallback Ledger, logger *zerolog.Logger) *FailoverLedger {
	return &FailoverLedger{
		primary:       primary,
		fallback:      fallback,
		logger:        logger,
		retryInterval: time.Minute,
	}
}

// shouldTryPrimary reports whether this call goes to the primary: always
// when healthy, and once per retryInterval as a recovery probe when down.
func (f *FailoverLedger) shouldTryPrimary() bool {
	if !f.isDown.Load() {
		return true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.lastCheck) > f.retryInterval {
		f.lastCheck = time.Now()
		return true
	}
	return false
}

func (f *FailoverLedger) markResult(op string, err error) {
	if err == nil {
		if f.isDown.Swap(false) {
			f.logger.Info().Str("op", op).Msg("primary ledger recovered")
		}
		return
	}
	if !f.isDown.Swap(true) {
		f.logger.Warn().Err(err).Str("op", op).Msg("primary ledger down, using fallback")
	}
}

func (f *FailoverLedger) List(ctx context.Context) ([]models.Booking, error) {
	if f.shouldTryPrimary() {
		bookings, err := f.primary.List(ctx)
		f.markResult("list", err)
		if err == nil {
			return bookings, nil
		}
	}
	return f.fallback.List(ctx)
}

func (f *FailoverLedger) Append(ctx context.Context, b models.Booking) error {
	if f.shouldTryPrimary() {
		err := f.primary.Append(ctx, b)
		f.markResult("append", err)
		if err == nil {
			return nil
		}
	}
	return f.fallback.Append(ctx, b)
}

func (f *FailoverLedger) ReplaceAll(ctx context.Context, bookings []models.Booking) error {
	if f.shouldTryPrimary() {
		err := f.primary.ReplaceAll(ctx, bookings)
		f.markResult("replace_all", err)
		if err == nil {
			return nil
		}
	}
	return f.fallback.ReplaceAll(ctx, bookings)
}
