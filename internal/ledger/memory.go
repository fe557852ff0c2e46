package ledger

import (
	"context"
	"sync"

	"github.com/molchanovartem/fitness-bot/internal/models"
)

// MemoryLedger is an in-process implementation for tests and dry runs.
type MemoryLedger struct {
	mu       sync.RWMutex
	bookings []models.Booking
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

func (m *MemoryLedger) List(ctx context.Context) ([]models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Booking, len(m.bookings))
	copy(out, m.bookings)
	return out, nil
}

func (m *MemoryLedger) Append(ctx context.Context, b models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = append(m.bookings, b)
	return nil
}

func (m *MemoryLedger) ReplaceAll(ctx context.Context, bookings []models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = make([]models.Booking, len(bookings))
	copy(m.bookings, bookings)
	return nil
}
