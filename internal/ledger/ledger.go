// Package ledger persists trial-session bookings. The primary backend is a
// Google Sheets spreadsheet; a local Excel file serves as the fallback.
// Writes are load-mutate-save over the full list with no transaction
// guarantees: best effort, replace on full failure.
package ledger

import (
	"context"
	"errors"

	"github.com/molchanovartem/fitness-bot/internal/models"
)

var ErrUnavailable = errors.New("ledger unavailable")

// Ledger is the read/write contract the booking service depends on. The
// service only ever supplies canonical local strings and instants; backend
// choice is never its concern.
type Ledger interface {
	List(ctx context.Context) ([]models.Booking, error)
	Append(ctx context.Context, b models.Booking) error
	ReplaceAll(ctx context.Context, bookings []models.Booking) error
}
