// Package models holds the booking record shared by the ledger backends
// and the booking service.
package models

import (
	"strings"
	"time"
)

// Booking statuses. A user has at most one active booking at a time; the
// invariant is enforced by the booking service, not by the ledger.
const (
	StatusActive   = "active"
	StatusCanceled = "canceled"
)

// Booking is a trial-session record. When is the canonical zone-local
// string (YYYY-MM-DDTHH:MM:SS) produced by the resolver; it is the storage
// and comparison key, never a zone-annotated timestamp.
type Booking struct {
	ID              string     `json:"id"`
	UserID          int64      `json:"user_id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	PhoneNormalized string     `json:"phone_normalized"`
	When            string     `json:"when"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
	CanceledAt      *time.Time `json:"canceled_at,omitempty"`
}

// IsActive reports whether the booking still counts against the
// one-active-booking-per-user limit.
func (b *Booking) IsActive() bool {
	return b.Status == StatusActive
}

// NormalizePhone strips everything but digits and maps the Russian 8-prefix
// to 7, so that "8 (913) 123-45-67" and "+79131234567" compare equal.
func NormalizePhone(raw string) string {
	var sb strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	digits := sb.String()
	if len(digits) == 11 && digits[0] == '8' {
		digits = "7" + digits[1:]
	}
	return digits
}
