package timeparse

import (
	"fmt"
	"time"
)

// Resolution is the outcome of resolving a free-form date expression.
//
// When Resolved is false nothing in the text could be interpreted: Local
// and UTC both carry the raw input unchanged and the caller must treat the
// value as pass-through data, not a schedule.
type Resolution struct {
	Instant  time.Time
	Civil    CivilTime
	Local    string // canonical local string, or the raw input
	UTC      string // RFC3339 UTC, or the raw input
	Resolved bool
}

// DisplayDate renders the resolved calendar date as DD.MM.YYYY. Empty for
// unresolved input.
func (r Resolution) DisplayDate() string {
	if !r.Resolved {
		return ""
	}
	return r.Civil.Display()
}

// Resolver turns free text plus an injected "now" into an absolute instant
// and the canonical local string used for booking storage and matching.
// All methods are pure and safe for concurrent use.
type Resolver struct {
	loc    *time.Location
	parser *Parser
}

// NewResolver loads the IANA zone the club operates in.
func NewResolver(zoneName string) (*Resolver, error) {
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		return nil, fmt.Errorf("load zone %q: %w", zoneName, err)
	}
	return &Resolver{loc: loc, parser: NewParser(loc)}, nil
}

// Location returns the configured zone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Resolve is the single entry point for all booking tools. Creation,
// reschedule and cancellation all compare slots via the canonical string it
// produces, which keeps lookups self-consistent across operations.
func (r *Resolver) Resolve(text string, now time.Time) Resolution {
	expr, ok := r.parser.Parse(text, now)
	if !ok {
		return Resolution{Local: text, UTC: text}
	}
	civil := CivilTime{
		Year:   expr.Year,
		Month:  expr.Month,
		Day:    expr.Day,
		Hour:   expr.Hour,
		Minute: expr.Minute,
	}
	instant := Unproject(civil, r.loc)
	return Resolution{
		Instant:  instant,
		Civil:    civil,
		Local:    civil.Canonical(),
		UTC:      instant.UTC().Format(time.RFC3339),
		Resolved: true,
	}
}
