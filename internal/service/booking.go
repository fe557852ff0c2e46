// Package service implements the trial-session booking tools on top of the
// temporal resolver and the ledger. Each action runs the same short state
// machine: received, clarification check, resolve, persist, acknowledge.
// A clarification stops the turn without touching stored state; the next
// message starts fresh.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/molchanovartem/fitness-bot/internal/audit"
	"github.com/molchanovartem/fitness-bot/internal/events"
	"github.com/molchanovartem/fitness-bot/internal/ledger"
	"github.com/molchanovartem/fitness-bot/internal/metrics"
	"github.com/molchanovartem/fitness-bot/internal/models"
	"github.com/molchanovartem/fitness-bot/internal/timeparse"
)

// Outcome classifies how a booking action ended.
type Outcome int

const (
	OutcomeBooked Outcome = iota
	OutcomeRescheduled
	OutcomeCanceled
	OutcomeClarificationNeeded
	OutcomeUnresolvedDate
	OutcomeAlreadyBooked
	OutcomeNoActiveBooking
	OutcomeNoMatchingSlot
)

// Result carries the user-facing reply for a finished action. Confirmation
// messages show the calendar date only; the time component is defaulted
// silently and never echoed back.
type Result struct {
	Outcome Outcome
	Message string
	Booking *models.Booking
}

// ActionRecorder is the audit-trail hook; nil disables auditing.
type ActionRecorder interface {
	Record(ctx context.Context, e audit.Entry) error
}

// Clock supplies "now"; injectable so resolution is deterministic in tests.
type Clock func() time.Time

type Service struct {
	ledger   ledger.Ledger
	resolver *timeparse.Resolver
	bus      *events.Bus
	recorder ActionRecorder
	logger   *zerolog.Logger
	now      Clock
}

func New(l ledger.Ledger, r *timeparse.Resolver, bus *events.Bus, rec ActionRecorder, logger *zerolog.Logger) *Service {
	return &Service{
		ledger:   l,
		resolver: r,
		bus:      bus,
		recorder: rec,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the now source, for tests.
func (s *Service) WithClock(c Clock) *Service {
	s.now = c
	return s
}

// CreateTrial books a trial session. At most one active booking per user.
func (s *Service) CreateTrial(ctx context.Context, userID int64, name, phone, rawWhen string) (Result, error) {
	now := s.now()

	if s.resolver.RequiresClarification(rawWhen, now) {
		return s.clarify(ctx, userID, rawWhen, now), nil
	}

	res := s.resolver.Resolve(rawWhen, now)
	if !res.Resolved {
		metrics.IncDateUnresolved()
		return Result{
			Outcome: OutcomeUnresolvedDate,
			Message: "Не получилось разобрать дату. Напишите, пожалуйста, дату в формате ДД.ММ.ГГГГ, например 05.10.2025.",
		}, nil
	}

	bookings, err := s.ledger.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list bookings: %w", err)
	}
	if existing := findActive(bookings, userID); existing != nil {
		return Result{
			Outcome: OutcomeAlreadyBooked,
			Message: fmt.Sprintf(
				"У вас уже есть запись на %s. Одновременно может быть только одна активная запись — её можно перенести или отменить.",
				s.displayDate(existing.When),
			),
			Booking: existing,
		}, nil
	}

	b := models.Booking{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            name,
		Phone:           phone,
		PhoneNormalized: models.NormalizePhone(phone),
		When:            res.Local,
		Status:          models.StatusActive,
		CreatedAt:       now.UTC(),
	}
	if err := s.ledger.Append(ctx, b); err != nil {
		return Result{}, fmt.Errorf("append booking: %w", err)
	}

	metrics.IncBookingCreated()
	s.record(ctx, audit.Entry{UserID: userID, Action: "created", When: b.When, RawText: rawWhen})
	s.bus.Publish(events.Event{Type: events.TypeBookingCreated, Payload: b})

	return Result{
		Outcome: OutcomeBooked,
		Message: fmt.Sprintf("Готово! Записали вас на пробное занятие %s. Ждём вас в клубе!", res.DisplayDate()),
		Booking: &b,
	}, nil
}

// RescheduleTrial moves the user's active booking to a new resolved slot.
func (s *Service) RescheduleTrial(ctx context.Context, userID int64, rawWhen string) (Result, error) {
	now := s.now()

	if s.resolver.RequiresClarification(rawWhen, now) {
		return s.clarify(ctx, userID, rawWhen, now), nil
	}

	res := s.resolver.Resolve(rawWhen, now)
	if !res.Resolved {
		metrics.IncDateUnresolved()
		return Result{
			Outcome: OutcomeUnresolvedDate,
			Message: "Не получилось разобрать новую дату. Напишите, пожалуйста, дату в формате ДД.ММ.ГГГГ.",
		}, nil
	}

	bookings, err := s.ledger.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list bookings: %w", err)
	}
	b := findActive(bookings, userID)
	if b == nil {
		return Result{
			Outcome: OutcomeNoActiveBooking,
			Message: "У вас пока нет активной записи на пробное занятие.",
		}, nil
	}

	updatedAt := now.UTC()
	b.When = res.Local
	b.UpdatedAt = &updatedAt
	if err := s.ledger.ReplaceAll(ctx, bookings); err != nil {
		return Result{}, fmt.Errorf("save bookings: %w", err)
	}

	metrics.IncBookingRescheduled()
	s.record(ctx, audit.Entry{UserID: userID, Action: "rescheduled", When: b.When, RawText: rawWhen})
	s.bus.Publish(events.Event{Type: events.TypeBookingRescheduled, Payload: *b})

	return Result{
		Outcome: OutcomeRescheduled,
		Message: fmt.Sprintf("Перенесли вашу запись на %s.", res.DisplayDate()),
		Booking: b,
	}, nil
}

// CancelTrial cancels the user's active booking. A non-empty rawWhen must
// re-resolve to the booked slot (exact canonical match or within the
// matching tolerance); an empty rawWhen cancels unconditionally.
func (s *Service) CancelTrial(ctx context.Context, userID int64, rawWhen string) (Result, error) {
	now := s.now()

	bookings, err := s.ledger.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list bookings: %w", err)
	}
	b := findActive(bookings, userID)
	if b == nil {
		return Result{
			Outcome: OutcomeNoActiveBooking,
			Message: "У вас пока нет активной записи на пробное занятие.",
		}, nil
	}

	if rawWhen != "" {
		res := s.resolver.Resolve(rawWhen, now)
		target := res.Local // raw text passes through unresolved
		if !timeparse.SameSlot(b.When, target, s.resolver.Location()) {
			return Result{
				Outcome: OutcomeNoMatchingSlot,
				Message: fmt.Sprintf("Не нашёл записи на эту дату. Ваша запись — на %s.", s.displayDate(b.When)),
				Booking: b,
			}, nil
		}
	}

	canceledAt := now.UTC()
	b.Status = models.StatusCanceled
	b.CanceledAt = &canceledAt
	if err := s.ledger.ReplaceAll(ctx, bookings); err != nil {
		return Result{}, fmt.Errorf("save bookings: %w", err)
	}

	metrics.IncBookingCancelled()
	s.record(ctx, audit.Entry{UserID: userID, Action: "canceled", When: b.When, RawText: rawWhen})
	s.bus.Publish(events.Event{Type: events.TypeBookingCanceled, Payload: *b})

	return Result{
		Outcome: OutcomeCanceled,
		Message: fmt.Sprintf("Запись на %s отменена. Будем рады видеть вас снова!", s.displayDate(b.When)),
		Booking: b,
	}, nil
}

// ActiveBooking returns the user's active booking, if any.
func (s *Service) ActiveBooking(ctx context.Context, userID int64) (*models.Booking, error) {
	bookings, err := s.ledger.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return findActive(bookings, userID), nil
}

func (s *Service) clarify(ctx context.Context, userID int64, rawWhen string, now time.Time) Result {
	metrics.IncClarificationRequested()
	s.record(ctx, audit.Entry{UserID: userID, Action: "clarification", RawText: rawWhen})
	return Result{
		Outcome: OutcomeClarificationNeeded,
		Message: s.resolver.ClarificationPrompt(rawWhen, now),
	}
}

func (s *Service) record(ctx context.Context, e audit.Entry) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, e); err != nil {
		s.logger.Warn().Err(err).Msg("audit record failed")
	}
}

// displayDate renders a stored canonical string as DD.MM.YYYY; unparseable
// values (raw pass-through data) are shown as stored.
func (s *Service) displayDate(when string) string {
	t, err := timeparse.ParseCanonical(when, s.resolver.Location())
	if err != nil {
		return when
	}
	return t.Format(timeparse.DisplayLayout)
}

func findActive(bookings []models.Booking, userID int64) *models.Booking {
	for i := range bookings {
		if bookings[i].UserID == userID && bookings[i].IsActive() {
			return &bookings[i]
		}
	}
	return nil
}
