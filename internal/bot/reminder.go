package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/molchanovartem/fitness-bot/internal/ledger"
	"github.com/molchanovartem/fitness-bot/internal/models"
	"github.com/molchanovartem/fitness-bot/internal/timeparse"
)

const reminderHour = 9 // local time of the daily reminder run

// StartReminders schedules a daily pass that reminds users about
// tomorrow's trial sessions.
func (b *Bot) StartReminders(ctx context.Context, l ledger.Ledger) {
	go func() {
		timer := time.NewTimer(b.timeUntilNextHour(reminderHour))
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				b.sendTomorrowReminders(ctx, l)
				timer.Reset(24 * time.Hour)
			}
		}
	}()
}

func (b *Bot) sendTomorrowReminders(ctx context.Context, l ledger.Ledger) {
	bookings, err := l.List(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("reminder: list bookings")
		return
	}

	tomorrow := time.Now().In(b.loc).AddDate(0, 0, 1).Format("2006-01-02")
	for i := range bookings {
		booking := &bookings[i]
		if !booking.IsActive() || !b.isOnDate(booking, tomorrow) {
			continue
		}
		b.send(ctx, booking.UserID, formatReminderMessage(booking, b.displayWhen(booking.When)))
	}
}

// isOnDate compares the civil date portion of the stored canonical string.
func (b *Bot) isOnDate(booking *models.Booking, date string) bool {
	t, err := timeparse.ParseCanonical(booking.When, b.loc)
	if err != nil {
		return false
	}
	return t.Format("2006-01-02") == date
}

func formatReminderMessage(booking *models.Booking, displayDate string) string {
	return fmt.Sprintf("%s, напоминаем: завтра, %s, у вас пробное занятие. Ждём вас!", booking.Name, displayDate)
}

func (b *Bot) timeUntilNextHour(hour int) time.Duration {
	now := time.Now().In(b.loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, b.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
