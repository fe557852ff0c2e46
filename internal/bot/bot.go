// Package bot is the Telegram front of the assistant: reply keyboards,
// a short booking dialog, knowledge-base answers and admin notifications.
package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/molchanovartem/fitness-bot/internal/events"
	"github.com/molchanovartem/fitness-bot/internal/history"
	"github.com/molchanovartem/fitness-bot/internal/models"
	"github.com/molchanovartem/fitness-bot/internal/service"
	"github.com/molchanovartem/fitness-bot/internal/timeparse"
)

const (
	btnBook       = "📝 Записаться на пробное"
	btnMyBooking  = "📌 Моя запись"
	btnReschedule = "🔁 Перенести запись"
	btnCancel     = "❌ Отменить запись"
	btnAbout      = "ℹ️ О клубе"
)

var mainMenu = tgbotapi.NewReplyKeyboard(
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnBook),
		tgbotapi.NewKeyboardButton(btnMyBooking),
	),
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnReschedule),
		tgbotapi.NewKeyboardButton(btnCancel),
	),
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnAbout),
	),
)

const greeting = `Здравствуйте! Я помощник фитнес-клуба.

Могу записать вас на бесплатное пробное занятие, перенести или отменить запись и ответить на вопросы о клубе.`

// Bot wires the Telegram transport to the booking service.
type Bot struct {
	tg       telegramClient
	svc      bookingService
	kb       knowledgeBase
	hist     history.Store
	managers map[int64]struct{}
	loc      *time.Location
	state    *stateStore
	limiter  *rate.Limiter
	logger   *zerolog.Logger
}

func New(token string, svc bookingService, kb knowledgeBase, hist history.Store, bus *events.Bus, managers []int64, loc *time.Location, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram api: %w", err)
	}
	return newBot(&realTelegramClient{api: api}, svc, kb, hist, bus, managers, loc, logger)
}

// NewWithTelegramClient allows injecting a mocked Telegram client for tests.
func NewWithTelegramClient(tg telegramClient, svc bookingService, kb knowledgeBase, hist history.Store, bus *events.Bus, managers []int64, loc *time.Location, logger *zerolog.Logger) (*Bot, error) {
	return newBot(tg, svc, kb, hist, bus, managers, loc, logger)
}

func newBot(tg telegramClient, svc bookingService, kb knowledgeBase, hist history.Store, bus *events.Bus, managers []int64, loc *time.Location, logger *zerolog.Logger) (*Bot, error) {
	if tg == nil {
		return nil, fmt.Errorf("telegram client is nil")
	}
	mgrs := make(map[int64]struct{})
	for _, id := range managers {
		mgrs[id] = struct{}{}
	}
	b := &Bot{
		tg:       tg,
		svc:      svc,
		kb:       kb,
		hist:     hist,
		managers: mgrs,
		loc:      loc,
		state:    newStateStore(),
		limiter:  rate.NewLimiter(rate.Limit(20), 30),
		logger:   logger,
	}
	if bus != nil {
		bus.Subscribe(events.TypeBookingCreated, b.notifyManagers("Новая запись"))
		bus.Subscribe(events.TypeBookingRescheduled, b.notifyManagers("Перенос записи"))
		bus.Subscribe(events.TypeBookingCanceled, b.notifyManagers("Отмена записи"))
	}
	return b, nil
}

// Start polls updates until the context is canceled. Each chat message is
// handled as its own unit of work; the transport delivers per-chat updates
// sequentially.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.tg.GetUpdatesChan(u)

	b.logger.Info().Str("bot", b.tg.SelfUser().UserName).Msg("bot started")

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Chat == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	text := msg.Text

	b.appendHistory(ctx, chatID, history.RoleUser, text)

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, userID, msg.Command())
		return
	}

	st := b.state.get(userID)
	switch st.Step {
	case stepName:
		b.handleName(ctx, chatID, st, text)
	case stepPhone:
		b.handlePhone(ctx, chatID, st, text)
	case stepDate:
		b.handleDate(ctx, chatID, userID, st, text)
	case stepRescheduleDate:
		b.handleRescheduleDate(ctx, chatID, userID, text)
	default:
		b.handleMenu(ctx, chatID, userID, text)
	}
}

func (b *Bot) handleCommand(ctx context.Context, chatID, userID int64, cmd string) {
	switch cmd {
	case "start":
		b.state.reset(userID)
		b.sendWithKeyboard(ctx, chatID, greeting, mainMenu)
	case "cancel":
		b.state.reset(userID)
		b.sendWithKeyboard(ctx, chatID, "Хорошо, начнём заново. Чем могу помочь?", mainMenu)
	default:
		b.send(ctx, chatID, "Не знаю такой команды. Нажмите /start, чтобы открыть меню.")
	}
}

func (b *Bot) handleMenu(ctx context.Context, chatID, userID int64, text string) {
	switch text {
	case btnBook:
		existing, err := b.svc.ActiveBooking(ctx, userID)
		if err != nil {
			b.replyError(ctx, chatID, err)
			return
		}
		if existing != nil {
			b.send(ctx, chatID, fmt.Sprintf(
				"У вас уже есть запись на %s. Её можно перенести или отменить.",
				b.displayWhen(existing.When)))
			return
		}
		st := b.state.get(userID)
		st.Step = stepName
		b.send(ctx, chatID, "Отлично! Как вас зовут?")

	case btnMyBooking:
		existing, err := b.svc.ActiveBooking(ctx, userID)
		if err != nil {
			b.replyError(ctx, chatID, err)
			return
		}
		if existing == nil {
			b.send(ctx, chatID, "У вас пока нет активной записи на пробное занятие.")
			return
		}
		b.send(ctx, chatID, fmt.Sprintf("Ваша запись: пробное занятие %s.", b.displayWhen(existing.When)))

	case btnReschedule:
		st := b.state.get(userID)
		st.Step = stepRescheduleDate
		b.send(ctx, chatID, "На какую дату перенести? Например: завтра, в пятницу или 05.10.2025.")

	case btnCancel:
		res, err := b.svc.CancelTrial(ctx, userID, "")
		if err != nil {
			b.replyError(ctx, chatID, err)
			return
		}
		b.send(ctx, chatID, res.Message)

	case btnAbout:
		b.send(ctx, chatID, b.kb.Text())

	default:
		b.answerQuestion(ctx, chatID, text)
	}
}

func (b *Bot) handleName(ctx context.Context, chatID int64, st *userState, text string) {
	if len([]rune(text)) < 2 {
		b.send(ctx, chatID, "Подскажите, пожалуйста, как к вам обращаться?")
		return
	}
	st.Draft.Name = text
	st.Step = stepPhone
	b.send(ctx, chatID, "Оставьте, пожалуйста, номер телефона для связи.")
}

func (b *Bot) handlePhone(ctx context.Context, chatID int64, st *userState, text string) {
	digits := models.NormalizePhone(text)
	if len(digits) < 10 || len(digits) > 15 {
		b.send(ctx, chatID, "Кажется, в номере опечатка. Напишите его в формате +7XXXXXXXXXX.")
		return
	}
	st.Draft.Phone = text
	st.Step = stepDate
	b.send(ctx, chatID, "На какую дату хотите прийти? Например: завтра, в пятницу или 05.10.2025.")
}

func (b *Bot) handleDate(ctx context.Context, chatID, userID int64, st *userState, text string) {
	res, err := b.svc.CreateTrial(ctx, userID, st.Draft.Name, st.Draft.Phone, text)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	// A clarification or an unreadable date keeps the dialog on this step;
	// the user's next message is a fresh attempt.
	if res.Outcome != service.OutcomeClarificationNeeded && res.Outcome != service.OutcomeUnresolvedDate {
		b.state.reset(userID)
		b.sendWithKeyboard(ctx, chatID, res.Message, mainMenu)
		return
	}
	b.send(ctx, chatID, res.Message)
}

func (b *Bot) handleRescheduleDate(ctx context.Context, chatID, userID int64, text string) {
	res, err := b.svc.RescheduleTrial(ctx, userID, text)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if res.Outcome != service.OutcomeClarificationNeeded && res.Outcome != service.OutcomeUnresolvedDate {
		b.state.reset(userID)
		b.sendWithKeyboard(ctx, chatID, res.Message, mainMenu)
		return
	}
	b.send(ctx, chatID, res.Message)
}

// answerQuestion serves free-text questions from the knowledge document.
func (b *Bot) answerQuestion(ctx context.Context, chatID int64, text string) {
	hits := b.kb.Lookup(text)
	if len(hits) == 0 {
		b.send(ctx, chatID, "Не нашёл ответа в описании клуба. Попробуйте спросить иначе или нажмите «ℹ️ О клубе».")
		return
	}
	reply := hits[0]
	for _, h := range hits[1:] {
		reply += "\n\n" + h
	}
	b.send(ctx, chatID, reply)
}

func (b *Bot) notifyManagers(title string) events.Handler {
	return func(e events.Event) {
		booking, ok := e.Payload.(models.Booking)
		if !ok {
			return
		}
		text := fmt.Sprintf("%s: %s, тел. %s, дата %s",
			title, booking.Name, booking.Phone, b.displayWhen(booking.When))
		for id := range b.managers {
			b.send(context.Background(), id, text)
		}
	}
}

func (b *Bot) displayWhen(when string) string {
	t, err := timeparse.ParseCanonical(when, b.loc)
	if err != nil {
		return when
	}
	return t.Format(timeparse.DisplayLayout)
}

func (b *Bot) appendHistory(ctx context.Context, chatID int64, role, text string) {
	if b.hist == nil {
		return
	}
	if err := b.hist.Append(ctx, chatID, history.Message{Role: role, Text: text, At: time.Now()}); err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("append history failed")
	}
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	b.sendChattable(ctx, chatID, tgbotapi.NewMessage(chatID, text), text)
}

func (b *Bot) sendWithKeyboard(ctx context.Context, chatID int64, text string, kb tgbotapi.ReplyKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	b.sendChattable(ctx, chatID, msg, text)
}

func (b *Bot) sendChattable(ctx context.Context, chatID int64, msg tgbotapi.Chattable, text string) {
	if err := b.limiter.Wait(ctx); err != nil {
		return
	}
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send message failed")
		return
	}
	b.appendHistory(ctx, chatID, history.RoleAssistant, text)
}

func (b *Bot) replyError(ctx context.Context, chatID int64, err error) {
	b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("booking action failed")
	b.send(ctx, chatID, "Что-то пошло не так, попробуйте ещё раз чуть позже.")
}
