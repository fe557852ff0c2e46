package bot

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molchanovartem/fitness-bot/internal/events"
	"github.com/molchanovartem/fitness-bot/internal/history"
	"github.com/molchanovartem/fitness-bot/internal/kb"
	"github.com/molchanovartem/fitness-bot/internal/ledger"
	"github.com/molchanovartem/fitness-bot/internal/service"
	"github.com/molchanovartem/fitness-bot/internal/timeparse"
)

type mockTelegram struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (m *mockTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		m.sent = append(m.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (m *mockTelegram) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *mockTelegram) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (m *mockTelegram) SelfUser() tgbotapi.User {
	return tgbotapi.User{UserName: "fitness_test_bot"}
}

func (m *mockTelegram) lastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1].Text
}

func (m *mockTelegram) textsFor(chatID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, msg := range m.sent {
		if msg.ChatID == chatID {
			out = append(out, msg.Text)
		}
	}
	return out
}

type botFixture struct {
	bot *Bot
	tg  *mockTelegram
}

func newBotFixture(t *testing.T, managers []int64) *botFixture {
	t.Helper()

	resolver, err := timeparse.NewResolver("Asia/Omsk")
	require.NoError(t, err)

	bus := events.NewBus()
	logger := zerolog.New(io.Discard)
	svc := service.New(ledger.NewMemoryLedger(), resolver, bus, nil, &logger)
	svc.WithClock(func() time.Time {
		return time.Date(2025, 10, 4, 10, 0, 0, 0, resolver.Location())
	})

	kbPath := filepath.Join(t.TempDir(), "club.txt")
	require.NoError(t, os.WriteFile(kbPath, []byte("Абонементы:\nМесячный абонемент стоит 3000 рублей.\n\nРасписание:\nКлуб открыт с 7:00 до 23:00."), 0o644))
	knowledge, err := kb.Load(kbPath)
	require.NoError(t, err)

	tg := &mockTelegram{}
	b, err := NewWithTelegramClient(tg, svc, knowledge, history.NewMemoryStore(0), bus, managers, resolver.Location(), &logger)
	require.NoError(t, err)

	return &botFixture{bot: b, tg: tg}
}

func userMessage(chatID, userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: userID},
		Text: text,
	}
}

func commandMessage(chatID, userID int64, cmd string) *tgbotapi.Message {
	msg := userMessage(chatID, userID, "/"+cmd)
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd) + 1}}
	return msg
}

func TestBot_StartCommand(t *testing.T) {
	f := newBotFixture(t, nil)
	ctx := context.Background()

	f.bot.handleMessage(ctx, commandMessage(1, 1, "start"))

	assert.Contains(t, f.tg.lastText(), "пробное занятие")
}

func TestBot_BookingDialog(t *testing.T) {
	f := newBotFixture(t, nil)
	ctx := context.Background()

	f.bot.handleMessage(ctx, userMessage(1, 1, btnBook))
	assert.Contains(t, f.tg.lastText(), "зовут")

	f.bot.handleMessage(ctx, userMessage(1, 1, "Иван"))
	assert.Contains(t, f.tg.lastText(), "телефон")

	f.bot.handleMessage(ctx, userMessage(1, 1, "+79131234567"))
	assert.Contains(t, f.tg.lastText(), "дату")

	f.bot.handleMessage(ctx, userMessage(1, 1, "завтра в 9"))
	assert.Contains(t, f.tg.lastText(), "05.10.2025")

	// Dialog is over, the booking is visible.
	f.bot.handleMessage(ctx, userMessage(1, 1, btnMyBooking))
	assert.Contains(t, f.tg.lastText(), "05.10.2025")
}

func TestBot_BookingDialog_BadInputs(t *testing.T) {
	f := newBotFixture(t, nil)
	ctx := context.Background()

	f.bot.handleMessage(ctx, userMessage(1, 1, btnBook))

	f.bot.handleMessage(ctx, userMessage(1, 1, "Я"))
	assert.Contains(t, f.tg.lastText(), "обращаться")

	f.bot.handleMessage(ctx, userMessage(1, 1, "Иван"))
	f.bot.handleMessage(ctx, userMessage(1, 1, "12"))
	assert.Contains(t, f.tg.lastText(), "опечатка")

	f.bot.handleMessage(ctx, userMessage(1, 1, "+79131234567"))
	f.bot.handleMessage(ctx, userMessage(1, 1, "вечером как-нибудь"))
	assert.Contains(t, f.tg.lastText(), "ДД.ММ.ГГГГ")

	// Still on the date step, a valid date completes the dialog.
	f.bot.handleMessage(ctx, userMessage(1, 1, "05.10.2025"))
	assert.Contains(t, f.tg.lastText(), "05.10.2025")
}

func TestBot_SecondBookingRefused(t *testing.T) {
	f := newBotFixture(t, nil)
	ctx := context.Background()

	f.bot.handleMessage(ctx, userMessage(1, 1, btnBook))
	f.bot.handleMessage(ctx, userMessage(1, 1, "Иван"))
	f.bot.handleMessage(ctx, userMessage(1, 1, "+79131234567"))
	f.bot.handleMessage(ctx, userMessage(1, 1, "завтра"))

	f.bot.handleMessage(ctx, userMessage(1, 1, btnBook))
	assert.Contains(t, f.tg.lastText(), "уже есть запись")
}

func TestBot_RescheduleAndCancel(t *testing.T) {
	f := newBotFixture(t, nil)
	ctx := context.Background()

	f.bot.handleMessage(ctx, userMessage(1, 1, btnBook))
	f.bot.handleMessage(ctx, userMessage(1, 1, "Иван"))
	f.bot.handleMessage(ctx, userMessage(1, 1, "+79131234567"))
	f.bot.handleMessage(ctx, userMessage(1, 1, "завтра"))

	f.bot.handleMessage(ctx, userMessage(1, 1, btnReschedule))
	assert.Contains(t, f.tg.lastText(), "перенести")

	f.bot.handleMessage(ctx, userMessage(1, 1, "25.12.2025"))
	assert.Contains(t, f.tg.lastText(), "25.12.2025")

	f.bot.handleMessage(ctx, userMessage(1, 1, btnCancel))
	assert.Contains(t, f.tg.lastText(), "отменена")

	f.bot.handleMessage(ctx, userMessage(1, 1, btnMyBooking))
	assert.Contains(t, f.tg.lastText(), "нет активной записи")
}

func TestBot_ManagerNotified(t *testing.T) {
	f := newBotFixture(t, []int64{999})
	ctx := context.Background()

	f.bot.handleMessage(ctx, userMessage(1, 1, btnBook))
	f.bot.handleMessage(ctx, userMessage(1, 1, "Иван"))
	f.bot.handleMessage(ctx, userMessage(1, 1, "+79131234567"))
	f.bot.handleMessage(ctx, userMessage(1, 1, "завтра"))

	notices := f.tg.textsFor(999)
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0], "Новая запись")
	assert.Contains(t, notices[0], "Иван")
	assert.Contains(t, notices[0], "05.10.2025")
}

func TestBot_KnowledgeAnswers(t *testing.T) {
	f := newBotFixture(t, nil)
	ctx := context.Background()

	f.bot.handleMessage(ctx, userMessage(1, 1, "Сколько стоит абонемент?"))
	assert.Contains(t, f.tg.lastText(), "3000")

	f.bot.handleMessage(ctx, userMessage(1, 1, "Есть ли у вас бассейн?"))
	assert.Contains(t, f.tg.lastText(), "Не нашёл ответа")

	f.bot.handleMessage(ctx, userMessage(1, 1, btnAbout))
	assert.Contains(t, f.tg.lastText(), "Расписание")
}
