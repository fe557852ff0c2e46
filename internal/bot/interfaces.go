package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/molchanovartem/fitness-bot/internal/models"
	"github.com/molchanovartem/fitness-bot/internal/service"
)

// telegramClient abstracts the Telegram API so tests can inject a mock.
type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	SelfUser() tgbotapi.User
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return c.api.Request(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}

// bookingService is what the bot needs from the booking tools.
type bookingService interface {
	CreateTrial(ctx context.Context, userID int64, name, phone, rawWhen string) (service.Result, error)
	RescheduleTrial(ctx context.Context, userID int64, rawWhen string) (service.Result, error)
	CancelTrial(ctx context.Context, userID int64, rawWhen string) (service.Result, error)
	ActiveBooking(ctx context.Context, userID int64) (*models.Booking, error)
}

// knowledgeBase answers club questions from the static document.
type knowledgeBase interface {
	Text() string
	Lookup(query string) []string
}
