package notification

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// BotSender is the part of the bot api client used to deliver messages.
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram is a notify service on top of the bot api client the rest of the
// bot already uses.
type Telegram struct {
	client    BotSender
	chatIDs   []int64
	parseMode string
}

func (t *Telegram) SetClient(client BotSender) {
	t.client = client
}

func (t *Telegram) SetParseMode(mode string) {
	t.parseMode = mode
}

func (t *Telegram) AddReceivers(chatIDs ...int64) {
	t.chatIDs = append(t.chatIDs, chatIDs...)
}

// Send delivers subject and message as one text to every receiver. It stops
// at the first chat that fails.
func (t *Telegram) Send(ctx context.Context, subject, message string) error {
	if t.client == nil {
		return errors.New("telegram client not set")
	}
	text := subject + "\n" + message
	for _, chatID := range t.chatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = t.parseMode
		if _, err := t.client.Send(msg); err != nil {
			return errors.Wrapf(err, "send to telegram chat '%d'", chatID)
		}
	}
	return nil
}
