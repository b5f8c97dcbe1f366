package notification

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	sent   []tgbotapi.MessageConfig
	failOn int64
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable")
	}
	if msg.ChatID == f.failOn {
		return tgbotapi.Message{}, errors.New("chat not found")
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func TestTelegramSender(t *testing.T) {
	bot := &fakeBot{}
	send := telegramSender(bot)

	err := send(context.Background(), []int64{100, 300}, title, "Chinese Grand Prix (Shanghai): Sprint started")
	require.NoError(t, err)

	require.Len(t, bot.sent, 2)
	assert.Equal(t, int64(100), bot.sent[0].ChatID)
	assert.Equal(t, int64(300), bot.sent[1].ChatID)
	assert.Equal(t, "New session started:\nChinese Grand Prix (Shanghai): Sprint started", bot.sent[0].Text)
}

func TestTelegramSenderError(t *testing.T) {
	bot := &fakeBot{failOn: 300}
	err := telegramSender(bot)(context.Background(), []int64{100, 300}, title, "Race started")

	assert.ErrorContains(t, err, "300")
	assert.Len(t, bot.sent, 1)
}

func TestTelegramWithoutClient(t *testing.T) {
	tg := &Telegram{}
	tg.AddReceivers(1)
	assert.Error(t, tg.Send(context.Background(), "subject", "message"))
}
