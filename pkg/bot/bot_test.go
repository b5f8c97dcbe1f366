package bot

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1dashboard/pkg/apps"
)

type fakeAPI struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requested = append(f.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type recorder struct {
	commands, buttons, callbacks []string
	users                        []int64
}

func (r *recorder) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	return true, func(ctx context.Context, chatId int64) error {
		r.commands = append(r.commands, command)
		if u, ok := apps.UserFromContext(ctx); ok {
			r.users = append(r.users, u.ID)
		}
		return nil
	}
}

func (r *recorder) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	if button == "ignored" {
		return false, nil
	}
	return true, func(ctx context.Context, chatId int64) error {
		r.buttons = append(r.buttons, button)
		return nil
	}
}

func (r *recorder) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
		if _, ok := apps.ChatFromContext(ctx); ok {
			r.callbacks = append(r.callbacks, query.Data)
		}
		return nil
	}
}

func command(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		From:     &tgbotapi.User{ID: 3},
		Chat:     &tgbotapi.Chat{ID: 9},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}}
}

func button(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{Text: text, From: &tgbotapi.User{ID: 3}, Chat: &tgbotapi.Chat{ID: 9}}}
}

func TestHandleUpdate(t *testing.T) {
	api := &fakeAPI{}
	rec := &recorder{}
	r := NewRouter(api, rec)
	ctx := context.Background()

	r.HandleUpdate(ctx, command("/season_2023"))
	r.HandleUpdate(ctx, button("Live"))
	r.HandleUpdate(ctx, button("ignored"))
	r.HandleUpdate(ctx, tgbotapi.Update{Message: &tgbotapi.Message{Text: "anonymous", Chat: &tgbotapi.Chat{ID: 9}}})
	r.HandleUpdate(ctx, tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		Data:    "stats:2024:1:lap:1",
		From:    &tgbotapi.User{ID: 3},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 9}},
	}})

	assert.Equal(t, []string{"/season_2023"}, rec.commands)
	assert.Equal(t, []int64{3}, rec.users)
	assert.Equal(t, []string{"Live"}, rec.buttons)
	assert.Equal(t, []string{"stats:2024:1:lap:1"}, rec.callbacks)
	require.Len(t, api.requested, 1)
	assert.Equal(t, "cb1", api.requested[0].(tgbotapi.CallbackConfig).CallbackQueryID)
}

func TestReceiveUpdatesStopsOnClose(t *testing.T) {
	updates := make(chan tgbotapi.Update, 1)
	rec := &recorder{}
	updates <- button("Seasons")
	close(updates)

	NewRouter(&fakeAPI{}, rec).ReceiveUpdates(context.Background(), updates)
	assert.Equal(t, []string{"Seasons"}, rec.buttons)
}
