// Package bot routes telegram updates to the apps.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"f1dashboard/log"
	"f1dashboard/pkg/apps"
)

// API is the part of the telegram client the router needs.
type API interface {
	apps.Sender
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Router struct {
	api API
	app apps.Accepter
}

func NewRouter(api API, app apps.Accepter) *Router {
	return &Router{api: api, app: app}
}

// ReceiveUpdates handles updates until ctx is cancelled or the channel closes.
func (r *Router) ReceiveUpdates(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			r.HandleUpdate(ctx, update)
		}
	}
}

func (r *Router) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		r.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		r.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

func (r *Router) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	user := message.From
	if user == nil {
		return
	}
	ctx = context.WithValue(ctx, apps.UserContextKey, user)
	ctx = context.WithValue(ctx, apps.ChatContextKey, message.Chat)

	log.Debug("message received", log.Int64("user", user.ID), log.String("text", message.Text))

	var (
		accept  bool
		handler func(ctx context.Context, chatId int64) error
	)
	if message.IsCommand() {
		accept, handler = r.app.AcceptCommand(message.Text)
	} else {
		accept, handler = r.app.AcceptButton(message.Text)
	}
	if !accept {
		log.Debug("message not handled", log.String("text", message.Text))
		return
	}
	if err := handler(ctx, message.Chat.ID); err != nil {
		log.Error("handling message", log.String("text", message.Text), log.ErrorField(err))
	}
}

func (r *Router) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil || query.Message.Chat == nil {
		return
	}
	ctx = context.WithValue(ctx, apps.UserContextKey, query.From)
	ctx = context.WithValue(ctx, apps.ChatContextKey, query.Message.Chat)

	accept, handler := r.app.AcceptCallback(query)
	if accept {
		if err := handler(ctx, query); err != nil {
			log.Error("handling callback", log.String("data", query.Data), log.ErrorField(err))
		}
	} else {
		log.Debug("callback not handled", log.String("data", query.Data))
	}

	// stops the spinner on the pressed button
	if _, err := r.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Debug("answering callback", log.ErrorField(err))
	}
}
