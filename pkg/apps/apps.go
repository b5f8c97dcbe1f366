package apps

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type ContextUser string
type ContextChatID string

const (
	UserContextKey ContextUser   = "user"
	ChatContextKey ContextChatID = "chat"
)

// Accepter is implemented by every bot app. Each method reports whether the
// app owns the input and, if so, the handler to run for it.
type Accepter interface {
	AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error)
	AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error)
	AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error)
}

// Sender is the part of the bot API the apps use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

func UserFromContext(ctx context.Context) (*tgbotapi.User, bool) {
	u, ok := ctx.Value(UserContextKey).(*tgbotapi.User)
	return u, ok && u != nil
}

func ChatFromContext(ctx context.Context) (*tgbotapi.Chat, bool) {
	c, ok := ctx.Value(ChatContextKey).(*tgbotapi.Chat)
	return c, ok && c != nil
}

// Code wraps a pre-rendered table in a MarkdownV2 code block.
func Code(title, body string) string {
	return fmt.Sprintf("```\n%s\n\n%s```", title, body)
}

// SendOrEdit sends a new message, or edits messageID in place when set.
func SendOrEdit(s Sender, chatId int64, messageID *int, text, parseMode string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	var cfg tgbotapi.Chattable
	if messageID == nil {
		msg := tgbotapi.NewMessage(chatId, text)
		msg.ParseMode = parseMode
		if keyboard != nil {
			msg.ReplyMarkup = *keyboard
		}
		cfg = msg
	} else {
		msg := tgbotapi.NewEditMessageText(chatId, *messageID, text)
		msg.ParseMode = parseMode
		msg.ReplyMarkup = keyboard
		cfg = msg
	}
	_, err := s.Send(cfg)
	return err
}

// AcceptCommand walks accepters in order and returns the first match.
func AcceptCommand(accepters []Accepter, command string) (bool, func(ctx context.Context, chatId int64) error) {
	for _, accepter := range accepters {
		if accept, handler := accepter.AcceptCommand(command); accept {
			return true, handler
		}
	}
	return false, nil
}

func AcceptButton(accepters []Accepter, button string) (bool, func(ctx context.Context, chatId int64) error) {
	for _, accepter := range accepters {
		if accept, handler := accepter.AcceptButton(button); accept {
			return true, handler
		}
	}
	return false, nil
}

func AcceptCallback(accepters []Accepter, query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	for _, accepter := range accepters {
		if accept, handler := accepter.AcceptCallback(query); accept {
			return true, handler
		}
	}
	return false, nil
}
