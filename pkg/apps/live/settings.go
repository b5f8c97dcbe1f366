package live

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"f1dashboard/log"
	"f1dashboard/pkg/apps"
	"f1dashboard/pkg/menus"
	"f1dashboard/pkg/settings"
)

const (
	subcommandNotifications = "notifications"
	notificationsTitle      = "Notify me when a session starts\n(only the first session of each kind is notified)"
	notificationsPerRow     = 2
)

type SettingsStore interface {
	ListNotifications(userID string) (settings.Notifications, error)
	ToggleNotificationForSessionStarted(userID, name, chatID, sessionType string) (settings.Notifications, error)
}

type SettingsApp struct {
	bot     apps.Sender
	appMenu menus.ApplicationMenu
	sm      SettingsStore
}

func NewSettingsApp(bot apps.Sender, appMenu menus.ApplicationMenu, sm SettingsStore) *SettingsApp {
	return &SettingsApp{
		bot:     bot,
		sm:      sm,
		appMenu: appMenu,
	}
}

func (sa *SettingsApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	return false, nil
}

func (sa *SettingsApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	data := strings.Split(query.Data, ":")
	if data[0] != subcommandNotifications || len(data) != 3 {
		return false, nil
	}
	return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
		userID := data[1]
		sessionType := data[2]

		chat, ok := apps.ChatFromContext(ctx)
		if !ok {
			return sa.reply(query.Message.Chat.ID, "Could not read the chat")
		}
		user, ok := apps.UserFromContext(ctx)
		if !ok || strconv.FormatInt(user.ID, 10) != userID {
			return sa.reply(query.Message.Chat.ID, "These settings belong to another user")
		}

		n, err := sa.sm.ToggleNotificationForSessionStarted(userID, userName(user), strconv.FormatInt(chat.ID, 10), sessionType)
		if err != nil {
			log.Warn("toggling notification", log.String("user", userID), log.ErrorField(err))
			return sa.reply(query.Message.Chat.ID, "Could not change the notification")
		}
		keyboard := getSettingsInlineKeyboard(userID, n)
		return apps.SendOrEdit(sa.bot, query.Message.Chat.ID, &query.Message.MessageID, notificationsTitle, "", &keyboard)
	}
}

func (sa *SettingsApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	if button == sa.appMenu.Name {
		return true, sa.renderNotifications()
	}
	return false, nil
}

func (sa *SettingsApp) renderNotifications() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		user, ok := apps.UserFromContext(ctx)
		if !ok {
			return sa.reply(chatId, "Could not read the user")
		}
		userID := strconv.FormatInt(user.ID, 10)
		n, err := sa.sm.ListNotifications(userID)
		if err != nil {
			log.Warn("listing notifications", log.String("user", userID), log.ErrorField(err))
			return sa.reply(chatId, "Could not read your notification settings")
		}
		keyboard := getSettingsInlineKeyboard(userID, n)
		return apps.SendOrEdit(sa.bot, chatId, nil, notificationsTitle, "", &keyboard)
	}
}

func (sa *SettingsApp) reply(chatId int64, text string) error {
	msg := tgbotapi.NewMessage(chatId, text)
	msg.ReplyMarkup = sa.appMenu.PrevMenu()
	_, err := sa.bot.Send(msg)
	return err
}

func userName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func getSettingsInlineKeyboard(userID string, n settings.Notifications) tgbotapi.InlineKeyboardMarkup {
	buttons := lo.Map(settings.SessionTypes, func(st string, _ int) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(st+" "+n.Symbol(st), fmt.Sprintf("%s:%s:%s", subcommandNotifications, userID, st))
	})
	return tgbotapi.NewInlineKeyboardMarkup(lo.Chunk(buttons, notificationsPerRow)...)
}
