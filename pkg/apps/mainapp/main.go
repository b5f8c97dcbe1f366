package mainapp

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"f1dashboard/pkg/apps"
	"f1dashboard/pkg/apps/live"
	"f1dashboard/pkg/apps/results"
	"f1dashboard/pkg/apps/seasons"
	"f1dashboard/pkg/apps/stats"
	"f1dashboard/pkg/menus"
	"f1dashboard/pkg/pubsub"
)

const (
	menuStart      = "/start"
	menuMenu       = "/menu"
	buttonSeasons  = "Seasons"
	buttonLive     = "Live"
	buttonSettings = "Settings"
	appName        = "menu"
)

var (
	menuKeyboard = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonSeasons),
			tgbotapi.NewKeyboardButton(buttonLive),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonSettings),
		),
	)
)

type menuer struct{}

func (m menuer) Menu() tgbotapi.ReplyKeyboardMarkup {
	return menuKeyboard
}

// Pages is everything the bot renders from the dashboard service.
type Pages interface {
	seasons.Pages
	results.Pages
	stats.Pages
}

type MainApp struct {
	bot       apps.Sender
	accepters []apps.Accepter
}

func NewMainApp(bot apps.Sender, pages Pages, pubsubMgr *pubsub.PubSub[string], sm live.SettingsStore) *MainApp {
	resultsApp := results.NewResultsApp(bot, pages)
	statsApp := stats.NewStatsApp(bot, pages)
	seasonsAppMenu := menus.NewApplicationMenu(buttonSeasons, appName, menuer{})
	seasonsApp := seasons.NewSeasonsApp(bot, seasonsAppMenu, pages, resultsApp, statsApp)

	liveAppMenu := menus.NewApplicationMenu(buttonLive, appName, menuer{})
	liveApp := live.NewLiveApp(bot, liveAppMenu, pubsubMgr)

	settingsAppMenu := menus.NewApplicationMenu(buttonSettings, appName, menuer{})
	settingsApp := live.NewSettingsApp(bot, settingsAppMenu, sm)

	return &MainApp{
		bot:       bot,
		accepters: []apps.Accepter{seasonsApp, liveApp, settingsApp},
	}
}

func (m *MainApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	if command == menuStart {
		return true, m.renderStart()
	} else if command == menuMenu {
		return true, m.renderMenu()
	}
	return apps.AcceptCommand(m.accepters, command)
}

func (m *MainApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	return apps.AcceptCallback(m.accepters, query)
}

func (m *MainApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	return apps.AcceptButton(m.accepters, button)
}

func (m *MainApp) renderStart() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		message := "Hi, I am the F1 dashboard bot. I show race schedules, results, lap charts and live timing.\n\n"
		message += "You can use these commands:\n\n"
		message += fmt.Sprintf("%s - Shows the bot menu\n", menuMenu)
		message += "/season or /season_YYYY - Shows a season schedule\n"
		message += "/live - Shows the live timing board\n"
		msg := tgbotapi.NewMessage(chatId, message)
		msg.ReplyMarkup = menuKeyboard
		_, err := m.bot.Send(msg)
		return err
	}
}

func (m *MainApp) renderMenu() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		msg := tgbotapi.NewMessage(chatId, "Bot menu.\n\n")
		msg.ReplyMarkup = menuKeyboard
		_, err := m.bot.Send(msg)
		return err
	}
}
