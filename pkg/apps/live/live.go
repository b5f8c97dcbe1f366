package live

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"f1dashboard/pkg/apps"
	"f1dashboard/pkg/caster"
	"f1dashboard/pkg/livetiming"
	"f1dashboard/pkg/menus"
	"f1dashboard/pkg/pubsub"
)

const (
	buttonTiming      = "Timing ⏱"
	buttonRaceControl = "Race Control 🚩"
	buttonWeather     = "Weather 🌦"

	raceControlLines = 10
)

type LiveApp struct {
	bot          apps.Sender
	appMenu      menus.ApplicationMenu
	menuKeyboard tgbotapi.ReplyKeyboardMarkup
	gridApp      *GridApp
	boardCh      <-chan string
	caster       caster.ChannelCaster[livetiming.Board]
	board        livetiming.Board
	hasBoard     bool
	mu           sync.Mutex
}

func NewLiveApp(bot apps.Sender, appMenu menus.ApplicationMenu, pubsubMgr *pubsub.PubSub[string]) *LiveApp {
	la := &LiveApp{
		bot:     bot,
		appMenu: appMenu,
		boardCh: pubsubMgr.Subscribe(livetiming.PubSubSnapshotTopic),
		caster:  caster.JSONChannelCaster[livetiming.Board]{},
	}
	la.menuKeyboard = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonTiming),
			tgbotapi.NewKeyboardButton(buttonRaceControl),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonWeather),
			tgbotapi.NewKeyboardButton(appMenu.ButtonBackTo()),
		),
	)
	la.gridApp = NewGridApp(bot, la.Board)

	go caster.Each(la.boardCh, la.caster, la.update)

	return la
}

func (la *LiveApp) update(b livetiming.Board) {
	la.mu.Lock()
	defer la.mu.Unlock()
	la.board = b
	la.hasBoard = true
}

// Board returns the last board received from the live feed.
func (la *LiveApp) Board() (livetiming.Board, bool) {
	la.mu.Lock()
	defer la.mu.Unlock()
	return la.board, la.hasBoard
}

func (la *LiveApp) Menu() tgbotapi.ReplyKeyboardMarkup {
	return la.menuKeyboard
}

func (la *LiveApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	return la.gridApp.AcceptCommand(command)
}

func (la *LiveApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	return la.gridApp.AcceptCallback(query)
}

func (la *LiveApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	switch button {
	case la.appMenu.Name:
		return true, func(ctx context.Context, chatId int64) error {
			text := noSession
			if b, ok := la.Board(); ok {
				text = SessionText(b)
			}
			msg := tgbotapi.NewMessage(chatId, text)
			msg.ReplyMarkup = la.menuKeyboard
			_, err := la.bot.Send(msg)
			return err
		}
	case buttonRaceControl:
		return true, la.renderText(RaceControlText)
	case buttonWeather:
		return true, la.renderText(WeatherText)
	case la.appMenu.ButtonBackTo():
		return true, func(ctx context.Context, chatId int64) error {
			msg := tgbotapi.NewMessage(chatId, "OK")
			msg.ReplyMarkup = la.appMenu.PrevMenu()
			_, err := la.bot.Send(msg)
			return err
		}
	}
	return la.gridApp.AcceptButton(button)
}

func (la *LiveApp) renderText(render func(livetiming.Board) string) func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		text := noSession
		if b, ok := la.Board(); ok {
			text = render(b)
		}
		_, err := la.bot.Send(tgbotapi.NewMessage(chatId, text))
		return err
	}
}

// SessionText is the heading of the live views.
func SessionText(b livetiming.Board) string {
	name := b.MeetingName
	if name == "" {
		name = "Live Timing"
	}
	if b.SessionName != "" {
		name += " - " + b.SessionName
	}
	lines := []string{name}
	if b.Circuit != "" {
		lines = append(lines, fmt.Sprintf("%s (%s - %s)", b.Circuit, b.StartDate, b.EndDate))
	}
	lines = append(lines, fmt.Sprintf("Lap %s | %s | Flag %s", b.Lap, b.SessionStatus, b.Flag))
	return strings.Join(lines, "\n")
}

// RaceControlText lists the latest race control messages, newest first.
func RaceControlText(b livetiming.Board) string {
	if len(b.RaceControl) == 0 {
		return "No race control messages"
	}
	msgs := b.RaceControl
	if len(msgs) > raceControlLines {
		msgs = msgs[:raceControlLines]
	}
	lines := make([]string, 0, len(msgs)+1)
	lines = append(lines, "Race Control")
	for _, m := range msgs {
		prefix := m.Time
		if m.Lap != "" {
			prefix = fmt.Sprintf("%s L%s", prefix, m.Lap)
		}
		lines = append(lines, fmt.Sprintf("‣ %s: %s", prefix, m.Message))
	}
	return strings.Join(lines, "\n")
}

func WeatherText(b livetiming.Board) string {
	lines := make([]string, 0, len(b.Weather)+1)
	lines = append(lines, "Weather")
	for _, w := range b.Weather {
		lines = append(lines, fmt.Sprintf("‣ %s: %s", w.Label, w.Value))
	}
	return strings.Join(lines, "\n")
}
