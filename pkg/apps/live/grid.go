package live

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jedib0t/go-pretty/v6/table"

	"f1dashboard/pkg/apps"
	"f1dashboard/pkg/livetiming"
)

const (
	subcommandShowLiveTiming = "show_live_timing"
	commandLive              = "/live"
)

// GridApp renders the timing board with one inline button per view.
type GridApp struct {
	bot   apps.Sender
	board func() (livetiming.Board, bool)
}

func NewGridApp(bot apps.Sender, board func() (livetiming.Board, bool)) *GridApp {
	return &GridApp{bot: bot, board: board}
}

func (ga *GridApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	if command == commandLive {
		return true, ga.renderGrid()
	}
	return false, nil
}

func (ga *GridApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	if button == buttonTiming {
		return true, ga.renderGrid()
	}
	return false, nil
}

func (ga *GridApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	data := strings.Split(query.Data, ":")
	if data[0] == subcommandShowLiveTiming && len(data) == 2 {
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
			return ga.sendSessionData(query.Message.Chat.ID, &query.Message.MessageID, data[1])
		}
	}
	return false, nil
}

func (ga *GridApp) renderGrid() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		return ga.sendSessionData(chatId, nil, inlineKeyboardTimes)
	}
}

func (ga *GridApp) sendSessionData(chatId int64, messageId *int, infoType string) error {
	b, ok := ga.board()
	if !ok || len(b.Rows) == 0 {
		_, err := ga.bot.Send(tgbotapi.NewMessage(chatId, noSession))
		return err
	}
	keyboard := getInlineKeyboard(infoType)
	return apps.SendOrEdit(ga.bot, chatId, messageId, GridText(b, infoType), tgbotapi.ModeMarkdownV2, &keyboard)
}

// GridText renders the board in one of the timing views.
func GridText(b livetiming.Board, infoType string) string {
	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetStyle(table.StyleRounded)

	switch infoType {
	case inlineKeyboardSectors:
		t.AppendHeader(table.Row{"P", tableDriver, "S1", "S2", "S3"})
	case inlineKeyboardCompound:
		t.AppendHeader(table.Row{"P", tableDriver, "TYRE", "LAPS", "PIT"})
	case inlineKeyboardGaps:
		t.AppendHeader(table.Row{"P", tableDriver, "INT", "LEADER"})
	default:
		t.AppendHeader(table.Row{"P", tableDriver, "BEST", "LAST"})
	}
	for _, r := range b.Rows {
		code := r.Code
		if code == "" {
			code = r.Number
		}
		switch infoType {
		case inlineKeyboardSectors:
			t.AppendRow(table.Row{r.Position, code, r.Sectors[0], r.Sectors[1], r.Sectors[2]})
		case inlineKeyboardCompound:
			t.AppendRow(table.Row{r.Position, code, r.Compound, r.TyreLife, r.Pit()})
		case inlineKeyboardGaps:
			t.AppendRow(table.Row{r.Position, code, r.Gap, r.ToLeader})
		default:
			best := r.BestLap
			if r.PersonalFastest {
				best += "*"
			}
			t.AppendRow(table.Row{r.Position, code, best, r.LastLap})
		}
	}
	t.Render()
	return apps.Code(SessionText(b), buf.String())
}

func getInlineKeyboard(current string) tgbotapi.InlineKeyboardMarkup {
	data := func(view string) string {
		return fmt.Sprintf("%s:%s", subcommandShowLiveTiming, view)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardTimes+" "+symbolTimes, data(inlineKeyboardTimes)),
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardSectors+" "+symbolSectors, data(inlineKeyboardSectors)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardCompound+" "+symbolCompound, data(inlineKeyboardCompound)),
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardGaps+" "+symbolGaps, data(inlineKeyboardGaps)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardUpdate+" "+symbolUpdate, data(current)),
		),
	)
}
