package results

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"f1dashboard/log"
	"f1dashboard/pkg/apps"
	"f1dashboard/pkg/dashboard"
	"f1dashboard/pkg/telemetry"
)

const (
	subcommandResults = "results"
	subcommandRound   = "round"
	subcommandStats   = "stats"
	kindQuali         = "quali"
	kindRace          = "race"

	tableDriver = "DRV"
)

type Pages interface {
	Qualifying(ctx context.Context, season, round int) (dashboard.QualifyingPage, error)
	Race(ctx context.Context, season, round int) (dashboard.RacePage, error)
}

// ResultsApp renders classified results of a round in place of the message
// that asked for them.
type ResultsApp struct {
	bot   apps.Sender
	pages Pages
}

func NewResultsApp(bot apps.Sender, pages Pages) *ResultsApp {
	return &ResultsApp{bot: bot, pages: pages}
}

func (ra *ResultsApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	return false, nil
}

func (ra *ResultsApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	return false, nil
}

func (ra *ResultsApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	data := strings.Split(query.Data, ":")
	if data[0] != subcommandResults || len(data) != 4 {
		return false, nil
	}
	season, _ := strconv.Atoi(data[1])
	round, _ := strconv.Atoi(data[2])
	kind := data[3]
	return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
		chatId := query.Message.Chat.ID
		var (
			text string
			err  error
		)
		switch kind {
		case kindQuali:
			var qp dashboard.QualifyingPage
			if qp, err = ra.pages.Qualifying(ctx, season, round); err == nil {
				text = QualifyingText(qp)
			}
		case kindRace:
			var rp dashboard.RacePage
			if rp, err = ra.pages.Race(ctx, season, round); err == nil {
				text = RaceText(rp)
			}
		default:
			return nil
		}
		if err != nil {
			return ra.renderError(chatId, err)
		}
		keyboard := Keyboard(season, round, kind)
		return apps.SendOrEdit(ra.bot, chatId, &query.Message.MessageID, text, tgbotapi.ModeMarkdownV2, &keyboard)
	}
}

func (ra *ResultsApp) renderError(chatId int64, err error) error {
	message := "Results not available right now"
	if errors.Is(err, telemetry.ErrDataNotFound) {
		message = "No results for this session yet"
	} else {
		log.Warn("could not load results", log.ErrorField(err))
	}
	_, err = ra.bot.Send(tgbotapi.NewMessage(chatId, message))
	return err
}

func title(h dashboard.RoundHeader, session string) string {
	return fmt.Sprintf("%s - %s\n%d R%d %s", h.Name, session, h.Season, h.Round, h.Circuit)
}

func QualifyingText(qp dashboard.QualifyingPage) string {
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"P", tableDriver, "Q1", "Q2", "Q3"})
	for _, r := range qp.Rows {
		t.AppendRow(table.Row{r.Position, r.Code, r.Q1, r.Q2, r.Q3})
	}
	t.Render()
	return apps.Code(title(qp.RoundHeader, "Qualifying"), b.String())
}

func RaceText(rp dashboard.RacePage) string {
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"P", tableDriver, "GRID", "TIME"})
	for _, r := range rp.Rows {
		t.AppendRow(table.Row{r.Position, r.Code, r.Grid, r.Time})
	}
	t.Render()
	return apps.Code(title(rp.RoundHeader, "Race"), b.String())
}

// Keyboard switches between the two result tables and links back to the
// weekend schedule.
func Keyboard(season, round int, current string) tgbotapi.InlineKeyboardMarkup {
	other, label := kindRace, "Race 🏁"
	if current == kindRace {
		other, label = kindQuali, "Qualifying ⏱"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s:%d:%d:%s", subcommandResults, season, round, other)),
			tgbotapi.NewInlineKeyboardButtonData("Stats 🔂", fmt.Sprintf("%s:%d:%d:lap:1", subcommandStats, season, round)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Schedule ⌚️", fmt.Sprintf("%s:%d:%d", subcommandRound, season, round)),
		),
	)
}
