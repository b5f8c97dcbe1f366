package stats

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"f1dashboard/log"
	"f1dashboard/pkg/apps"
	"f1dashboard/pkg/dashboard"
	"f1dashboard/pkg/laps"
	"f1dashboard/pkg/pager"
	"f1dashboard/pkg/telemetry"
)

const (
	subcommandStats = "stats"
	subcommandRound = "round"
	subcommandNoop  = "noop"

	modeLap     = "lap"
	modeDriver  = "driver"
	modeDrivers = "drivers"

	lapsPerPage      = 15
	pagesPerRow      = 6
	driversPerRow    = 4
	tableDriver      = "DRV"
	inlineLapMode    = "Lap-by-Lap 🏁"
	inlineDriverMode = "Driver 👐"
	inlineSchedule   = "Schedule ⌚️"

	symbolInit     = "⏮"
	symbolPrev     = "◀️"
	symbolNext     = "▶️"
	symbolEnd      = "⏭"
	symbolEllipsis = "…"
)

type Pages interface {
	Stats(ctx context.Context, season, round int) (dashboard.StatsPage, error)
}

// StatsApp renders the lap charts of a race in driver mode or lap mode.
type StatsApp struct {
	bot   apps.Sender
	pages Pages
}

func NewStatsApp(bot apps.Sender, pages Pages) *StatsApp {
	return &StatsApp{bot: bot, pages: pages}
}

func (sa *StatsApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	return false, nil
}

func (sa *StatsApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	return false, nil
}

func (sa *StatsApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	data := strings.Split(query.Data, ":")
	if data[0] == subcommandNoop {
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error { return nil }
	}
	if data[0] != subcommandStats || len(data) < 4 {
		return false, nil
	}
	season, _ := strconv.Atoi(data[1])
	round, _ := strconv.Atoi(data[2])
	mode := data[3]
	args := data[4:]

	return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
		chatId := query.Message.Chat.ID
		page, err := sa.pages.Stats(ctx, season, round)
		if err != nil {
			return sa.renderError(chatId, err)
		}
		if len(page.Laps) == 0 {
			_, err = sa.bot.Send(tgbotapi.NewMessage(chatId, "No lap data for this round"))
			return err
		}

		var (
			text     string
			keyboard tgbotapi.InlineKeyboardMarkup
		)
		switch mode {
		case modeLap:
			lap := 1
			if len(args) > 0 {
				lap, _ = strconv.Atoi(args[0])
			}
			text, keyboard = LapTextMarkup(page, lap)
		case modeDrivers:
			text, keyboard = DriversTextMarkup(page)
		case modeDriver:
			number := page.DefaultDriver()
			p := 0
			if len(args) > 0 {
				number = args[0]
			}
			if len(args) > 1 {
				p, _ = strconv.Atoi(args[1])
			}
			text, keyboard = DriverTextMarkup(page, number, p)
		default:
			return nil
		}
		return apps.SendOrEdit(sa.bot, chatId, &query.Message.MessageID, text, tgbotapi.ModeMarkdownV2, &keyboard)
	}
}

func (sa *StatsApp) renderError(chatId int64, err error) error {
	message := "Race stats not available right now"
	if errors.Is(err, telemetry.ErrDataNotFound) {
		message = "No lap data for this round"
	} else {
		log.Warn("could not load stats", log.ErrorField(err))
	}
	_, err = sa.bot.Send(tgbotapi.NewMessage(chatId, message))
	return err
}

func data(season, round int, parts ...any) string {
	s := fmt.Sprintf("%s:%d:%d", subcommandStats, season, round)
	for _, p := range parts {
		s += fmt.Sprintf(":%v", p)
	}
	return s
}

// LapTextMarkup renders the standings of one lap with the lap pager.
func LapTextMarkup(page dashboard.StatsPage, lap int) (string, tgbotapi.InlineKeyboardMarkup) {
	lap = pager.Clamp(lap, 1, page.TotalLaps)

	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"P", tableDriver, "TIME", "INT", "TYRE"})
	if snap, ok := laps.ForLap(page.Laps, lap); ok {
		for _, r := range dashboard.LapRows(snap) {
			t.AppendRow(table.Row{r.Position, r.Driver, r.LapTime, r.Interval, tyre(r)})
		}
	}
	t.Render()

	title := fmt.Sprintf("%s - %s\nLap %d/%d", page.Name, dashboard.ModeLap, lap, page.TotalLaps)
	return apps.Code(title, b.String()), LapKeyboard(page.Season, page.Round, lap, page.TotalLaps)
}

// LapKeyboard lays out the lap window: navigation first, then the lap numbers.
func LapKeyboard(season, round, lap, total int) tgbotapi.InlineKeyboardMarkup {
	lap = pager.Clamp(lap, 1, total)
	button := func(label string, target int) tgbotapi.InlineKeyboardButton {
		if target == lap {
			return tgbotapi.NewInlineKeyboardButtonData(label, subcommandNoop)
		}
		return tgbotapi.NewInlineKeyboardButtonData(label, data(season, round, modeLap, target))
	}

	var nav, pages []tgbotapi.InlineKeyboardButton
	for _, item := range pager.LapWindow(lap, total) {
		switch item.Kind {
		case pager.KindFirst:
			nav = append(nav, button(symbolInit, item.Page))
		case pager.KindPrev:
			nav = append(nav, button(symbolPrev, item.Page))
		case pager.KindNext:
			nav = append(nav, button(symbolNext, item.Page))
		case pager.KindLast:
			nav = append(nav, button(symbolEnd, item.Page))
		case pager.KindEllipsis:
			pages = append(pages, tgbotapi.NewInlineKeyboardButtonData(symbolEllipsis, subcommandNoop))
		case pager.KindPage:
			label := strconv.Itoa(item.Page)
			if item.Active {
				label = "·" + label + "·"
			}
			pages = append(pages, button(label, item.Page))
		}
	}

	rows := [][]tgbotapi.InlineKeyboardButton{nav}
	rows = append(rows, lo.Chunk(pages, pagesPerRow)...)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(inlineDriverMode, data(season, round, modeDrivers)),
		tgbotapi.NewInlineKeyboardButtonData(inlineSchedule, fmt.Sprintf("%s:%d:%d", subcommandRound, season, round)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// DriversTextMarkup lists the drivers to pick one for driver mode.
func DriversTextMarkup(page dashboard.StatsPage) (string, tgbotapi.InlineKeyboardMarkup) {
	drivers := page.Drivers
	if len(drivers) == 0 {
		drivers = lo.Map(page.DriverLaps, func(dl laps.DriverLaps, _ int) laps.Driver { return dl.Driver })
	}

	buttons := lo.Map(drivers, func(d laps.Driver, _ int) tgbotapi.InlineKeyboardButton {
		label := d.Code
		if label == "" {
			label = d.Number
		}
		return tgbotapi.NewInlineKeyboardButtonData(label, data(page.Season, page.Round, modeDriver, d.Number, 0))
	})
	rows := lo.Chunk(buttons, driversPerRow)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(inlineLapMode, data(page.Season, page.Round, modeLap, 1)),
		tgbotapi.NewInlineKeyboardButtonData(inlineSchedule, fmt.Sprintf("%s:%d:%d", subcommandRound, page.Season, page.Round)),
	))

	text := apps.Code(fmt.Sprintf("%s - %s", page.Name, dashboard.ModeDriver), "Pick a driver")
	return text, tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// DriverTextMarkup renders one page of the laps of a driver.
func DriverTextMarkup(page dashboard.StatsPage, number string, p int) (string, tgbotapi.InlineKeyboardMarkup) {
	dl, ok := page.Driver(number)
	if !ok {
		return DriversTextMarkup(page)
	}
	rows := dashboard.DriverRows(dl)
	maxPages := pager.PageCount(len(rows), lapsPerPage)
	p = pager.Clamp(p, 0, maxPages-1)
	from, to := pager.Range(p, lapsPerPage, len(rows))

	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"LAP", "P", "TIME", "TYRE", "PIT"})
	for _, r := range rows[from:to] {
		t.AppendRow(table.Row{r.Lap, r.Position, r.LapTime, tyre(r), r.Pit})
	}
	t.Render()

	title := fmt.Sprintf("%s - %s\n%s %s (%d/%d)", page.Name, dashboard.ModeDriver, dl.Code, dl.Name, p+1, maxPages)

	button := func(label string, target int) tgbotapi.InlineKeyboardButton {
		if target == p {
			return tgbotapi.NewInlineKeyboardButtonData(label, subcommandNoop)
		}
		return tgbotapi.NewInlineKeyboardButtonData(label, data(page.Season, page.Round, modeDriver, number, target))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button(symbolInit, 0),
			button(symbolPrev, max(0, p-1)),
			button(symbolNext, min(maxPages-1, p+1)),
			button(symbolEnd, maxPages-1),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(inlineDriverMode, data(page.Season, page.Round, modeDrivers)),
			tgbotapi.NewInlineKeyboardButtonData(inlineLapMode, data(page.Season, page.Round, modeLap, 1)),
		),
	)
	return apps.Code(title, b.String()), keyboard
}

func tyre(r dashboard.LapRow) string {
	if r.Compound == "" {
		return r.TyreLife
	}
	if r.TyreLife == "" {
		return r.Compound[:1]
	}
	return fmt.Sprintf("%s %s", r.Compound[:1], r.TyreLife)
}
