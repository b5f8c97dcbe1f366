package seasons

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"f1dashboard/log"
	"f1dashboard/pkg/apps"
	"f1dashboard/pkg/dashboard"
	"f1dashboard/pkg/ergast"
	"f1dashboard/pkg/menus"
	"f1dashboard/pkg/pager"
)

const (
	commandSeason      = "/season"
	subcommandSeasons  = "seasons"
	subcommandRound    = "round"
	subcommandResults  = "results"
	subcommandStats    = "stats"
	racesPerPage       = 10
	currentSeasonBadge = "Current Season"

	symbolInit = "⏮"
	symbolPrev = "◀️"
	symbolNext = "▶️"
	symbolEnd  = "⏭"

	symbolPast       = "🏁"
	symbolInProgress = "🟢"
	symbolUpcoming   = "🔜"
)

var (
	commandSeasonRe = regexp.MustCompile(`^/season(?:_(\d{4}))?$`)
	commandRoundRe  = regexp.MustCompile(`^/r(\d{4})_(\d+)$`)
)

type Pages interface {
	CurrentSeason() int
	Season(ctx context.Context, season int) (dashboard.SeasonPage, error)
	Round(ctx context.Context, season, round int) (dashboard.RoundPage, error)
}

type SeasonsApp struct {
	bot          apps.Sender
	appMenu      menus.ApplicationMenu
	menuKeyboard tgbotapi.ReplyKeyboardMarkup
	pages        Pages
	accepters    []apps.Accepter
}

// NewSeasonsApp builds the schedule browser. extra accepters handle the
// callbacks of the round detail buttons.
func NewSeasonsApp(bot apps.Sender, appMenu menus.ApplicationMenu, pages Pages, extra ...apps.Accepter) *SeasonsApp {
	menuKeyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(appMenu.ButtonBackTo()),
		),
	)
	return &SeasonsApp{
		bot:          bot,
		appMenu:      appMenu,
		menuKeyboard: menuKeyboard,
		pages:        pages,
		accepters:    extra,
	}
}

func (sa *SeasonsApp) Menu() tgbotapi.ReplyKeyboardMarkup {
	return sa.menuKeyboard
}

func (sa *SeasonsApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	if m := commandSeasonRe.FindStringSubmatch(command); m != nil {
		season := sa.pages.CurrentSeason()
		if m[1] != "" {
			season, _ = strconv.Atoi(m[1])
		}
		return true, func(ctx context.Context, chatId int64) error {
			return sa.sendSeason(ctx, chatId, nil, season, 0)
		}
	}
	if m := commandRoundRe.FindStringSubmatch(command); m != nil {
		season, _ := strconv.Atoi(m[1])
		round, _ := strconv.Atoi(m[2])
		return true, func(ctx context.Context, chatId int64) error {
			return sa.sendRound(ctx, chatId, nil, season, round)
		}
	}
	return apps.AcceptCommand(sa.accepters, command)
}

func (sa *SeasonsApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	data := strings.Split(query.Data, ":")
	switch {
	case data[0] == subcommandSeasons && len(data) == 4:
		season, _ := strconv.Atoi(data[1])
		current, _ := strconv.Atoi(data[3])
		action := data[2]
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
			page, err := sa.pages.Season(ctx, season)
			if err != nil {
				return sa.renderError(query.Message.Chat.ID, err)
			}
			next, ok := pager.Navigate(action, current, pager.PageCount(len(page.Races), racesPerPage))
			if !ok || next == current {
				return nil
			}
			text, keyboard := SeasonTextMarkup(page, next)
			return apps.SendOrEdit(sa.bot, query.Message.Chat.ID, &query.Message.MessageID, text, "", &keyboard)
		}
	case data[0] == subcommandRound && len(data) == 3:
		season, _ := strconv.Atoi(data[1])
		round, _ := strconv.Atoi(data[2])
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
			return sa.sendRound(ctx, query.Message.Chat.ID, &query.Message.MessageID, season, round)
		}
	}
	return apps.AcceptCallback(sa.accepters, query)
}

func (sa *SeasonsApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	if button == sa.appMenu.Name {
		return true, func(ctx context.Context, chatId int64) error {
			msg := tgbotapi.NewMessage(chatId, fmt.Sprintf("%s\n\nUse %s_YYYY for another season.", sa.appMenu.Name, commandSeason))
			msg.ReplyMarkup = sa.menuKeyboard
			if _, err := sa.bot.Send(msg); err != nil {
				return err
			}
			return sa.sendSeason(ctx, chatId, nil, sa.pages.CurrentSeason(), 0)
		}
	} else if button == sa.appMenu.ButtonBackTo() {
		return true, func(ctx context.Context, chatId int64) error {
			msg := tgbotapi.NewMessage(chatId, "OK")
			msg.ReplyMarkup = sa.appMenu.PrevMenu()
			_, err := sa.bot.Send(msg)
			return err
		}
	}
	return apps.AcceptButton(sa.accepters, button)
}

func (sa *SeasonsApp) sendSeason(ctx context.Context, chatId int64, messageID *int, season, page int) error {
	sp, err := sa.pages.Season(ctx, season)
	if err != nil {
		return sa.renderError(chatId, err)
	}
	if len(sp.Races) == 0 {
		msg := tgbotapi.NewMessage(chatId, fmt.Sprintf("No races found for %d", season))
		_, err = sa.bot.Send(msg)
		return err
	}
	text, keyboard := SeasonTextMarkup(sp, page)
	return apps.SendOrEdit(sa.bot, chatId, messageID, text, "", &keyboard)
}

func (sa *SeasonsApp) sendRound(ctx context.Context, chatId int64, messageID *int, season, round int) error {
	rp, err := sa.pages.Round(ctx, season, round)
	if err != nil {
		return sa.renderError(chatId, err)
	}
	text, keyboard := RoundTextMarkup(rp)
	return apps.SendOrEdit(sa.bot, chatId, messageID, text, tgbotapi.ModeMarkdownV2, &keyboard)
}

func (sa *SeasonsApp) renderError(chatId int64, err error) error {
	log.Warn("could not load schedule", log.ErrorField(err))
	message := "Schedule not available right now"
	if errors.Is(err, ergast.ErrRoundNotFound) {
		message = "Round not found"
	}
	msg := tgbotapi.NewMessage(chatId, message)
	_, err = sa.bot.Send(msg)
	return err
}

func stateSymbol(s ergast.State) string {
	switch s {
	case ergast.StateInProgress:
		return symbolInProgress
	case ergast.StateUpcoming:
		return symbolUpcoming
	default:
		return symbolPast
	}
}

// SeasonTextMarkup renders one page of the season schedule and its pager.
func SeasonTextMarkup(sp dashboard.SeasonPage, currentPage int) (text string, markup tgbotapi.InlineKeyboardMarkup) {
	maxPages := pager.PageCount(len(sp.Races), racesPerPage)
	currentPage = pager.Clamp(currentPage, 0, maxPages-1)
	from, to := pager.Range(currentPage, racesPerPage, len(sp.Races))

	title := fmt.Sprintf("Season %d", sp.Season)
	if sp.Current {
		title += " (" + currentSeasonBadge + ")"
	}
	lines := make([]string, 0, to-from)
	for _, r := range sp.Races[from:to] {
		lines = append(lines, fmt.Sprintf("%s R%d %s (%s) ➡ /r%d_%d", stateSymbol(r.State), r.Round, r.Name, r.StartDate, sp.Season, r.Round))
	}
	text = fmt.Sprintf("%s (%d/%d):\n\n", title, currentPage+1, maxPages)
	text += strings.Join(lines, "\n")

	data := func(action string) string {
		return fmt.Sprintf("%s:%d:%s:%d", subcommandSeasons, sp.Season, action, currentPage)
	}
	row := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(symbolInit, data(pager.ActionInit)),
		tgbotapi.NewInlineKeyboardButtonData(symbolPrev, data(pager.ActionPrev)),
		tgbotapi.NewInlineKeyboardButtonData(symbolNext, data(pager.ActionNext)),
		tgbotapi.NewInlineKeyboardButtonData(symbolEnd, data(pager.ActionEnd)),
	)
	markup = tgbotapi.NewInlineKeyboardMarkup(row)
	return
}

// RoundTextMarkup renders the weekend schedule with links to its results.
func RoundTextMarkup(rp dashboard.RoundPage) (text string, markup tgbotapi.InlineKeyboardMarkup) {
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"SESSION", "WHEN"})
	for _, s := range rp.Sessions {
		t.AppendRow(table.Row{s.Label, s.When})
	}
	t.Render()

	title := fmt.Sprintf("%s %s\nR%d %s\n%s - %s", stateSymbol(rp.State), rp.Name, rp.Round, rp.Circuit, rp.StartDate, rp.EndDate)
	text = apps.Code(title, b.String())
	markup = RoundKeyboard(rp.Season, rp.Round)
	return
}

func RoundKeyboard(season, round int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Qualifying ⏱", fmt.Sprintf("%s:%d:%d:quali", subcommandResults, season, round)),
			tgbotapi.NewInlineKeyboardButtonData("Race 🏁", fmt.Sprintf("%s:%d:%d:race", subcommandResults, season, round)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Stats 🔂", fmt.Sprintf("%s:%d:%d:lap:1", subcommandStats, season, round)),
		),
	)
}
