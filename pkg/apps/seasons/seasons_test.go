package seasons

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1dashboard/pkg/dashboard"
	"f1dashboard/pkg/ergast"
	"f1dashboard/pkg/menus"
)

type recordingSender struct {
	sent []tgbotapi.Chattable
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.sent = append(r.sent, c)
	return tgbotapi.Message{}, nil
}

type fakePages struct {
	season dashboard.SeasonPage
	round  dashboard.RoundPage
	asked  []string
}

func (f *fakePages) CurrentSeason() int { return 2024 }

func (f *fakePages) Season(_ context.Context, season int) (dashboard.SeasonPage, error) {
	f.asked = append(f.asked, fmt.Sprintf("season %d", season))
	return f.season, nil
}

func (f *fakePages) Round(_ context.Context, season, round int) (dashboard.RoundPage, error) {
	f.asked = append(f.asked, fmt.Sprintf("round %d/%d", season, round))
	if round > 24 {
		return dashboard.RoundPage{}, ergast.ErrRoundNotFound
	}
	return f.round, nil
}

type staticMenu struct{}

func (staticMenu) Menu() tgbotapi.ReplyKeyboardMarkup { return tgbotapi.ReplyKeyboardMarkup{} }

func seasonPage(n int) dashboard.SeasonPage {
	sp := dashboard.SeasonPage{Season: 2024, Current: true}
	for i := 1; i <= n; i++ {
		sp.Races = append(sp.Races, dashboard.RaceRow{Round: i, Name: fmt.Sprintf("GP %d", i), StartDate: "3/2/2024", State: ergast.StatePast})
	}
	return sp
}

func TestSeasonTextMarkup(t *testing.T) {
	text, markup := SeasonTextMarkup(seasonPage(24), 2)

	assert.True(t, strings.HasPrefix(text, "Season 2024 (Current Season) (3/3):\n\n"))
	assert.Contains(t, text, "🏁 R21 GP 21 (3/2/2024) ➡ /r2024_21")
	assert.Contains(t, text, "/r2024_24")
	assert.NotContains(t, text, "/r2024_20\n")

	require.Len(t, markup.InlineKeyboard, 1)
	row := markup.InlineKeyboard[0]
	require.Len(t, row, 4)
	assert.Equal(t, "seasons:2024:init:2", *row[0].CallbackData)
	assert.Equal(t, "seasons:2024:next:2", *row[2].CallbackData)
}

func TestRoundTextMarkup(t *testing.T) {
	rp := dashboard.RoundPage{
		RoundHeader: dashboard.RoundHeader{Season: 2024, Round: 1, Name: "Bahrain Grand Prix", Circuit: "Bahrain International Circuit", StartDate: "2/29/2024", EndDate: "3/2/2024"},
		State:       ergast.StatePast,
		Sessions: []dashboard.SessionRow{
			{Key: ergast.SessionFP1, Label: "Practice 1", When: "2/29/2024, 11:30:00 AM"},
			{Key: ergast.SessionRace, Label: "Race", When: "3/2/2024, 3:00:00 PM"},
		},
	}
	text, markup := RoundTextMarkup(rp)

	assert.True(t, strings.HasPrefix(text, "```\n🏁 Bahrain Grand Prix\nR1 Bahrain International Circuit\n2/29/2024 - 3/2/2024\n\n"))
	assert.Contains(t, text, "3/2/2024, 3:00:00 PM")
	assert.True(t, strings.HasSuffix(text, "```"))

	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "results:2024:1:quali", *markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "results:2024:1:race", *markup.InlineKeyboard[0][1].CallbackData)
	assert.Equal(t, "stats:2024:1:lap:1", *markup.InlineKeyboard[1][0].CallbackData)
}

func TestAcceptCommand(t *testing.T) {
	pages := &fakePages{season: seasonPage(3)}
	s := &recordingSender{}
	app := NewSeasonsApp(s, menus.NewApplicationMenu("Seasons", "menu", staticMenu{}), pages)

	tests := []struct {
		command string
		accept  bool
		asked   string
	}{
		{command: "/season", accept: true, asked: "season 2024"},
		{command: "/season_2021", accept: true, asked: "season 2021"},
		{command: "/r2023_5", accept: true, asked: "round 2023/5"},
		{command: "/r2023", accept: false},
		{command: "/seasons", accept: false},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			pages.asked = nil
			accept, handler := app.AcceptCommand(tt.command)
			require.Equal(t, tt.accept, accept)
			if !accept {
				return
			}
			require.NoError(t, handler(context.Background(), 1))
			assert.Equal(t, []string{tt.asked}, pages.asked)
		})
	}
}

func TestRoundNotFound(t *testing.T) {
	pages := &fakePages{}
	s := &recordingSender{}
	app := NewSeasonsApp(s, menus.NewApplicationMenu("Seasons", "menu", staticMenu{}), pages)

	accept, handler := app.AcceptCommand("/r2024_30")
	require.True(t, accept)
	require.NoError(t, handler(context.Background(), 1))
	require.Len(t, s.sent, 1)
	assert.Equal(t, "Round not found", s.sent[0].(tgbotapi.MessageConfig).Text)
}

func TestSeasonPagerCallback(t *testing.T) {
	pages := &fakePages{season: seasonPage(24)}
	s := &recordingSender{}
	app := NewSeasonsApp(s, menus.NewApplicationMenu("Seasons", "menu", staticMenu{}), pages)

	query := func(data string) *tgbotapi.CallbackQuery {
		return &tgbotapi.CallbackQuery{
			Data:    data,
			Message: &tgbotapi.Message{MessageID: 3, Chat: &tgbotapi.Chat{ID: 1}},
		}
	}

	accept, handler := app.AcceptCallback(query("seasons:2024:next:0"))
	require.True(t, accept)
	require.NoError(t, handler(context.Background(), query("seasons:2024:next:0")))
	require.Len(t, s.sent, 1)
	edit := s.sent[0].(tgbotapi.EditMessageTextConfig)
	assert.Contains(t, edit.Text, "(2/3)")

	// already on the last page
	_, handler = app.AcceptCallback(query("seasons:2024:next:2"))
	require.NoError(t, handler(context.Background(), query("seasons:2024:next:2")))
	assert.Len(t, s.sent, 1)

	accept, _ = app.AcceptCallback(query("unknown:1"))
	assert.False(t, accept)
}
