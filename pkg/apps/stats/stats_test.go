package stats

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1dashboard/pkg/dashboard"
	"f1dashboard/pkg/laps"
)

func f(v float64) *float64 { return &v }

func statsPage(totalLaps int) dashboard.StatsPage {
	ver := laps.Driver{Number: "1", Name: "Max Verstappen", Code: "VER"}
	lec := laps.Driver{Number: "16", Name: "Charles Leclerc", Code: "LEC"}
	var verLaps, lecLaps []laps.LapRecord
	for lap := 1; lap <= totalLaps; lap++ {
		verLaps = append(verLaps, laps.LapRecord{Lap: lap, LapTime: f(95.5), Position: f(1), Compound: "SOFT", TyreLife: f(float64(lap))})
		lecLaps = append(lecLaps, laps.LapRecord{Lap: lap, LapTime: f(96.1), Position: f(2), Interval: f(1.2), Compound: "HARD"})
	}
	dl := []laps.DriverLaps{{Driver: ver, Laps: verLaps}, {Driver: lec, Laps: lecLaps}}
	snaps := laps.Transpose(dl)
	return dashboard.StatsPage{
		RoundHeader: dashboard.RoundHeader{Season: 2024, Round: 1, Name: "Bahrain Grand Prix"},
		Drivers:     []laps.Driver{ver, lec},
		DriverLaps:  dl,
		Laps:        snaps,
		TotalLaps:   laps.TotalLaps(snaps),
	}
}

func callbackData(row []tgbotapi.InlineKeyboardButton) []string {
	return lo.Map(row, func(b tgbotapi.InlineKeyboardButton, _ int) string { return *b.CallbackData })
}

func TestLapKeyboard(t *testing.T) {
	k := LapKeyboard(2024, 1, 10, 57)

	// first, prev, next, last
	assert.Equal(t, []string{"stats:2024:1:lap:1", "stats:2024:1:lap:9", "stats:2024:1:lap:11", "stats:2024:1:lap:57"}, callbackData(k.InlineKeyboard[0]))

	// ellipsis, 5..15, ellipsis chunked by six
	pages := lo.Flatten(k.InlineKeyboard[1 : len(k.InlineKeyboard)-1])
	labels := lo.Map(pages, func(b tgbotapi.InlineKeyboardButton, _ int) string { return b.Text })
	assert.Equal(t, []string{"…", "5", "6", "7", "8", "9", "·10·", "11", "12", "13", "14", "15", "…"}, labels)
	assert.Equal(t, "noop", *pages[0].CallbackData)
	assert.Equal(t, "noop", *pages[6].CallbackData)
	assert.Len(t, k.InlineKeyboard[1], pagesPerRow)

	last := k.InlineKeyboard[len(k.InlineKeyboard)-1]
	assert.Equal(t, []string{"stats:2024:1:drivers", "round:2024:1"}, callbackData(last))
}

func TestLapKeyboardFirstLap(t *testing.T) {
	k := LapKeyboard(2024, 1, 1, 3)
	assert.Equal(t, []string{"noop", "noop", "stats:2024:1:lap:2", "stats:2024:1:lap:3"}, callbackData(k.InlineKeyboard[0]))
	assert.Equal(t, []string{"noop", "stats:2024:1:lap:2", "stats:2024:1:lap:3"}, callbackData(k.InlineKeyboard[1]))
}

func TestLapTextMarkup(t *testing.T) {
	text, _ := LapTextMarkup(statsPage(3), 99)

	assert.True(t, strings.HasPrefix(text, "```\nBahrain Grand Prix - Lap-by-Lap\nLap 3/3\n\n"))
	assert.Contains(t, text, "1:35.500")
	assert.Contains(t, text, "+1.200")
	assert.Contains(t, text, "S 3")
	assert.Less(t, strings.Index(text, "VER"), strings.Index(text, "LEC"))
}

func TestDriversTextMarkup(t *testing.T) {
	_, k := DriversTextMarkup(statsPage(2))
	assert.Equal(t, []string{"stats:2024:1:driver:1:0", "stats:2024:1:driver:16:0"}, callbackData(k.InlineKeyboard[0]))
	assert.Equal(t, []string{"stats:2024:1:lap:1", "round:2024:1"}, callbackData(k.InlineKeyboard[1]))
}

func TestDriverTextMarkup(t *testing.T) {
	page := statsPage(40)

	text, k := DriverTextMarkup(page, "16", 1)
	assert.Contains(t, text, "LEC Charles Leclerc (2/3)")
	assert.Contains(t, text, "│ 16  │")
	assert.NotContains(t, text, "│ 15  │")
	assert.Equal(t, []string{
		"stats:2024:1:driver:16:0",
		"stats:2024:1:driver:16:0",
		"stats:2024:1:driver:16:2",
		"stats:2024:1:driver:16:2",
	}, callbackData(k.InlineKeyboard[0]))

	// unknown drivers fall back to the picker
	text, _ = DriverTextMarkup(page, "99", 0)
	assert.Contains(t, text, "Pick a driver")
}

type fakePages struct{ page dashboard.StatsPage }

func (f fakePages) Stats(context.Context, int, int) (dashboard.StatsPage, error) { return f.page, nil }

type recordingSender struct {
	sent []tgbotapi.Chattable
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.sent = append(r.sent, c)
	return tgbotapi.Message{}, nil
}

func TestAcceptCallback(t *testing.T) {
	query := func(data string) *tgbotapi.CallbackQuery {
		return &tgbotapi.CallbackQuery{Data: data, Message: &tgbotapi.Message{MessageID: 4, Chat: &tgbotapi.Chat{ID: 1}}}
	}

	s := &recordingSender{}
	app := NewStatsApp(s, fakePages{page: statsPage(5)})

	for _, data := range []string{"stats:2024:1:lap:2", "stats:2024:1:drivers", "stats:2024:1:driver:1:0"} {
		accept, handler := app.AcceptCallback(query(data))
		require.True(t, accept, data)
		require.NoError(t, handler(context.Background(), query(data)))
	}
	require.Len(t, s.sent, 3)
	assert.Contains(t, s.sent[0].(tgbotapi.EditMessageTextConfig).Text, "Lap 2/5")
	assert.Contains(t, s.sent[2].(tgbotapi.EditMessageTextConfig).Text, "VER Max Verstappen")

	accept, handler := app.AcceptCallback(query("noop"))
	require.True(t, accept)
	require.NoError(t, handler(context.Background(), query("noop")))
	assert.Len(t, s.sent, 3)

	s2 := &recordingSender{}
	empty := NewStatsApp(s2, fakePages{})
	_, handler = empty.AcceptCallback(query("stats:2024:1:lap:1"))
	require.NoError(t, handler(context.Background(), query("stats:2024:1:lap:1")))
	assert.Equal(t, "No lap data for this round", s2.sent[0].(tgbotapi.MessageConfig).Text)
}
