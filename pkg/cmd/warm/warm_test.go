package warm

import (
	"context"
	"sync"
	"testing"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1dashboard/pkg/dashboard"
	"f1dashboard/pkg/ergast"
	"f1dashboard/pkg/telemetry"
)

type fakePages struct {
	mu    sync.Mutex
	calls map[string]int
}

func (f *fakePages) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakePages) CurrentSeason() int { return 2024 }

func (f *fakePages) Season(_ context.Context, season int) (dashboard.SeasonPage, error) {
	if season == 1900 {
		return dashboard.SeasonPage{}, errors.New("boom")
	}
	return dashboard.SeasonPage{Season: season, Races: []dashboard.RaceRow{
		{Round: 1, Name: "Bahrain Grand Prix", State: ergast.StatePast},
		{Round: 2, Name: "Saudi Arabian Grand Prix", State: ergast.StatePast},
		{Round: 3, Name: "Australian Grand Prix", State: ergast.StateInProgress},
		{Round: 4, Name: "Japanese Grand Prix", State: ergast.StateUpcoming},
	}}, nil
}

func (f *fakePages) Round(context.Context, int, int) (dashboard.RoundPage, error) {
	f.record("round")
	return dashboard.RoundPage{}, nil
}

func (f *fakePages) Qualifying(_ context.Context, _, round int) (dashboard.QualifyingPage, error) {
	f.record("quali")
	if round == 2 {
		return dashboard.QualifyingPage{}, errors.New("upstream down")
	}
	return dashboard.QualifyingPage{}, nil
}

func (f *fakePages) Race(_ context.Context, _, round int) (dashboard.RacePage, error) {
	f.record("race")
	if round == 3 {
		return dashboard.RacePage{}, errors.Wrap(telemetry.ErrDataNotFound, "race")
	}
	return dashboard.RacePage{}, nil
}

func (f *fakePages) Stats(context.Context, int, int) (dashboard.StatsPage, error) {
	f.record("stats")
	return dashboard.StatsPage{}, nil
}

func TestWarm(t *testing.T) {
	pages := &fakePages{}
	res, err := Warm(context.Background(), pages, 2024, 2, progress.NewWriter())
	require.NoError(t, err)

	assert.Equal(t, Result{Rounds: 3, Failed: 1, Skipped: 1}, res)
	assert.Equal(t, map[string]int{"round": 3, "quali": 3, "race": 2, "stats": 1}, pages.calls)
}

func TestWarmSeasonError(t *testing.T) {
	_, err := Warm(context.Background(), &fakePages{}, 1900, 1, progress.NewWriter())
	assert.ErrorContains(t, err, "fetching season 1900")
}
