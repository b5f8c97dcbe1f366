// Package warm prefetches the pages of a season into the shared response cache.
package warm

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"f1dashboard/log"
	"f1dashboard/pkg/cmd/setup"
	"f1dashboard/pkg/config"
	"f1dashboard/pkg/dashboard"
	"f1dashboard/pkg/ergast"
	"f1dashboard/pkg/telemetry"
)

// requests per round: schedule, qualifying, race, stats
const steps = 4

var (
	season   int
	parallel int
)

type Pages interface {
	CurrentSeason() int
	Season(ctx context.Context, season int) (dashboard.SeasonPage, error)
	Round(ctx context.Context, season, round int) (dashboard.RoundPage, error)
	Qualifying(ctx context.Context, season, round int) (dashboard.QualifyingPage, error)
	Race(ctx context.Context, season, round int) (dashboard.RacePage, error)
	Stats(ctx context.Context, season, round int) (dashboard.StatsPage, error)
}

type Result struct {
	Rounds  int
	Failed  int
	Skipped int
}

func NewWarmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warm",
		Short: "prefetches a season into the redis response cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startWarm()
		},
	}
	cmd.Flags().IntVar(&season,
		"season",
		0,
		"Season to prefetch (default is the current season)")
	cmd.Flags().IntVar(&parallel,
		"parallel",
		2,
		"Rounds fetched at the same time")
	return cmd
}

func startWarm() error {
	setup.InitLogger()
	if config.RedisAddr == "" {
		return errors.New("warming needs a shared cache, set --redis-addr")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := setup.StartPages(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if season == 0 {
		season = app.Pages.CurrentSeason()
	}

	pw := newProgressWriter()
	go pw.Render()

	res, err := Warm(ctx, app.Pages, season, parallel, pw)
	for pw.IsRenderInProgress() {
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		return err
	}
	log.Info("Season prefetched",
		log.Int("season", season),
		log.Int("rounds", res.Rounds),
		log.Int("failed", res.Failed),
		log.Int("skipped", res.Skipped))
	return nil
}

func newProgressWriter() progress.Writer {
	pw := progress.NewWriter()
	pw.SetAutoStop(true)
	pw.SetTrackerLength(20)
	pw.SetMessageWidth(28)
	pw.SetSortBy(progress.SortByNone)
	pw.SetStyle(progress.StyleDefault)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(time.Millisecond * 100)
	pw.Style().Colors = progress.StyleColorsDefault
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.Speed = false
	pw.Style().Visibility.Value = false
	pw.Style().Chars.BoxRight = "🏁"
	return pw
}

// Warm fetches every page of each round of the season that already started.
// Rounds without results yet count as skipped, other errors as failed.
func Warm(ctx context.Context, pages Pages, season, parallel int, pw progress.Writer) (Result, error) {
	sp, err := pages.Season(ctx, season)
	if err != nil {
		return Result{}, errors.Wrapf(err, "fetching season %d", season)
	}

	var res Result
	var failed, skipped atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, parallel))
	for _, race := range sp.Races {
		if race.State == ergast.StateUpcoming {
			continue
		}
		res.Rounds++
		tracker := &progress.Tracker{
			Message: fmt.Sprintf("R%d %s", race.Round, race.Name),
			Total:   steps,
			Units:   progress.UnitsDefault,
		}
		pw.AppendTracker(tracker)

		round := race.Round
		g.Go(func() error {
			calls := []func() error{
				func() error { _, err := pages.Round(gctx, season, round); return err },
				func() error { _, err := pages.Qualifying(gctx, season, round); return err },
				func() error { _, err := pages.Race(gctx, season, round); return err },
				func() error { _, err := pages.Stats(gctx, season, round); return err },
			}
			for _, call := range calls {
				err := call()
				switch {
				case errors.Is(err, telemetry.ErrDataNotFound):
					skipped.Add(1)
					tracker.MarkAsDone()
					return nil
				case err != nil:
					log.Debug("prefetch failed", log.Int("round", round), log.ErrorField(err))
					failed.Add(1)
					tracker.MarkAsErrored()
					return nil
				}
				tracker.Increment(1)
			}
			tracker.MarkAsDone()
			return nil
		})
	}
	// the group never fails, errors are counted per round
	_ = g.Wait()

	res.Failed = int(failed.Load())
	res.Skipped = int(skipped.Load())
	return res, ctx.Err()
}
