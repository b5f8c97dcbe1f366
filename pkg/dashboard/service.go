// Package dashboard joins the schedule, results and lap data into the page
// models rendered by the web dashboard and the bot.
package dashboard

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"f1dashboard/log"
	"f1dashboard/pkg/ergast"
	"f1dashboard/pkg/helper"
	"f1dashboard/pkg/laps"
	"f1dashboard/pkg/telemetry"
)

type Schedule interface {
	Season(ctx context.Context, season int) ([]ergast.Race, error)
	Round(ctx context.Context, season, round int) (ergast.RoundDetail, error)
}

type Telemetry interface {
	QualifyingResults(ctx context.Context, year, gp int) ([]telemetry.QualifyingResult, error)
	RaceResults(ctx context.Context, year, gp int) ([]telemetry.RaceResult, error)
	LapTimes(ctx context.Context, year, gp int, session string) ([]laps.DriverLaps, error)
	Weather(ctx context.Context, year, gp int, session string) ([]telemetry.WeatherSample, error)
}

type Service struct {
	schedule  Schedule
	telemetry Telemetry
	loc       *time.Location
	now       func() time.Time
}

func NewService(schedule Schedule, tm Telemetry, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{schedule: schedule, telemetry: tm, loc: loc, now: time.Now}
}

func (s *Service) Location() *time.Location { return s.loc }

// CurrentSeason is the calendar year in UTC.
func (s *Service) CurrentSeason() int { return s.now().UTC().Year() }

func (s *Service) Season(ctx context.Context, season int) (SeasonPage, error) {
	races, err := s.schedule.Season(ctx, season)
	if err != nil {
		return SeasonPage{}, err
	}
	return SeasonPage{
		Season:  season,
		Current: ergast.IsCurrentSeason(season, s.now()),
		Races: lo.Map(races, func(r ergast.Race, _ int) RaceRow {
			return RaceRow{
				Round:     r.Round,
				Name:      r.Name,
				Circuit:   r.Circuit,
				StartDate: helper.FormatDate(r.Start, s.loc),
				EndDate:   helper.FormatDate(r.End, s.loc),
				State:     r.State,
			}
		}),
	}, nil
}

func (s *Service) header(rd ergast.RoundDetail) RoundHeader {
	return RoundHeader{
		Season:    rd.Season,
		Round:     rd.Round,
		Name:      rd.Name,
		Circuit:   rd.Circuit,
		StartDate: helper.FormatDate(rd.Start, s.loc),
		EndDate:   helper.FormatDate(rd.End, s.loc),
	}
}

func (s *Service) Round(ctx context.Context, season, round int) (RoundPage, error) {
	rd, err := s.schedule.Round(ctx, season, round)
	if err != nil {
		return RoundPage{}, err
	}
	return RoundPage{
		RoundHeader: s.header(rd),
		State:       rd.State,
		Sessions: lo.Map(rd.Sessions, func(sess ergast.Session, _ int) SessionRow {
			return SessionRow{Key: sess.Key, Label: sess.Label, When: helper.FormatDateTime(sess.Start, s.loc)}
		}),
	}, nil
}

func (s *Service) Qualifying(ctx context.Context, season, round int) (QualifyingPage, error) {
	var (
		rd      ergast.RoundDetail
		results []telemetry.QualifyingResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rd, err = s.schedule.Round(gctx, season, round)
		return err
	})
	g.Go(func() (err error) {
		results, err = s.telemetry.QualifyingResults(gctx, season, round)
		return err
	})
	if err := g.Wait(); err != nil {
		return QualifyingPage{}, errors.Wrapf(err, "qualifying %d/%d", season, round)
	}

	return QualifyingPage{
		RoundHeader: s.header(rd),
		Rows: lo.Map(results, func(r telemetry.QualifyingResult, _ int) QualifyingRow {
			return QualifyingRow{
				Position: helper.Position(r.Position),
				Number:   r.DriverNumber,
				Code:     driverCode(r.Abbreviation, r.FullName),
				Name:     r.FullName,
				Team:     r.TeamName,
				Color:    r.TeamColor,
				Q1:       helper.LapTime(r.Q1),
				Q2:       helper.LapTime(r.Q2),
				Q3:       helper.LapTime(r.Q3),
			}
		}),
	}, nil
}

func (s *Service) Race(ctx context.Context, season, round int) (RacePage, error) {
	var (
		rd      ergast.RoundDetail
		results []telemetry.RaceResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rd, err = s.schedule.Round(gctx, season, round)
		return err
	})
	g.Go(func() (err error) {
		results, err = s.telemetry.RaceResults(gctx, season, round)
		return err
	})
	if err := g.Wait(); err != nil {
		return RacePage{}, errors.Wrapf(err, "race %d/%d", season, round)
	}

	return RacePage{
		RoundHeader: s.header(rd),
		Rows: lo.Map(results, func(r telemetry.RaceResult, _ int) RaceResultRow {
			return RaceResultRow{
				Position: helper.Position(r.Position),
				Number:   r.DriverNumber,
				Code:     driverCode(r.Abbreviation, r.FullName),
				Name:     r.FullName,
				Team:     r.TeamName,
				Color:    r.TeamColor,
				Grid:     helper.Position(r.GridPosition),
				Time:     raceTime(r),
			}
		}),
	}, nil
}

// raceTime is the text of the time column: the winner row shows the column
// caption since the gaps below are relative to it.
func raceTime(r telemetry.RaceResult) string {
	if r.Position != nil && *r.Position == 1 {
		return "Interval"
	}
	if note := r.Note(); note != "" {
		return note
	}
	if r.Time != nil {
		return helper.RaceGap(r.Time)
	}
	return "DNF"
}

func driverCode(abbreviation, name string) string {
	if abbreviation != "" {
		return abbreviation
	}
	return helper.GetDriverCodeName(name)
}

// Stats fetches round, results, laps and weather concurrently and joins the
// driver identity into the laps once everything arrived.
func (s *Service) Stats(ctx context.Context, season, round int) (StatsPage, error) {
	var (
		rd         ergast.RoundDetail
		results    []telemetry.RaceResult
		driverLaps []laps.DriverLaps
		weather    []telemetry.WeatherSample
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rd, err = s.schedule.Round(gctx, season, round)
		return err
	})
	g.Go(func() (err error) {
		results, err = s.telemetry.RaceResults(gctx, season, round)
		return err
	})
	g.Go(func() (err error) {
		driverLaps, err = s.telemetry.LapTimes(gctx, season, round, telemetry.SessionRace)
		return err
	})
	g.Go(func() error {
		var err error
		// weather is optional on the page
		if weather, err = s.telemetry.Weather(gctx, season, round, telemetry.SessionRace); err != nil {
			log.Warn("weather unavailable", log.Int("season", season), log.Int("round", round), log.ErrorField(err))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return StatsPage{}, errors.Wrapf(err, "stats %d/%d", season, round)
	}

	drivers := lo.Map(results, func(r telemetry.RaceResult, _ int) laps.Driver {
		return laps.Driver{
			Number:    r.DriverNumber,
			Name:      r.FullName,
			Code:      driverCode(r.Abbreviation, r.FullName),
			TeamColor: r.TeamColor,
		}
	})
	identity := lo.KeyBy(drivers, func(d laps.Driver) string { return d.Number })
	for i := range driverLaps {
		if d, ok := identity[driverLaps[i].Number]; ok {
			driverLaps[i].Driver = d
		}
	}

	snapshots := laps.Transpose(driverLaps)
	return StatsPage{
		RoundHeader: s.header(rd),
		Drivers:     drivers,
		DriverLaps:  driverLaps,
		Laps:        snapshots,
		Weather:     weather,
		TotalLaps:   laps.TotalLaps(snapshots),
	}, nil
}

// DriverRows formats the laps of one driver.
func DriverRows(dl laps.DriverLaps) []LapRow {
	return lo.Map(dl.Laps, func(rec laps.LapRecord, _ int) LapRow {
		row := lapRow(dl.Driver, rec)
		row.Lap = strconv.Itoa(rec.Lap)
		return row
	})
}

// LapRows formats the drivers of one lap.
func LapRows(snap laps.LapSnapshot) []LapRow {
	return lo.Map(snap.Drivers, func(d laps.DriverLap, _ int) LapRow {
		return lapRow(d.Driver, d.LapRecord)
	})
}

func lapRow(d laps.Driver, rec laps.LapRecord) LapRow {
	return LapRow{
		Position: helper.Position(rec.Position),
		Number:   d.Number,
		Driver:   d.Code,
		Color:    d.TeamColor,
		LapTime:  helper.LapTime(rec.LapTime),
		S1:       helper.SectorTime(rec.S1),
		S2:       helper.SectorTime(rec.S2),
		S3:       helper.SectorTime(rec.S3),
		Compound: rec.Compound,
		TyreLife: helper.Float(rec.TyreLife, "%.0f"),
		Pit:      helper.SectorTime(rec.PitTime),
		Interval: helper.Interval(rec.Interval),
	}
}
