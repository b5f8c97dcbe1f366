package ergast

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"f1dashboard/pkg/fetch"
)

var ErrRoundNotFound = errors.New("round not found")

const defaultClock = "00:00:00Z"

type Client struct {
	baseURL string
	getter  fetch.Getter
	now     func() time.Time
}

func NewClient(baseURL string, getter fetch.Getter) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		getter:  getter,
		now:     time.Now,
	}
}

// Season lists the races of a season with their state relative to today.
func (c *Client) Season(ctx context.Context, season int) ([]Race, error) {
	var resp response
	url := fmt.Sprintf("%s/%d/races/", c.baseURL, season)
	if err := fetch.GetJSON(ctx, c.getter, url, &resp); err != nil {
		return nil, errors.Wrapf(err, "season %d", season)
	}

	today := c.now()
	races := make([]Race, 0, len(resp.MRData.RaceTable.Races))
	for _, rj := range resp.MRData.RaceTable.Races {
		race, err := toRace(rj, season, today)
		if err != nil {
			return nil, errors.Wrapf(err, "season %d", season)
		}
		races = append(races, race)
	}
	return races, nil
}

// Round returns the race weekend of season/round including every session time.
func (c *Client) Round(ctx context.Context, season, round int) (RoundDetail, error) {
	var resp response
	url := fmt.Sprintf("%s/%d/%d/races", c.baseURL, season, round)
	if err := fetch.GetJSON(ctx, c.getter, url, &resp); err != nil {
		return RoundDetail{}, errors.Wrapf(err, "round %d/%d", season, round)
	}
	if len(resp.MRData.RaceTable.Races) == 0 {
		return RoundDetail{}, errors.Wrapf(ErrRoundNotFound, "round %d/%d", season, round)
	}
	rj := resp.MRData.RaceTable.Races[0]
	race, err := toRace(rj, season, c.now())
	if err != nil {
		return RoundDetail{}, errors.Wrapf(err, "round %d/%d", season, round)
	}

	detail := RoundDetail{Race: race}
	sq, sqLabel := rj.SprintQualifying, "Sprint Qualifying"
	if season == 2023 {
		sq, sqLabel = rj.SprintShootout, "Sprint Shootout"
	}
	for _, s := range []struct {
		key, label string
		src        *sessionJSON
	}{
		{SessionFP1, "Free Practice 1", rj.FirstPractice},
		{SessionFP2, "Free Practice 2", rj.SecondPractice},
		{SessionFP3, "Free Practice 3", rj.ThirdPractice},
		{SessionSprintQualifying, sqLabel, sq},
		{SessionSprint, "Sprint", rj.Sprint},
		{SessionQualifying, "Qualifying", rj.Qualifying},
	} {
		if s.src == nil {
			continue
		}
		start, err := parseTimestamp(s.src.Date, s.src.Time)
		if err != nil {
			return RoundDetail{}, errors.Wrapf(err, "%s of round %d/%d", s.label, season, round)
		}
		detail.Sessions = append(detail.Sessions, Session{Key: s.key, Label: s.label, Start: start})
	}
	detail.Sessions = append(detail.Sessions, Session{Key: SessionRace, Label: "Race", Start: race.End})
	return detail, nil
}

func toRace(rj raceJSON, season int, today time.Time) (Race, error) {
	round, err := strconv.Atoi(rj.Round)
	if err != nil {
		return Race{}, errors.Wrapf(err, "invalid round %q", rj.Round)
	}
	end, err := parseTimestamp(rj.Date, rj.Time)
	if err != nil {
		return Race{}, errors.Wrapf(err, "race date of round %d", round)
	}
	start := end
	if rj.FirstPractice != nil {
		if start, err = parseTimestamp(rj.FirstPractice.Date, rj.FirstPractice.Time); err != nil {
			return Race{}, errors.Wrapf(err, "first practice of round %d", round)
		}
	}
	return Race{
		Season:  season,
		Round:   round,
		Name:    rj.RaceName,
		Circuit: rj.Circuit.CircuitName,
		Start:   start,
		End:     end,
		State:   StateAt(start, end, today),
	}, nil
}

func parseTimestamp(date, clock string) (time.Time, error) {
	if clock == "" {
		clock = defaultClock
	}
	t, err := time.Parse(time.RFC3339, date+"T"+clock)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// StateAt compares the race weekend with today on whole UTC days.
func StateAt(start, end, today time.Time) State {
	s, e, d := day(start), day(end), day(today)
	switch {
	case d.Before(s):
		return StateUpcoming
	case d.After(e):
		return StatePast
	default:
		return StateInProgress
	}
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsCurrentSeason reports whether season is the calendar year of now.
func IsCurrentSeason(season int, now time.Time) bool {
	return season == now.UTC().Year()
}
