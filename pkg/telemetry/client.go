package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"f1dashboard/pkg/fetch"
	"f1dashboard/pkg/laps"
)

type Client struct {
	baseURL string
	getter  fetch.Getter
}

func NewClient(baseURL string, getter fetch.Getter) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), getter: getter}
}

func (c *Client) get(ctx context.Context, endpoint string, year, gp int, session string, v any) error {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("gp", strconv.Itoa(gp))
	q.Set("session", session)
	u := fmt.Sprintf("%s/session/%s?%s", c.baseURL, endpoint, q.Encode())

	body, err := c.getter.Get(ctx, u)
	if err != nil {
		return errors.Wrapf(err, "%s %d/%d/%s", endpoint, year, gp, session)
	}
	clean, err := Sanitize(body)
	if err != nil {
		return errors.Wrapf(err, "%s %d/%d/%s", endpoint, year, gp, session)
	}
	if err := json.Unmarshal(clean, v); err != nil {
		return errors.Wrapf(err, "decoding %s %d/%d/%s", endpoint, year, gp, session)
	}
	return nil
}

func (c *Client) results(ctx context.Context, year, gp int, session string) (resultColumns, []string, error) {
	var cols resultColumns
	if err := c.get(ctx, "results", year, gp, session, &cols); err != nil {
		return cols, nil, err
	}
	return cols, lo.Keys(cols.DriverNumber), nil
}

func (c *Client) QualifyingResults(ctx context.Context, year, gp int) ([]QualifyingResult, error) {
	cols, keys, err := c.results(ctx, year, gp, SessionQualifying)
	if err != nil {
		return nil, err
	}
	out := lo.Map(keys, func(k string, _ int) QualifyingResult {
		return QualifyingResult{
			DriverNumber: driverNumber(cols.DriverNumber, k),
			FullName:     cols.FullName[k],
			Abbreviation: cols.Abbreviation[k],
			TeamName:     cols.TeamName[k],
			TeamColor:    cols.TeamColor[k],
			Position:     cols.Position[k],
			Q1:           cols.Q1[k],
			Q2:           cols.Q2[k],
			Q3:           cols.Q3[k],
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return laps.Less(out[i].Position, out[j].Position, out[i].DriverNumber, out[j].DriverNumber)
	})
	return out, nil
}

func (c *Client) RaceResults(ctx context.Context, year, gp int) ([]RaceResult, error) {
	return c.raceResults(ctx, year, gp, SessionRace)
}

func (c *Client) SprintResults(ctx context.Context, year, gp int) ([]RaceResult, error) {
	return c.raceResults(ctx, year, gp, SessionSprint)
}

func (c *Client) raceResults(ctx context.Context, year, gp int, session string) ([]RaceResult, error) {
	cols, keys, err := c.results(ctx, year, gp, session)
	if err != nil {
		return nil, err
	}
	out := lo.Map(keys, func(k string, _ int) RaceResult {
		return RaceResult{
			DriverNumber:       driverNumber(cols.DriverNumber, k),
			FullName:           cols.FullName[k],
			Abbreviation:       cols.Abbreviation[k],
			TeamName:           cols.TeamName[k],
			TeamColor:          cols.TeamColor[k],
			Position:           cols.Position[k],
			GridPosition:       cols.GridPosition[k],
			Time:               cols.Time[k],
			ClassifiedPosition: cols.ClassifiedPosition[k],
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return laps.Less(out[i].Position, out[j].Position, out[i].DriverNumber, out[j].DriverNumber)
	})
	return out, nil
}

func driverNumber(col map[string]string, key string) string {
	if n := col[key]; n != "" {
		return n
	}
	return key
}

// LapTimes returns the laps of every driver, ordered by car number. Only the
// driver number is filled in; identity comes from the session results.
func (c *Client) LapTimes(ctx context.Context, year, gp int, session string) ([]laps.DriverLaps, error) {
	var payload map[string]lapColumns
	if err := c.get(ctx, "laptimes", year, gp, session, &payload); err != nil {
		return nil, err
	}

	out := make([]laps.DriverLaps, 0, len(payload))
	for number, cols := range payload {
		out = append(out, laps.DriverLaps{
			Driver: laps.Driver{Number: number},
			Laps:   lapRecords(cols),
		})
	}
	sort.Slice(out, func(i, j int) bool { return laps.NumberLess(out[i].Number, out[j].Number) })
	return out, nil
}

func lapRecords(cols lapColumns) []laps.LapRecord {
	pitOut := indexByLap(cols.PitOutTime)

	records := make([]laps.LapRecord, 0, len(cols.Time))
	for key := range cols.Time {
		lap, ok := lapNumber(key)
		if !ok {
			continue
		}
		rec := laps.LapRecord{
			Lap:         lap,
			LapTime:     cols.LapTime[key],
			S1:          cols.Sector1Time[key],
			S2:          cols.Sector2Time[key],
			S3:          cols.Sector3Time[key],
			Interval:    cols.GapToLeader[key],
			Compound:    cols.Compound[key],
			TyreLife:    cols.TyreLife[key],
			TrackStatus: cols.TrackStatus[key],
			Position:    cols.Position[key],
		}
		if d := cols.Deleted[key]; d != nil {
			rec.Deleted = *d
		}
		if in := cols.PitInTime[key]; in != nil {
			if out := pitOut[lap+1]; out != nil {
				pit := *out - *in
				rec.PitTime = &pit
			}
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Lap < records[j].Lap })
	return records
}

// lapNumber parses the row keys of the lap table, which are floats like "12.0".
func lapNumber(key string) (int, bool) {
	v, err := strconv.ParseFloat(key, 64)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

func indexByLap[T any](col map[string]T) map[int]T {
	out := make(map[int]T, len(col))
	for k, v := range col {
		if lap, ok := lapNumber(k); ok {
			out[lap] = v
		}
	}
	return out
}

// Weather returns the weather samples of the session ordered by row index.
func (c *Client) Weather(ctx context.Context, year, gp int, session string) ([]WeatherSample, error) {
	var cols weatherColumns
	if err := c.get(ctx, "weatherdata", year, gp, session, &cols); err != nil {
		return nil, err
	}

	out := make([]WeatherSample, 0, len(cols.Time))
	for key := range cols.Time {
		idx, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		s := WeatherSample{
			Index:         idx,
			Time:          cols.Time[key],
			AirTemp:       cols.AirTemp[key],
			TrackTemp:     cols.TrackTemp[key],
			Humidity:      cols.Humidity[key],
			Pressure:      cols.Pressure[key],
			WindSpeed:     cols.WindSpeed[key],
			WindDirection: cols.WindDirection[key],
		}
		if r := cols.Rainfall[key]; r != nil {
			s.Rainfall = *r
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (c *Client) SessionInfo(ctx context.Context, year, gp int, session string) (SessionInfo, error) {
	var info SessionInfo
	err := c.get(ctx, "info", year, gp, session, &info)
	return info, err
}
