package livetiming

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"f1dashboard/pkg/helper"
	"f1dashboard/pkg/laps"
	"f1dashboard/pkg/openf1"
)

const (
	noSession = "No Session"
	noValue   = "N/A"
	noLap     = "-"
)

// Board is the rendered view of one snapshot.
type Board struct {
	MeetingName   string            `json:"meetingName"`
	StartDate     string            `json:"startDate"`
	EndDate       string            `json:"endDate"`
	Circuit       string            `json:"circuit"`
	Flag          string            `json:"flag"`
	Lap           string            `json:"lap"`
	SessionStatus string            `json:"sessionStatus"`
	SessionName   string            `json:"sessionName"`
	Rows          []BoardRow        `json:"rows"`
	RaceControl   []RaceControlLine `json:"raceControl"`
	Weather       []WeatherLine     `json:"weather"`
	LastUpdated   string            `json:"lastUpdated"`
}

type BoardRow struct {
	Number          string    `json:"number"`
	Code            string    `json:"code"`
	Color           string    `json:"color"`
	Position        string    `json:"position"`
	BestLap         string    `json:"bestLap"`
	LastLap         string    `json:"lastLap"`
	PersonalFastest bool      `json:"personalFastest"`
	Sectors         [3]string `json:"sectors"`
	Compound        string    `json:"compound"`
	TyreLife        string    `json:"tyreLife"`
	InPit           bool      `json:"inPit"`
	Gap             string    `json:"gap"`
	ToLeader        string    `json:"toLeader"`
}

type RaceControlLine struct {
	Message  string `json:"message"`
	Time     string `json:"time"`
	Lap      string `json:"lap"`
	Category string `json:"category"`
	Flag     string `json:"flag"`
}

type WeatherLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Pit renders the pit column.
func (r BoardRow) Pit() string {
	if r.InPit {
		return "In Pit"
	}
	return ""
}

// BuildBoard turns a snapshot into a board. meta may be nil when the driver
// metadata of the meeting is not known yet.
func BuildBoard(rd RaceData, meta map[string]openf1.DriverMeta, loc *time.Location) Board {
	b := Board{
		Lap:           noLap,
		SessionStatus: noSession,
		Flag:          noLap,
	}

	if s := rd.Session; s != nil {
		if s.CurrentLap != nil && *s.CurrentLap != 0 {
			b.Lap = strconv.Itoa(*s.CurrentLap)
		}
		if s.SessionStatus != nil && *s.SessionStatus != "" {
			b.SessionStatus = *s.SessionStatus
		}
		if info := s.SessionInfo; info != nil {
			b.SessionName = info.Name
			b.StartDate = formatFeedDate(info.StartDate, loc)
			b.EndDate = formatFeedDate(info.EndDate, loc)
			if m := info.Meeting; m != nil {
				b.MeetingName = m.Name
				if m.Circuit != nil {
					b.Circuit = m.Circuit.ShortName
				}
			}
		}
	}

	if t := rd.Track; t != nil {
		if n := len(t.Flags); n > 0 && t.Flags[n-1].Type != "" {
			b.Flag = t.Flags[n-1].Type
		}
	}
	b.Weather = weatherLines(rd.Track)
	b.Rows = boardRows(rd.Drivers, meta)
	b.RaceControl = raceControlLines(rd.RaceControlMessages, loc)
	if rd.LastUpdated != nil {
		b.LastUpdated = *rd.LastUpdated
	}
	return b
}

func formatFeedDate(value string, loc *time.Location) string {
	t, ok := helper.ParseUTC(value)
	if !ok {
		return ""
	}
	return helper.FormatDate(t, loc)
}

func boardRows(drivers map[string]DriverData, meta map[string]openf1.DriverMeta) []BoardRow {
	type entry struct {
		number string
		pos    int
		data   DriverData
	}
	entries := make([]entry, 0, len(drivers))
	for number, d := range drivers {
		entries = append(entries, entry{number: number, pos: parsePosition(d.Position), data: d})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].pos != entries[j].pos {
			return entries[i].pos < entries[j].pos
		}
		return laps.NumberLess(entries[i].number, entries[j].number)
	})

	rows := make([]BoardRow, 0, len(entries))
	for _, e := range entries {
		d := e.data
		row := BoardRow{
			Number:          e.number,
			Position:        string(d.Position),
			BestLap:         string(d.BestLapTime),
			LastLap:         string(d.LastLapTime),
			PersonalFastest: d.PersonalFastest,
			Compound:        d.CurrentCompound,
			TyreLife:        tyreLife(d.Stints),
			InPit:           d.InPit,
			Gap:             string(d.IntervalToAhead),
			ToLeader:        string(d.GapToLeader),
		}
		for i := 0; i < 3; i++ {
			if s, ok := d.Sectors[i]; ok {
				row.Sectors[i] = string(s.Value)
			}
		}
		if m, ok := meta[e.number]; ok {
			row.Code = m.Code
			row.Color = m.Color
		}
		rows = append(rows, row)
	}
	return rows
}

// parsePosition reads the leading integer of a position, missing positions sort last.
func parsePosition(p TimingValue) int {
	s := strings.TrimSpace(string(p))
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return math.MaxInt
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return math.MaxInt
	}
	return v
}

func tyreLife(stints Indexed[StintData]) string {
	last, ok := stints.Last()
	if !ok || last.TotalLaps == nil {
		return ""
	}
	return strconv.Itoa(int(*last.TotalLaps))
}

func raceControlLines(msgs []RaceControlMessage, loc *time.Location) []RaceControlLine {
	lines := make([]RaceControlLine, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		line := RaceControlLine{
			Message:  m.Message,
			Category: m.Category,
			Flag:     m.Flag,
		}
		if t, ok := helper.ParseUTC(m.Utc); ok {
			line.Time = helper.FormatClock(t, loc)
		}
		if m.Lap != nil {
			line.Lap = strconv.Itoa(*m.Lap)
		}
		lines = append(lines, line)
	}
	return lines
}

func weatherLines(t *TrackData) []WeatherLine {
	var w Weather
	if t != nil && t.Weather != nil {
		w = *t.Weather
	}
	return []WeatherLine{
		{Label: "Air Temperature", Value: withUnit(w.AirTemp, "°C")},
		{Label: "Track Temperature", Value: withUnit(w.TrackTemp, "°C")},
		{Label: "Humidity", Value: withUnit(w.Humidity, "%")},
		{Label: "Pressure", Value: withUnit(w.Pressure, " hPa")},
		{Label: "Wind Speed", Value: withUnit(w.WindSpeed, " km/h")},
		{Label: "Wind Direction", Value: withUnit(w.WindDirection, "°")},
		{Label: "Rainfall", Value: withUnit(w.Rainfall, " mm")},
	}
}

func withUnit(v TimingValue, unit string) string {
	if v == "" {
		return noValue
	}
	return fmt.Sprintf("%s%s", v, unit)
}
