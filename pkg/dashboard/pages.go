package dashboard

import (
	"f1dashboard/pkg/ergast"
	"f1dashboard/pkg/laps"
	"f1dashboard/pkg/telemetry"
)

const (
	ModeDriver = "Driver"
	ModeLap    = "Lap-by-Lap"
)

type SeasonPage struct {
	Season  int       `json:"season"`
	Current bool      `json:"current"`
	Races   []RaceRow `json:"races"`
}

type RaceRow struct {
	Round     int          `json:"round"`
	Name      string       `json:"name"`
	Circuit   string       `json:"circuit"`
	StartDate string       `json:"startDate"`
	EndDate   string       `json:"endDate"`
	State     ergast.State `json:"state"`
}

// RoundHeader is the heading shared by every page of a race weekend.
type RoundHeader struct {
	Season    int    `json:"season"`
	Round     int    `json:"round"`
	Name      string `json:"name"`
	Circuit   string `json:"circuit"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type RoundPage struct {
	RoundHeader
	State    ergast.State `json:"state"`
	Sessions []SessionRow `json:"sessions"`
}

type SessionRow struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	When  string `json:"when"`
}

type QualifyingPage struct {
	RoundHeader
	Rows []QualifyingRow `json:"rows"`
}

type QualifyingRow struct {
	Position string `json:"position"`
	Number   string `json:"number"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	Color    string `json:"color"`
	Q1       string `json:"q1"`
	Q2       string `json:"q2"`
	Q3       string `json:"q3"`
}

type RacePage struct {
	RoundHeader
	Rows []RaceResultRow `json:"rows"`
}

type RaceResultRow struct {
	Position string `json:"position"`
	Number   string `json:"number"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	Color    string `json:"color"`
	Grid     string `json:"grid"`
	Time     string `json:"time"`
}

type StatsPage struct {
	RoundHeader
	// Drivers in finishing order.
	Drivers    []laps.Driver             `json:"drivers"`
	DriverLaps []laps.DriverLaps         `json:"driverLaps"`
	Laps       []laps.LapSnapshot        `json:"laps"`
	Weather    []telemetry.WeatherSample `json:"weather"`
	TotalLaps  int                       `json:"totalLaps"`
}

// LapRow is one formatted line of the stats tables. Lap is set in driver mode,
// Driver in lap mode.
type LapRow struct {
	Lap      string `json:"lap"`
	Position string `json:"position"`
	Number   string `json:"number"`
	Driver   string `json:"driver"`
	Color    string `json:"color"`
	LapTime  string `json:"lapTime"`
	S1       string `json:"s1"`
	S2       string `json:"s2"`
	S3       string `json:"s3"`
	Compound string `json:"compound"`
	TyreLife string `json:"tyreLife"`
	Pit      string `json:"pit"`
	Interval string `json:"interval"`
}

// Driver returns the identity and laps of a car number.
func (p StatsPage) Driver(number string) (laps.DriverLaps, bool) {
	return laps.ForDriver(p.DriverLaps, number)
}

// DefaultDriver is the winner, or the first driver with laps.
func (p StatsPage) DefaultDriver() string {
	if len(p.Drivers) > 0 {
		return p.Drivers[0].Number
	}
	if len(p.DriverLaps) > 0 {
		return p.DriverLaps[0].Number
	}
	return ""
}
