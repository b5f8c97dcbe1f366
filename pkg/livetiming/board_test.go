package livetiming

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1dashboard/pkg/openf1"
)

const snapshotJSON = `{
 "drivers": {
  "44": {"car_number": "44", "position": "2", "best_lap_time": {"Value": "1:33.100"},
         "last_lap_time": "1:33.500", "interval_to_ahead": {"Value": "+0.812"}, "gap_to_leader": "+0.812",
         "sectors": {"0": {"value": "30.100"}, "1": {"value": "33.000"}, "2": {"value": null}},
         "stints": {"0": {"Compound": "SOFT", "TotalLaps": 15}, "1": {"Compound": "HARD", "TotalLaps": 4}},
         "current_compound": "HARD", "in_pit": true},
  "1":  {"car_number": "1", "position": "1", "last_lap_time": {"Value": "1:32.900"}, "personal_fastest": true,
         "gap_to_leader": "", "stints": [{"Compound": "MEDIUM", "TotalLaps": 19}]},
  "2":  {"car_number": "2", "position": null},
  "10": {"car_number": "10", "position": ""}
 },
 "session": {"current_lap": 19, "session_status": "Started",
  "session_info": {"Meeting": {"Key": 1229, "Name": "Bahrain Grand Prix", "Circuit": {"ShortName": "Sakhir"}},
   "Type": "Race", "Name": "Race", "StartDate": "2024-03-02T15:00:00", "EndDate": "2024-03-02T17:00:00"}},
 "track": {"status": "1",
  "flags": [{"type": "YELLOW", "lap": 3}, {"type": "GREEN", "lap": 4}],
  "weather": {"air_temp": "25.1", "track_temp": "38.0", "humidity": "41", "pressure": null,
   "wind_speed": "1.2", "wind_direction": "180", "rainfall": "0"}},
 "race_control_messages": [
  {"Utc": "2024-03-02T15:03:00", "Lap": 1, "Category": "Flag", "Flag": "GREEN", "Message": "GREEN LIGHT - PIT EXIT OPEN"},
  {"Utc": "2024-03-02T15:20:10", "Lap": 4, "Category": "Other", "Message": "TRACK LIMITS"}
 ],
 "last_updated": "2024-03-02T15:30:00"
}`

func decodeFixture(t *testing.T) RaceData {
	t.Helper()
	var rd RaceData
	require.NoError(t, json.Unmarshal([]byte(snapshotJSON), &rd))
	return rd
}

func TestBuildBoard(t *testing.T) {
	meta := map[string]openf1.DriverMeta{
		"1":  {Code: "VER", Color: "3671C6"},
		"44": {Code: "HAM", Color: "27F4D2"},
	}
	b := BuildBoard(decodeFixture(t), meta, time.UTC)

	assert.Equal(t, "Bahrain Grand Prix", b.MeetingName)
	assert.Equal(t, "Sakhir", b.Circuit)
	assert.Equal(t, "3/2/2024", b.StartDate)
	assert.Equal(t, "GREEN", b.Flag)
	assert.Equal(t, "19", b.Lap)
	assert.Equal(t, "Started", b.SessionStatus)

	var order []string
	for _, r := range b.Rows {
		order = append(order, r.Number)
	}
	assert.Equal(t, []string{"1", "44", "2", "10"}, order, "missing positions last, by car number")

	ver, ham := b.Rows[0], b.Rows[1]
	assert.Equal(t, "VER", ver.Code)
	assert.Equal(t, "1:32.900", ver.LastLap)
	assert.True(t, ver.PersonalFastest)
	assert.Equal(t, "19", ver.TyreLife)

	if diff := cmp.Diff(BoardRow{
		Number:   "44",
		Code:     "HAM",
		Color:    "27F4D2",
		Position: "2",
		BestLap:  "1:33.100",
		LastLap:  "1:33.500",
		Sectors:  [3]string{"30.100", "33.000", ""},
		Compound: "HARD",
		TyreLife: "4",
		InPit:    true,
		Gap:      "+0.812",
		ToLeader: "+0.812",
	}, ham); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "In Pit", ham.Pit())

	require.Len(t, b.RaceControl, 2)
	assert.Equal(t, "TRACK LIMITS", b.RaceControl[0].Message, "newest first")
	assert.Equal(t, "3:20:10 PM", b.RaceControl[0].Time)

	assert.Equal(t, []WeatherLine{
		{Label: "Air Temperature", Value: "25.1°C"},
		{Label: "Track Temperature", Value: "38.0°C"},
		{Label: "Humidity", Value: "41%"},
		{Label: "Pressure", Value: "N/A"},
		{Label: "Wind Speed", Value: "1.2 km/h"},
		{Label: "Wind Direction", Value: "180°"},
		{Label: "Rainfall", Value: "0 mm"},
	}, b.Weather)
}

func TestBuildBoardEmptySnapshot(t *testing.T) {
	b := BuildBoard(RaceData{}, nil, nil)
	assert.Equal(t, "-", b.Lap)
	assert.Equal(t, "No Session", b.SessionStatus)
	assert.Equal(t, "-", b.Flag)
	assert.Empty(t, b.Rows)
	for _, w := range b.Weather {
		assert.Equal(t, "N/A", w.Value)
	}
}

func TestBuildBoardUnknownMeta(t *testing.T) {
	b := BuildBoard(decodeFixture(t), nil, time.UTC)
	require.NotEmpty(t, b.Rows)
	assert.Equal(t, "", b.Rows[0].Code)
}
