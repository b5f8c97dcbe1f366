package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestLapTime(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want string
	}{
		{"nil", nil, ""},
		{"regular lap", f(92.345), "1:32.345"},
		{"below a minute", f(5.1), "0:05.100"},
		{"rounding carries into minute", f(59.9996), "1:00.000"},
		{"long lap", f(125.007), "2:05.007"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LapTime(tt.in))
		})
	}
}

func TestSectorTime(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want string
	}{
		{"nil", nil, ""},
		{"short sector", f(5.123), "05.123"},
		{"regular sector", f(31.2), "31.200"},
		{"with minutes", f(65.123), "1:05.123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SectorTime(tt.in))
		})
	}
}

func TestInterval(t *testing.T) {
	assert.Equal(t, "", Interval(nil))
	assert.Equal(t, "", Interval(f(0)))
	assert.Equal(t, "+1.234", Interval(f(1.234)))
	assert.Equal(t, "-0.500", Interval(f(-0.5)))
}

func TestRaceGap(t *testing.T) {
	assert.Equal(t, "", RaceGap(nil))
	assert.Equal(t, "+7.123", RaceGap(f(7.123)))
	assert.Equal(t, "+1:02.500", RaceGap(f(62.5)))
}

func TestPosition(t *testing.T) {
	assert.Equal(t, "", Position(nil))
	assert.Equal(t, "3", Position(f(3)))
}

func TestFormatFixtureTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "3/2/2024", FormatDate(ts, time.UTC))
	assert.Equal(t, "3/2/2024, 3:00:00 PM", FormatDateTime(ts, nil))
	assert.Equal(t, "3:00:00 PM", FormatClock(ts, time.UTC))

	fixed := time.FixedZone("UTC+3", 3*60*60)
	assert.Equal(t, "3/2/2024, 6:00:00 PM", FormatDateTime(ts, fixed))
}

func TestParseUTC(t *testing.T) {
	got, ok := ParseUTC("2024-03-02T15:03:12")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 2, 15, 3, 12, 0, time.UTC), got)

	got, ok = ParseUTC("2024-03-02T15:03:12.250Z")
	require.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, time.Duration(got.Nanosecond()))

	_, ok = ParseUTC("")
	assert.False(t, ok)
	_, ok = ParseUTC("yesterday")
	assert.False(t, ok)
}

func TestGetDriverCodeName(t *testing.T) {
	assert.Equal(t, "MVE", GetDriverCodeName("Max Verstappen"))
	assert.Equal(t, "ZHO", GetDriverCodeName("Zhou"))
	assert.Equal(t, "", GetDriverCodeName(" "))
}
