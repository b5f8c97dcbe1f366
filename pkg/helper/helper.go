package helper

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	DateLayout     = "1/2/2006"
	DateTimeLayout = "1/2/2006, 3:04:05 PM"
	ClockLayout    = "3:04:05 PM"
)

// splitMillis rounds to milliseconds before splitting so that 59.9996 never
// shows up as 0:60.000.
func splitMillis(seconds float64) (minutes int64, secs float64) {
	ms := int64(math.Round(math.Abs(seconds) * 1000))
	minutes = ms / 60000
	secs = float64(ms-minutes*60000) / 1000
	return
}

// LapTime renders seconds as m:ss.sss. Nil renders empty.
func LapTime(t *float64) string {
	if t == nil {
		return ""
	}
	m, s := splitMillis(*t)
	return fmt.Sprintf("%d:%06.3f", m, s)
}

// SectorTime renders seconds as ss.sss, prefixed with m: once a minute is reached.
func SectorTime(t *float64) string {
	if t == nil {
		return ""
	}
	m, s := splitMillis(*t)
	if m > 0 {
		return fmt.Sprintf("%d:%06.3f", m, s)
	}
	return fmt.Sprintf("%06.3f", s)
}

// Interval renders a signed gap. Zero and nil render empty.
func Interval(t *float64) string {
	if t == nil || *t == 0 {
		return ""
	}
	if *t > 0 {
		return fmt.Sprintf("+%.3f", *t)
	}
	return fmt.Sprintf("%.3f", *t)
}

// RaceGap renders the gap to the winner as +ss.sss or +m:ss.sss.
func RaceGap(t *float64) string {
	if t == nil {
		return ""
	}
	m, s := splitMillis(*t)
	if m > 0 {
		return fmt.Sprintf("+%d:%06.3f", m, s)
	}
	return fmt.Sprintf("+%.3f", s)
}

// Position renders a float position as an integer, nil renders empty.
func Position(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d", int(*p))
}

func Float(p *float64, format string) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf(format, *p)
}

func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(location(loc)).Format(DateLayout)
}

func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(location(loc)).Format(DateTimeLayout)
}

func FormatClock(t time.Time, loc *time.Location) string {
	return t.In(location(loc)).Format(ClockLayout)
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// ParseUTC parses the zone-less timestamps of the live feed as UTC.
func ParseUTC(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02",
	} {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// GetDriverCodeName builds a three letter code out of a full name when the
// upstream data has no abbreviation: first letter of the name and the first two
// of the surname.
func GetDriverCodeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	words := strings.Fields(name)
	code := string(words[0][0])
	if len(words) > 1 {
		if len(words[1]) > 2 {
			code += words[1][:2]
		} else {
			code += words[1]
		}
	} else {
		if len(words[0]) > 2 {
			code += words[0][1:3]
		} else {
			code += words[0]
		}
	}
	return strings.ToUpper(code)
}
