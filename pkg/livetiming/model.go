package livetiming

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// RaceData is one complete snapshot of the live feed. Each message replaces the
// previous snapshot.
type RaceData struct {
	Drivers             map[string]DriverData `json:"drivers"`
	Session             *SessionData          `json:"session"`
	Track               *TrackData            `json:"track"`
	RaceControlMessages []RaceControlMessage  `json:"race_control_messages"`
	LastUpdated         *string               `json:"last_updated"`
}

type DriverData struct {
	CarNumber       string              `json:"car_number"`
	Position        TimingValue         `json:"position"`
	Line            *int                `json:"line"`
	LastLapTime     TimingValue         `json:"last_lap_time"`
	BestLapTime     TimingValue         `json:"best_lap_time"`
	GapToLeader     TimingValue         `json:"gap_to_leader"`
	IntervalToAhead TimingValue         `json:"interval_to_ahead"`
	NumberOfLaps    *int                `json:"number_of_laps"`
	InPit           bool                `json:"in_pit"`
	Status          *int                `json:"status"`
	Sectors         Indexed[SectorData] `json:"sectors"`
	PersonalFastest bool                `json:"personal_fastest"`
	Catching        *bool               `json:"catching"`
	Stints          Indexed[StintData]  `json:"stints"`
	CurrentCompound string              `json:"current_compound"`
	NewTires        bool                `json:"new_tires"`
	TireLaps        *int                `json:"tire_laps"`
}

type SectorData struct {
	Value TimingValue `json:"value"`
}

type StintData struct {
	LapFlags        *float64    `json:"LapFlags"`
	Compound        string      `json:"Compound"`
	New             TimingValue `json:"New"`
	TyresNotChanged TimingValue `json:"TyresNotChanged"`
	TotalLaps       *float64    `json:"TotalLaps"`
	StartLaps       *float64    `json:"StartLaps"`
}

type SessionData struct {
	CurrentLap    *int         `json:"current_lap"`
	SessionStatus *string      `json:"session_status"`
	SessionInfo   *SessionInfo `json:"session_info"`
}

type SessionInfo struct {
	Meeting       *Meeting    `json:"Meeting"`
	SessionStatus string      `json:"SessionStatus"`
	Key           *int        `json:"Key"`
	Type          string      `json:"Type"`
	Name          string      `json:"Name"`
	StartDate     string      `json:"StartDate"`
	EndDate       string      `json:"EndDate"`
	GmtOffset     TimingValue `json:"GmtOffset"`
	Path          string      `json:"Path"`
}

type Meeting struct {
	Key          *int   `json:"Key"`
	Name         string `json:"Name"`
	OfficialName string `json:"OfficialName"`
	Location     string `json:"Location"`
	Number       *int   `json:"Number"`
	Country      *struct {
		Code string `json:"Code"`
		Name string `json:"Name"`
	} `json:"Country"`
	Circuit *struct {
		ShortName string `json:"ShortName"`
	} `json:"Circuit"`
}

type TrackData struct {
	Status  string      `json:"status"`
	Flags   []TrackFlag `json:"flags"`
	Weather *Weather    `json:"weather"`
}

type TrackFlag struct {
	Type      string `json:"type"`
	Scope     string `json:"scope"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Lap       *int   `json:"lap"`
}

type Weather struct {
	AirTemp       TimingValue `json:"air_temp"`
	TrackTemp     TimingValue `json:"track_temp"`
	Humidity      TimingValue `json:"humidity"`
	Pressure      TimingValue `json:"pressure"`
	WindSpeed     TimingValue `json:"wind_speed"`
	WindDirection TimingValue `json:"wind_direction"`
	Rainfall      TimingValue `json:"rainfall"`
}

type RaceControlMessage struct {
	Utc       string `json:"Utc"`
	Lap       *int   `json:"Lap"`
	Category  string `json:"Category"`
	Flag      string `json:"Flag"`
	Scope     string `json:"Scope"`
	Message   string `json:"Message"`
	MessageID string `json:"message_id"`
}

// MeetingKey returns the key of the running meeting, 0 if unknown.
func (rd RaceData) MeetingKey() int {
	if rd.Session == nil || rd.Session.SessionInfo == nil || rd.Session.SessionInfo.Meeting == nil ||
		rd.Session.SessionInfo.Meeting.Key == nil {
		return 0
	}
	return *rd.Session.SessionInfo.Meeting.Key
}

// Status returns the session status, empty if unknown.
func (rd RaceData) Status() string {
	if rd.Session == nil || rd.Session.SessionStatus == nil {
		return ""
	}
	return *rd.Session.SessionStatus
}

// TimingValue holds a timing text. The feed sends it either as a plain string,
// a number or wrapped in an object {"Value": ...}.
type TimingValue string

func (tv *TimingValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*tv = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*tv = TimingValue(s)
	case b[0] == '{':
		var wrapped struct {
			Value *TimingValue `json:"Value"`
		}
		if err := json.Unmarshal(b, &wrapped); err != nil {
			return err
		}
		*tv = ""
		if wrapped.Value != nil {
			*tv = *wrapped.Value
		}
	default:
		// numbers and booleans keep their literal text
		*tv = TimingValue(b)
	}
	return nil
}

func (tv TimingValue) String() string { return string(tv) }

// Indexed holds the sectors and stints of a driver. The feed encodes them
// either as an array or as an object keyed by the index.
type Indexed[T any] map[int]T

func (ix *Indexed[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	out := Indexed[T]{}
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
	case b[0] == '[':
		var arr []T
		if err := json.Unmarshal(b, &arr); err != nil {
			return err
		}
		for i, v := range arr {
			out[i] = v
		}
	default:
		var m map[string]T
		if err := json.Unmarshal(b, &m); err != nil {
			return err
		}
		for k, v := range m {
			i, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			out[i] = v
		}
	}
	*ix = out
	return nil
}

// Last returns the entry with the highest index.
func (ix Indexed[T]) Last() (T, bool) {
	var zero T
	if len(ix) == 0 {
		return zero, false
	}
	keys := make([]int, 0, len(ix))
	for k := range ix {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return ix[keys[len(keys)-1]], true
}
