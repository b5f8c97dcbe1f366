package ergast

import "time"

// State of a race weekend relative to today.
type State int

const (
	StatePast       State = -1
	StateInProgress State = 0
	StateUpcoming   State = 1
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in progress"
	case StateUpcoming:
		return "upcoming"
	default:
		return "past"
	}
}

type Race struct {
	Season  int       `json:"season"`
	Round   int       `json:"round"`
	Name    string    `json:"name"`
	Circuit string    `json:"circuit"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	State   State     `json:"state"`
}

// Session keys of a race weekend, in weekend order.
const (
	SessionFP1              = "fp1"
	SessionFP2              = "fp2"
	SessionFP3              = "fp3"
	SessionSprintQualifying = "sq"
	SessionSprint           = "sprint"
	SessionQualifying       = "quali"
	SessionRace             = "race"
)

type Session struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
}

type RoundDetail struct {
	Race
	Sessions []Session `json:"sessions"`
}

// Session returns the session with the given key.
func (rd RoundDetail) Session(key string) (Session, bool) {
	for _, s := range rd.Sessions {
		if s.Key == key {
			return s, true
		}
	}
	return Session{}, false
}

// IsSprintWeekend reports whether the weekend has a sprint race.
func (rd RoundDetail) IsSprintWeekend() bool {
	_, ok := rd.Session(SessionSprint)
	return ok
}

// wire format of api.jolpi.ca/ergast

type response struct {
	MRData struct {
		RaceTable struct {
			Season string     `json:"season"`
			Races  []raceJSON `json:"Races"`
		} `json:"RaceTable"`
	} `json:"MRData"`
}

type sessionJSON struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type raceJSON struct {
	Season   string `json:"season"`
	Round    string `json:"round"`
	RaceName string `json:"raceName"`
	Circuit  struct {
		CircuitID   string `json:"circuitId"`
		CircuitName string `json:"circuitName"`
	} `json:"Circuit"`
	Date             string       `json:"date"`
	Time             string       `json:"time"`
	FirstPractice    *sessionJSON `json:"FirstPractice"`
	SecondPractice   *sessionJSON `json:"SecondPractice"`
	ThirdPractice    *sessionJSON `json:"ThirdPractice"`
	SprintShootout   *sessionJSON `json:"SprintShootout"`
	SprintQualifying *sessionJSON `json:"SprintQualifying"`
	Sprint           *sessionJSON `json:"Sprint"`
	Qualifying       *sessionJSON `json:"Qualifying"`
}
