package telemetry

// Session identifiers understood by the backend.
const (
	SessionQualifying       = "q"
	SessionRace             = "r"
	SessionSprint           = "s"
	SessionSprintQualifying = "sq"
)

type QualifyingResult struct {
	DriverNumber string   `json:"driverNumber"`
	FullName     string   `json:"fullName"`
	Abbreviation string   `json:"abbreviation"`
	TeamName     string   `json:"teamName"`
	TeamColor    string   `json:"teamColor"`
	Position     *float64 `json:"position"`
	Q1           *float64 `json:"q1"`
	Q2           *float64 `json:"q2"`
	Q3           *float64 `json:"q3"`
}

type RaceResult struct {
	DriverNumber       string   `json:"driverNumber"`
	FullName           string   `json:"fullName"`
	Abbreviation       string   `json:"abbreviation"`
	TeamName           string   `json:"teamName"`
	TeamColor          string   `json:"teamColor"`
	Position           *float64 `json:"position"`
	GridPosition       *float64 `json:"gridPosition"`
	Time               *float64 `json:"time"`
	ClassifiedPosition string   `json:"classifiedPosition"`
}

// Note explains a non classified result: R retired, D disqualified, W did not start.
func (r RaceResult) Note() string {
	switch r.ClassifiedPosition {
	case "R":
		return "DNF"
	case "D":
		return "DSQ"
	case "W":
		return "DNS"
	}
	return ""
}

type WeatherSample struct {
	Index         int      `json:"index"`
	Time          *float64 `json:"time"`
	AirTemp       *float64 `json:"airTemp"`
	TrackTemp     *float64 `json:"trackTemp"`
	Humidity      *float64 `json:"humidity"`
	Pressure      *float64 `json:"pressure"`
	WindSpeed     *float64 `json:"windSpeed"`
	WindDirection *float64 `json:"windDirection"`
	Rainfall      bool     `json:"rainfall"`
}

type SessionInfo struct {
	Meeting struct {
		Key          int    `json:"Key"`
		Name         string `json:"Name"`
		OfficialName string `json:"OfficialName"`
		Location     string `json:"Location"`
		Country      struct {
			Code string `json:"Code"`
			Name string `json:"Name"`
		} `json:"Country"`
		Circuit struct {
			ShortName string `json:"ShortName"`
		} `json:"Circuit"`
	} `json:"Meeting"`
	Key       int      `json:"Key"`
	Type      string   `json:"Type"`
	Name      string   `json:"Name"`
	StartDate string   `json:"StartDate"`
	EndDate   string   `json:"EndDate"`
	GmtOffset *float64 `json:"GmtOffset"`
	TotalLaps *float64 `json:"TotalLaps"`
}

// wire formats: pandas DataFrame.to_dict(), one map per column keyed by row index

type resultColumns struct {
	DriverNumber       map[string]string   `json:"DriverNumber"`
	BroadcastName      map[string]string   `json:"BroadcastName"`
	Abbreviation       map[string]string   `json:"Abbreviation"`
	TeamName           map[string]string   `json:"TeamName"`
	TeamColor          map[string]string   `json:"TeamColor"`
	FullName           map[string]string   `json:"FullName"`
	ClassifiedPosition map[string]string   `json:"ClassifiedPosition"`
	Position           map[string]*float64 `json:"Position"`
	GridPosition       map[string]*float64 `json:"GridPosition"`
	Time               map[string]*float64 `json:"Time"`
	Q1                 map[string]*float64 `json:"Q1"`
	Q2                 map[string]*float64 `json:"Q2"`
	Q3                 map[string]*float64 `json:"Q3"`
}

type lapColumns struct {
	DriverNumber map[string]string   `json:"DriverNumber"`
	Time         map[string]*float64 `json:"Time"`
	LapTime      map[string]*float64 `json:"LapTime"`
	Sector1Time  map[string]*float64 `json:"Sector1Time"`
	Sector2Time  map[string]*float64 `json:"Sector2Time"`
	Sector3Time  map[string]*float64 `json:"Sector3Time"`
	PitInTime    map[string]*float64 `json:"PitInTime"`
	PitOutTime   map[string]*float64 `json:"PitOutTime"`
	Compound     map[string]string   `json:"Compound"`
	TyreLife     map[string]*float64 `json:"TyreLife"`
	TrackStatus  map[string]string   `json:"TrackStatus"`
	Position     map[string]*float64 `json:"Position"`
	Deleted      map[string]*bool    `json:"Deleted"`
	GapToLeader  map[string]*float64 `json:"GapToLeader"`
}

type weatherColumns struct {
	Index         map[string]*float64 `json:"index"`
	Time          map[string]*float64 `json:"Time"`
	AirTemp       map[string]*float64 `json:"AirTemp"`
	Humidity      map[string]*float64 `json:"Humidity"`
	Pressure      map[string]*float64 `json:"Pressure"`
	Rainfall      map[string]*bool    `json:"Rainfall"`
	TrackTemp     map[string]*float64 `json:"TrackTemp"`
	WindDirection map[string]*float64 `json:"WindDirection"`
	WindSpeed     map[string]*float64 `json:"WindSpeed"`
}
