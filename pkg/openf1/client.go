package openf1

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"f1dashboard/pkg/fetch"
)

type Driver struct {
	DriverNumber  int    `json:"driver_number"`
	BroadcastName string `json:"broadcast_name"`
	FullName      string `json:"full_name"`
	NameAcronym   string `json:"name_acronym"`
	TeamName      string `json:"team_name"`
	TeamColour    string `json:"team_colour"`
	CountryCode   string `json:"country_code"`
	HeadshotURL   string `json:"headshot_url"`
	MeetingKey    int    `json:"meeting_key"`
	SessionKey    int    `json:"session_key"`
}

// DriverMeta is the identity of a car number during a meeting.
type DriverMeta struct {
	ShortName string `json:"shortName"`
	FullName  string `json:"fullName"`
	Code      string `json:"code"`
	Team      string `json:"team"`
	Color     string `json:"color"`
}

type Client struct {
	baseURL string
	getter  fetch.Getter
}

func NewClient(baseURL string, getter fetch.Getter) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), getter: getter}
}

// Drivers returns the driver metadata of a meeting keyed by car number.
func (c *Client) Drivers(ctx context.Context, meetingKey int) (map[string]DriverMeta, error) {
	var drivers []Driver
	url := fmt.Sprintf("%s/drivers?meeting_key=%d", c.baseURL, meetingKey)
	if err := fetch.GetJSON(ctx, c.getter, url, &drivers); err != nil {
		return nil, errors.Wrapf(err, "drivers of meeting %d", meetingKey)
	}
	out := make(map[string]DriverMeta, len(drivers))
	for _, d := range drivers {
		// one entry per session of the meeting, later sessions win
		out[strconv.Itoa(d.DriverNumber)] = DriverMeta{
			ShortName: d.BroadcastName,
			FullName:  d.FullName,
			Code:      d.NameAcronym,
			Team:      d.TeamName,
			Color:     d.TeamColour,
		}
	}
	return out, nil
}
