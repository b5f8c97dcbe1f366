package openf1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1dashboard/pkg/fetch"
)

func TestDrivers(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Path + "?" + r.URL.RawQuery
		_, _ = w.Write([]byte(`[
		 {"driver_number": 1, "broadcast_name": "M VERSTAPPEN", "full_name": "Max VERSTAPPEN",
		  "name_acronym": "VER", "team_name": "Red Bull Racing", "team_colour": "3671C6", "session_key": 1},
		 {"driver_number": 44, "broadcast_name": "L HAMILTON", "full_name": "Lewis HAMILTON",
		  "name_acronym": "HAM", "team_name": "Mercedes", "team_colour": "27F4D2", "session_key": 1},
		 {"driver_number": 1, "broadcast_name": "M VERSTAPPEN", "full_name": "Max VERSTAPPEN",
		  "name_acronym": "VER", "team_name": "Red Bull Racing", "team_colour": "3671C6", "session_key": 2}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/v1", fetch.NewClient(fetch.WithHTTPClient(srv.Client())))
	meta, err := c.Drivers(context.Background(), 1229)
	require.NoError(t, err)

	assert.Equal(t, "/v1/drivers?meeting_key=1229", query)
	require.Len(t, meta, 2)
	assert.Equal(t, DriverMeta{
		ShortName: "L HAMILTON",
		FullName:  "Lewis HAMILTON",
		Code:      "HAM",
		Team:      "Mercedes",
		Color:     "27F4D2",
	}, meta["44"])
}
