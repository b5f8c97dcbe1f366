package webserver

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1dashboard/pkg/dashboard"
	"f1dashboard/pkg/ergast"
	"f1dashboard/pkg/laps"
	"f1dashboard/pkg/livetiming"
	"f1dashboard/pkg/pubsub"
	"f1dashboard/pkg/telemetry"
)

func f(v float64) *float64 { return &v }

var header = dashboard.RoundHeader{Season: 2024, Round: 1, Name: "Bahrain Grand Prix", Circuit: "Bahrain International Circuit", StartDate: "2/29/2024", EndDate: "3/2/2024"}

type fakePages struct{}

func (fakePages) CurrentSeason() int { return 2024 }

func (fakePages) Season(_ context.Context, season int) (dashboard.SeasonPage, error) {
	if season == 1900 {
		return dashboard.SeasonPage{}, errors.New("upstream down")
	}
	return dashboard.SeasonPage{Season: season, Current: season == 2024, Races: []dashboard.RaceRow{
		{Round: 1, Name: "Bahrain Grand Prix", Circuit: "Bahrain International Circuit", StartDate: "2/29/2024", EndDate: "3/2/2024", State: ergast.StatePast},
	}}, nil
}

func (fakePages) Round(_ context.Context, season, round int) (dashboard.RoundPage, error) {
	if round > 24 {
		return dashboard.RoundPage{}, errors.Wrap(ergast.ErrRoundNotFound, "round")
	}
	return dashboard.RoundPage{RoundHeader: header, Sessions: []dashboard.SessionRow{{Key: ergast.SessionRace, Label: "Race", When: "3/2/2024, 3:00:00 PM"}}}, nil
}

func (fakePages) Qualifying(context.Context, int, int) (dashboard.QualifyingPage, error) {
	return dashboard.QualifyingPage{RoundHeader: header, Rows: []dashboard.QualifyingRow{{Position: "1", Code: "VER", Name: "Max Verstappen", Color: "3671C6", Q3: "1:29.179"}}}, nil
}

func (fakePages) Race(context.Context, int, int) (dashboard.RacePage, error) {
	return dashboard.RacePage{}, errors.Wrap(telemetry.ErrDataNotFound, "race")
}

func (fakePages) Stats(context.Context, int, int) (dashboard.StatsPage, error) {
	ver := laps.Driver{Number: "1", Name: "Max Verstappen", Code: "VER"}
	per := laps.Driver{Number: "11", Name: "Sergio Perez", Code: "PER"}
	var verLaps, perLaps []laps.LapRecord
	for lap := 1; lap <= 20; lap++ {
		verLaps = append(verLaps, laps.LapRecord{Lap: lap, LapTime: f(95.123), Position: f(1)})
		perLaps = append(perLaps, laps.LapRecord{Lap: lap, LapTime: f(96.5), Position: f(2), Interval: f(1.377)})
	}
	dl := []laps.DriverLaps{{Driver: ver, Laps: verLaps}, {Driver: per, Laps: perLaps}}
	snaps := laps.Transpose(dl)
	return dashboard.StatsPage{RoundHeader: header, Drivers: []laps.Driver{ver, per}, DriverLaps: dl, Laps: snaps, TotalLaps: laps.TotalLaps(snaps)}, nil
}

type fakeLive struct {
	board livetiming.Board
	ok    bool
}

func (l fakeLive) Board() (livetiming.Board, bool) { return l.board, l.ok }

func newTestServer(t *testing.T, live LiveSource) (*httptest.Server, *pubsub.PubSub[string]) {
	t.Helper()
	ps := pubsub.NewPubSub[string]()
	s, err := NewServer(fakePages{}, live, ps)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.broadcaster.Close()
	})
	return ts, ps
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestPages(t *testing.T) {
	ts, _ := newTestServer(t, fakeLive{})

	tests := []struct {
		path   string
		status int
		want   []string
	}{
		{path: "/", status: http.StatusOK, want: []string{"Season 2024", "Current Season", `href="/seasons/2024/1"`}},
		{path: "/seasons", status: http.StatusOK, want: []string{`href="/seasons/1950"`, `class="active">2024`}},
		{path: "/seasons/2021", status: http.StatusOK, want: []string{"Season 2021"}},
		{path: "/seasons/1900", status: http.StatusBadGateway, want: []string{"Bad Gateway"}},
		{path: "/seasons/2024/1", status: http.StatusOK, want: []string{"3/2/2024, 3:00:00 PM"}},
		{path: "/seasons/2024/30", status: http.StatusNotFound, want: []string{"Not Found"}},
		{path: "/seasons/2024/1/quali", status: http.StatusOK, want: []string{"1:29.179", "border-color: #3671C6"}},
		{path: "/2024/1/race", status: http.StatusNotFound},
		{path: "/2024/1/race/stats", status: http.StatusOK, want: []string{"Max Verstappen", "1:35.123"}},
		{path: "/2024/1/race/stats?mode=Lap-by-Lap&lap=12", status: http.StatusOK, want: []string{"Lap 12 / 20", "&#43;1.377", "lap=17"}},
		{path: "/live", status: http.StatusOK, want: []string{"No live session right now.", "/live/events"}},
		{path: "/healthz", status: http.StatusOK, want: []string{"ok"}},
		{path: "/seasons/abcd", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := get(t, ts.URL+tt.path)
			assert.Equal(t, tt.status, status)
			for _, w := range tt.want {
				assert.Contains(t, body, w)
			}
		})
	}
}

func TestStatsView(t *testing.T) {
	page, _ := fakePages{}.Stats(context.Background(), 2024, 1)

	v := newStatsView(page, url.Values{"mode": {"Lap-by-Lap"}, "lap": {"99"}})
	assert.Equal(t, 20, v.Lap)
	labels := make([]string, 0, len(v.Pager))
	for _, p := range v.Pager {
		labels = append(labels, p.Label)
	}
	assert.Empty(t, cmp.Diff([]string{"«", "‹", "…", "15", "16", "17", "18", "19", "20", "›", "»"}, labels))
	assert.True(t, v.Pager[len(v.Pager)-2].Disabled)

	v = newStatsView(page, url.Values{"driver": {"11"}})
	assert.Equal(t, dashboard.ModeDriver, v.Mode)
	assert.Equal(t, "11", v.Selected.Number)
	require.Len(t, v.Rows, 20)
	assert.Equal(t, "1", v.Rows[0].Lap)
	assert.True(t, v.Links[1].Active)
	assert.Equal(t, "/2024/1/race/stats?driver=11&mode=Driver", v.Links[1].URL)

	v = newStatsView(page, url.Values{"driver": {"99"}})
	assert.Equal(t, "1", v.Selected.Number)
	assert.Len(t, v.Rows, 20)
	assert.True(t, v.Links[0].Active)
}

func TestAPI(t *testing.T) {
	ts, _ := newTestServer(t, fakeLive{board: livetiming.Board{MeetingName: "Bahrain Grand Prix", Lap: "3"}, ok: true})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/seasons/2024", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.org")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	var sp dashboard.SeasonPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sp))
	assert.Equal(t, 2024, sp.Season)
	assert.Len(t, sp.Races, 1)

	status, body := get(t, ts.URL+"/api/seasons/2024/1/race")
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"Not Found"}`, body)

	status, body = get(t, ts.URL+"/api/live")
	assert.Equal(t, http.StatusOK, status)
	var b livetiming.Board
	require.NoError(t, json.Unmarshal([]byte(body), &b))
	assert.Equal(t, "3", b.Lap)
}

func TestLiveEvents(t *testing.T) {
	ts, ps := newTestServer(t, fakeLive{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/live/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// the websocket broadcaster holds the first subscription
	require.Eventually(t, func() bool {
		return ps.Subscribers(livetiming.PubSubSnapshotTopic) == 2
	}, 2*time.Second, 10*time.Millisecond)

	payload, err := json.Marshal(livetiming.Board{MeetingName: "Saudi Arabian Grand Prix", Lap: "7"})
	require.NoError(t, err)
	ps.Publish(livetiming.PubSubSnapshotTopic, string(payload))

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" && len(lines) > 0 {
			break
		}
		lines = append(lines, line)
	}
	event := strings.Join(lines, "\n")
	assert.Contains(t, event, "id:1")
	assert.Contains(t, event, "event:board")
	assert.Contains(t, event, "Saudi Arabian Grand Prix")
	assert.Contains(t, event, "Lap 7")
}

func TestLiveWebsocket(t *testing.T) {
	ts, ps := newTestServer(t, fakeLive{})

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/live/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	payload := `{"meetingName":"Australian Grand Prix","lap":"2"}`
	// keep publishing until the client registration raced ahead of us
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				ps.Publish(livetiming.PubSubSnapshotTopic, payload)
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(msg))
}
