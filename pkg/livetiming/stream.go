package livetiming

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"f1dashboard/log"
)

// Streamer delivers snapshots until the connection ends.
type Streamer interface {
	Run(ctx context.Context, onSnapshot func(RaceData)) error
}

type Stream struct {
	url    string
	client *http.Client
}

func NewStream(url string, client *http.Client) *Stream {
	if client == nil {
		client = http.DefaultClient
	}
	return &Stream{url: url, client: client}
}

// Run connects to the stream and hands every decoded snapshot to onSnapshot.
// It returns when the stream ends, fails or ctx is done. The connection is
// never retried here.
func (s *Stream) Run(ctx context.Context, onSnapshot func(RaceData)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return errors.Wrap(err, "creating stream request")
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "connecting to %s", s.url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("connecting to %s: unexpected status %d", s.url, resp.StatusCode)
	}
	log.Info("connected to live stream", log.String("url", s.url))

	reader := NewEventReader(resp.Body)
	for {
		ev, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "reading live stream")
		}
		snapshot, ok := decodeSnapshot(ev.Data)
		if !ok {
			continue
		}
		onSnapshot(snapshot)
	}
}

func decodeSnapshot(data string) (RaceData, bool) {
	data = strings.TrimSpace(data)
	if data == "" {
		return RaceData{}, false
	}
	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(data), &probe); err == nil && probe.Error != "" {
		log.Warn("live stream reported an error", log.String("error", probe.Error))
		return RaceData{}, false
	}
	var rd RaceData
	if err := json.Unmarshal([]byte(data), &rd); err != nil {
		log.Warn("could not decode live snapshot", log.ErrorField(err))
		return RaceData{}, false
	}
	return rd, true
}
