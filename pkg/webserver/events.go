package webserver

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/google/uuid"

	"f1dashboard/log"
	"f1dashboard/pkg/caster"
	"f1dashboard/pkg/livetiming"
)

const (
	eventBoard     = "board"
	eventKeepAlive = "ping"
	keepAlive      = 15 * time.Second
)

// liveEvents relays every board of the live feed to the browser as a
// server rendered fragment.
func (s *Server) liveEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// streams outlive the server write timeout
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("could not clear write deadline", log.ErrorField(err))
	}

	clientID := uuid.NewString()
	boards := s.pubsubMgr.Subscribe(livetiming.PubSubSnapshotTopic)
	defer s.pubsubMgr.Unsubscribe(livetiming.PubSubSnapshotTopic, boards)
	log.Debug("sse client connected", log.String("client", clientID))
	defer log.Debug("sse client disconnected", log.String("client", clientID))

	w.Header().Set("Content-Type", sse.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	boardCaster := caster.JSONChannelCaster[livetiming.Board]{}
	seq := 0
	send := func(b livetiming.Board) error {
		var buf bytes.Buffer
		if err := s.tmpl.ExecuteTemplate(&buf, "board", b); err != nil {
			return err
		}
		seq++
		if err := sse.Encode(w, sse.Event{Id: strconv.Itoa(seq), Event: eventBoard, Data: buf.String()}); err != nil {
			return err
		}
		return rc.Flush()
	}

	if b, ok := s.live.Board(); ok {
		if err := send(b); err != nil {
			return
		}
	} else if err := rc.Flush(); err != nil {
		return
	}

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := sse.Encode(w, sse.Event{Event: eventKeepAlive, Data: clientID}); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case payload, ok := <-boards:
			if !ok {
				return
			}
			b, err := boardCaster.From(payload)
			if err != nil {
				log.Warn("could not decode board", log.ErrorField(err))
				continue
			}
			if err := send(b); err != nil {
				log.Debug("sse write failed", log.String("client", clientID), log.ErrorField(err))
				return
			}
		}
	}
}
