package livetiming

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"f1dashboard/log"
	"f1dashboard/pkg/caster"
	"f1dashboard/pkg/openf1"
	"f1dashboard/pkg/pubsub"
)

const (
	PubSubSnapshotTopic       = "live-snapshot"
	PubSubSessionStartedTopic = "live-session-started"

	statusStarted = "Started"
)

// DriverSource resolves car numbers of a meeting to driver metadata.
type DriverSource interface {
	Drivers(ctx context.Context, meetingKey int) (map[string]openf1.DriverMeta, error)
}

// SessionStarted is published when a session switches to the started state.
type SessionStarted struct {
	MeetingName string `json:"meetingName"`
	SessionName string `json:"sessionName"`
	SessionType string `json:"sessionType"`
	Circuit     string `json:"circuit"`
}

// Kind maps the session onto the notification categories
// Practice, Qualifying, Sprint and Race.
func (s SessionStarted) Kind() string {
	if strings.Contains(s.SessionName, "Sprint") {
		return "Sprint"
	}
	return s.SessionType
}

func (s SessionStarted) String() string {
	name := s.MeetingName
	if s.Circuit != "" {
		name = fmt.Sprintf("%s (%s)", name, s.Circuit)
	}
	return fmt.Sprintf("%s: %s started", name, s.SessionName)
}

type Manager struct {
	ctx      context.Context
	mu       sync.Mutex
	stream   Streamer
	drivers  DriverSource
	loc      *time.Location
	running  bool
	board    Board
	hasBoard bool

	meta       map[string]openf1.DriverMeta
	metaKey    int
	metaFailed int
	lastStatus string

	pubsubMgr     *pubsub.PubSub[string]
	boardCaster   caster.ChannelCaster[Board]
	startedCaster caster.ChannelCaster[SessionStarted]
}

func NewManager(ctx context.Context, stream Streamer, drivers DriverSource, pubsubMgr *pubsub.PubSub[string], loc *time.Location) *Manager {
	return &Manager{
		ctx:           ctx,
		stream:        stream,
		drivers:       drivers,
		loc:           loc,
		pubsubMgr:     pubsubMgr,
		boardCaster:   caster.JSONChannelCaster[Board]{},
		startedCaster: caster.JSONChannelCaster[SessionStarted]{},
	}
}

// Sync makes sure a stream is connected now and on every tick. A stream that
// ended is dialed again on the next tick.
func (m *Manager) Sync(ticker *time.Ticker, exitChan chan bool) {
	m.doSync(time.Now())
	go func() {
		for {
			select {
			case <-exitChan:
				return
			case <-m.ctx.Done():
				return
			case t := <-ticker.C:
				m.doSync(t)
			}
		}
	}()
}

func (m *Manager) doSync(t time.Time) {
	m.mu.Lock()
	// failed driver lookups get another chance on every tick
	m.metaFailed = 0
	if m.running || m.ctx.Err() != nil {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.mu.Unlock()

	log.Debug("Connecting live stream", log.Time("at", t))
	go func() {
		defer func() {
			m.mu.Lock()
			m.running = false
			m.mu.Unlock()
		}()
		if err := m.stream.Run(m.ctx, m.HandleSnapshot); err != nil {
			log.Warn("live stream closed", log.ErrorField(err))
			return
		}
		log.Info("live stream ended")
	}()
}

func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Board returns the board of the last snapshot.
func (m *Manager) Board() (Board, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board, m.hasBoard
}

// HandleSnapshot replaces the current board with the one built from rd and
// publishes it.
func (m *Manager) HandleSnapshot(rd RaceData) {
	meta := m.driverMeta(rd.MeetingKey())
	board := BuildBoard(rd, meta, m.loc)

	m.mu.Lock()
	m.board = board
	m.hasBoard = true
	prev := m.lastStatus
	status := rd.Status()
	m.lastStatus = status
	m.mu.Unlock()

	if payload, err := m.boardCaster.To(board); err != nil {
		log.Error("Error casting board to json", log.ErrorField(err))
	} else {
		m.pubsubMgr.Publish(PubSubSnapshotTopic, payload)
	}

	if prev != "" && prev != statusStarted && status == statusStarted {
		m.publishStarted(rd)
	}
}

func (m *Manager) publishStarted(rd RaceData) {
	ev := SessionStarted{}
	if rd.Session != nil && rd.Session.SessionInfo != nil {
		info := rd.Session.SessionInfo
		ev.SessionName = info.Name
		ev.SessionType = info.Type
		if info.Meeting != nil {
			ev.MeetingName = info.Meeting.Name
			if info.Meeting.Circuit != nil {
				ev.Circuit = info.Meeting.Circuit.ShortName
			}
		}
	}
	log.Info("session started", log.String("meeting", ev.MeetingName), log.String("session", ev.SessionName))
	payload, err := m.startedCaster.To(ev)
	if err != nil {
		log.Error("Error casting session started to json", log.ErrorField(err))
		return
	}
	m.pubsubMgr.Publish(PubSubSessionStartedTopic, payload)
}

// driverMeta returns the cached metadata of the meeting, fetching it only when
// the meeting key changes. A failed lookup is not repeated before the next
// sync tick.
func (m *Manager) driverMeta(key int) map[string]openf1.DriverMeta {
	if key == 0 {
		return nil
	}
	m.mu.Lock()
	switch key {
	case m.metaKey:
		meta := m.meta
		m.mu.Unlock()
		return meta
	case m.metaFailed:
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	meta, err := m.drivers.Drivers(m.ctx, key)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		log.Warn("could not fetch driver metadata", log.Int("meeting", key), log.ErrorField(err))
		m.metaFailed = key
		return nil
	}
	m.meta = meta
	m.metaKey = key
	m.metaFailed = 0
	return meta
}
