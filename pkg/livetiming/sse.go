package livetiming

import (
	"bufio"
	"io"
	"strings"
)

// Event is one server sent event.
type Event struct {
	ID    string
	Event string
	Data  string
}

// EventReader reads server sent events from a stream. Besides regular
// "data:" fields it accepts bare JSON lines, which the timing backend emits
// when it replays recorded sessions.
type EventReader struct {
	r *bufio.Reader
}

func NewEventReader(r io.Reader) *EventReader {
	return &EventReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next blocks until a complete event was read. It returns io.EOF when the
// stream ends without a pending event.
func (er *EventReader) Next() (Event, error) {
	var (
		ev      Event
		data    []string
		pending bool
	)
	for {
		line, err := er.r.ReadString('\n')
		if err != nil && line == "" {
			if pending {
				ev.Data = strings.Join(data, "\n")
				return ev, nil
			}
			return Event{}, err
		}
		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			if pending {
				ev.Data = strings.Join(data, "\n")
				return ev, nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		if strings.HasPrefix(line, "{") || strings.HasPrefix(line, "[") {
			data = append(data, line)
			pending = true
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			data = append(data, value)
			pending = true
		case "event":
			ev.Event = value
			pending = true
		case "id":
			ev.ID = value
		}
	}
}
