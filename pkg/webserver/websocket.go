package webserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"f1dashboard/log"
)

const writeWait = 10 * time.Second

// Broadcaster pushes every board JSON payload it receives to all connected
// websocket clients.
type Broadcaster struct {
	payloads <-chan string
	clients  map[*websocket.Conn]struct{}
	last     string
	mu       sync.Mutex
	upgrader websocket.Upgrader
	done     chan struct{}
	once     sync.Once
}

func NewBroadcaster(payloads <-chan string) *Broadcaster {
	return &Broadcaster{
		payloads: payloads,
		clients:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		done:     make(chan struct{}),
	}
}

// Run forwards payloads until Close is called or the channel is closed.
func (b *Broadcaster) Run() {
	for {
		select {
		case <-b.done:
			return
		case payload, ok := <-b.payloads:
			if !ok {
				return
			}
			b.Broadcast(payload)
		}
	}
}

func (b *Broadcaster) Close() {
	b.once.Do(func() {
		close(b.done)
		b.mu.Lock()
		defer b.mu.Unlock()
		for c := range b.clients {
			_ = c.Close()
			delete(b.clients, c)
		}
	})
}

func (b *Broadcaster) Broadcast(payload string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = payload
	for c := range b.clients {
		if err := b.write(c, payload); err != nil {
			log.Debug("websocket write error", log.ErrorField(err))
			_ = c.Close()
			delete(b.clients, c)
		}
	}
}

func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *Broadcaster) write(c *websocket.Conn, payload string) error {
	_ = c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteMessage(websocket.TextMessage, []byte(payload))
}

// Handler upgrades the request and registers the client. New clients get the
// last board right away.
func (b *Broadcaster) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade error", log.ErrorField(err))
			return
		}
		b.mu.Lock()
		if b.last != "" {
			if err := b.write(conn, b.last); err != nil {
				b.mu.Unlock()
				_ = conn.Close()
				return
			}
		}
		b.clients[conn] = struct{}{}
		b.mu.Unlock()

		// the read loop notices closed connections
		go func() {
			defer func() {
				b.mu.Lock()
				delete(b.clients, conn)
				b.mu.Unlock()
				_ = conn.Close()
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					break
				}
			}
		}()
	}
}
