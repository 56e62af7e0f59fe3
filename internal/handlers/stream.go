package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"

	"launchcontrol/pkg/launchpad"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS layer in front of the router.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamHub fans the engine event stream out to websocket subscribers. It
// implements launchpad.EventSink; slow or broken clients are dropped rather
// than allowed to back-pressure the trading path.
type StreamHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan launchpad.Event
}

func NewStreamHub() *StreamHub {
	return &StreamHub{clients: make(map[*websocket.Conn]chan launchpad.Event)}
}

// Publish implements launchpad.EventSink
func (h *StreamHub) Publish(ev launchpad.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- ev:
		default:
			// Client buffer full, disconnect it.
			delete(h.clients, conn)
			close(ch)
			conn.Close()
		}
	}
}

// HandleEventStream upgrades the connection and streams events until the
// client disconnects.
func (h *StreamHub) HandleEventStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("Failed to upgrade websocket: %v", err)
		return
	}

	ch := make(chan launchpad.Event, 256)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	// Writer goroutine: one per client, serialized over the send channel.
	go func() {
		for ev := range ch {
			if err := conn.WriteJSON(ev); err != nil {
				h.remove(conn)
				return
			}
		}
	}()

	// Read loop exists only to observe the close handshake.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(conn)
			return
		}
	}
}

func (h *StreamHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(ch)
	}
	conn.Close()
}
