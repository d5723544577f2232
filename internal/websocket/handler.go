package websocket

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/foundermafstat/interactive-board/internal/hub"
)

const (
	readDeadline = 60 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Controllers join from phones on arbitrary origins.
		return true
	},
	HandshakeTimeout: 10 * time.Second,
}

// Dispatcher consumes inbound frames and connection lifecycle events.
// Satisfied by *hub.Dispatcher.
type Dispatcher interface {
	Dispatch(conn hub.Conn, raw []byte)
	Disconnect(conn hub.Conn)
}

// Handler upgrades HTTP requests and runs each connection's read pump.
type Handler struct {
	dispatcher Dispatcher
}

// NewHandler creates a WebSocket handler feeding the given dispatcher.
func NewHandler(dispatcher Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

// HandleWebSocket upgrades the request and serves the connection until the
// peer goes away. Disconnect runs before the socket closes so the
// participant record is gone by the time the transport is.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	wsConn := NewConnection(conn)
	log.Printf("Connection opened: id=%s remote=%s", wsConn.ID(), r.RemoteAddr)

	go h.keepalive(wsConn)
	h.readPump(wsConn)

	h.dispatcher.Disconnect(wsConn)
	_ = wsConn.Close()
	log.Printf("Connection closed: id=%s", wsConn.ID())
}

func (h *Handler) readPump(conn *Connection) {
	if err := conn.conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return
	}
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		messageType, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error for %s: %v", conn.ID(), err)
			}
			return
		}

		if messageType == websocket.TextMessage {
			h.dispatcher.Dispatch(conn, data)
		}
	}
}

func (h *Handler) keepalive(conn *Connection) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		case <-conn.Done():
			return
		}
	}
}
