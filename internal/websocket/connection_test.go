package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dialTestConnection upgrades one server-side socket, wraps it in a
// Connection, and returns both ends.
func dialTestConnection(t *testing.T) (*Connection, *websocket.Conn) {
	t.Helper()

	connCh := make(chan *Connection, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		connCh <- NewConnection(ws)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case conn := <-connCh:
		t.Cleanup(func() { conn.Close() })
		return conn, client
	case <-time.After(2 * time.Second):
		t.Fatal("server never produced a connection")
		return nil, nil
	}
}

func TestSendEventDeliversFrame(t *testing.T) {
	conn, client := dialTestConnection(t)

	if err := conn.SendEvent("cursor-updated", map[string]interface{}{"x": 1.5}); err != nil {
		t.Fatalf("SendEvent: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("reading frame: %v", err)
	}

	var frame struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &frame); err != nil {
		t.Fatalf("unmarshaling frame %q: %v", raw, err)
	}
	if frame.Event != "cursor-updated" {
		t.Errorf("event = %q", frame.Event)
	}
	if string(frame.Data) != `{"x":1.5}` {
		t.Errorf("data = %s", frame.Data)
	}
}

func TestSendEventOmitsNilData(t *testing.T) {
	conn, client := dialTestConnection(t)

	if err := conn.SendEvent("pong", nil); err != nil {
		t.Fatalf("SendEvent: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	if string(raw) != `{"event":"pong"}` {
		t.Errorf("frame = %s", raw)
	}
}

func TestSendEventAfterClose(t *testing.T) {
	conn, _ := dialTestConnection(t)

	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := conn.SendEvent("ping", nil); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("SendEvent after close = %v, want %v", err, ErrConnectionClosed)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	conn, _ := dialTestConnection(t)

	if err := conn.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	select {
	case <-conn.Done():
	default:
		t.Error("Done should be closed after Close")
	}
}

func TestConnectionIDsAreUnique(t *testing.T) {
	a, _ := dialTestConnection(t)
	b, _ := dialTestConnection(t)

	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("ids not unique: %q vs %q", a.ID(), b.ID())
	}
}
