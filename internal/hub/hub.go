package hub

import (
	"log"
	"sync"
)

// Conn is the transport seam the hub fans out through. Satisfied by
// *websocket.Connection; tests use fakes with buffered channels.
type Conn interface {
	ID() string
	SendEvent(event string, payload interface{}) error
}

// Hub maps each connection to at most one room subscription and fans
// outbound events to a room's subscribers. Subscribing to a new room
// implicitly drops the previous subscription.
type Hub struct {
	mu          sync.RWMutex
	connRooms   map[string]string          // connID -> roomID
	subscribers map[string]map[string]Conn // roomID -> connID -> Conn
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		connRooms:   make(map[string]string),
		subscribers: make(map[string]map[string]Conn),
	}
}

// Subscribe binds the connection to a room, replacing any prior binding.
func (h *Hub) Subscribe(conn Conn, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropLocked(conn.ID())
	h.connRooms[conn.ID()] = roomID
	if h.subscribers[roomID] == nil {
		h.subscribers[roomID] = make(map[string]Conn)
	}
	h.subscribers[roomID][conn.ID()] = conn
}

// Unsubscribe removes the connection's subscription, returning the room it
// was bound to. Idempotent.
func (h *Hub) Unsubscribe(connID string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomID, ok := h.connRooms[connID]
	if ok {
		h.dropLocked(connID)
	}
	return roomID, ok
}

func (h *Hub) dropLocked(connID string) {
	roomID, ok := h.connRooms[connID]
	if !ok {
		return
	}
	delete(h.connRooms, connID)
	if subs, exists := h.subscribers[roomID]; exists {
		delete(subs, connID)
		if len(subs) == 0 {
			delete(h.subscribers, roomID)
		}
	}
}

// RoomOf returns the room the connection is subscribed to.
func (h *Hub) RoomOf(connID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomID, ok := h.connRooms[connID]
	return roomID, ok
}

// ToRoom delivers an event to every subscriber of the room, including the
// sender. Delivery continues past individual failures.
func (h *Hub) ToRoom(roomID string, event string, payload interface{}) {
	h.deliver(roomID, "", event, payload)
}

// ToRoomExcept delivers an event to every subscriber of the room except the
// given connection, for notices the sender already knows about.
func (h *Hub) ToRoomExcept(roomID, exceptConnID string, event string, payload interface{}) {
	h.deliver(roomID, exceptConnID, event, payload)
}

// ToConn delivers a unicast event, used for acknowledgements and errors.
func (h *Hub) ToConn(conn Conn, event string, payload interface{}) {
	if err := conn.SendEvent(event, payload); err != nil {
		log.Printf("Failed to deliver %s to %s: %v", event, conn.ID(), err)
	}
}

func (h *Hub) deliver(roomID, exceptConnID, event string, payload interface{}) {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.subscribers[roomID]))
	for connID, conn := range h.subscribers[roomID] {
		if connID == exceptConnID {
			continue
		}
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.SendEvent(event, payload); err != nil {
			log.Printf("Failed to deliver %s to %s in room %s: %v", event, conn.ID(), roomID, err)
		}
	}
}

// GetStats returns subscription counts for the health endpoint.
func (h *Hub) GetStats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]int{
		"connections":      len(h.connRooms),
		"subscribed_rooms": len(h.subscribers),
	}
}
