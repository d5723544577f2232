package hub

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/foundermafstat/interactive-board/internal/board"
	"github.com/foundermafstat/interactive-board/internal/presence"
	"github.com/foundermafstat/interactive-board/pkg/types"
)

// Rooms is the slice of the registry the dispatcher needs to resolve a
// subscription back to its room.
type Rooms interface {
	GetRoom(id string) (*types.Room, error)
}

// Dispatcher binds inbound protocol events to room state mutations and the
// hub's fan-out. Each Dispatch call is one complete step: decode, then
// mutate and broadcast under the room lock, so subscribers observe
// mutations in the order they were applied. No error or panic inside a
// handler is allowed to take down the read loop that called it.
type Dispatcher struct {
	hub      *Hub
	rooms    Rooms
	presence *presence.Tracker
	board    *board.Store
}

// NewDispatcher creates a dispatcher over the given components.
func NewDispatcher(h *Hub, rooms Rooms, tracker *presence.Tracker, store *board.Store) *Dispatcher {
	return &Dispatcher{
		hub:      h,
		rooms:    rooms,
		presence: tracker,
		board:    store,
	}
}

// Dispatch processes one inbound frame from the connection.
func (d *Dispatcher) Dispatch(conn Conn, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from handler panic for %s: %v", conn.ID(), r)
		}
	}()

	env, err := types.DecodeEnvelope(raw)
	if err != nil {
		// Malformed frames are dropped, not answered, to avoid error
		// noise on high-frequency senders.
		log.Printf("Dropping malformed frame from %s: %v", conn.ID(), err)
		return
	}

	switch env.Event {
	case types.EventJoinSession:
		d.handleJoin(conn, env.Data)
	case types.EventCursorUpdate:
		d.handleCursorUpdate(conn, env.Data)
	case types.EventCreateElement:
		d.handleCreateElement(conn, env.Data)
	case types.EventUpdateElement:
		d.handleUpdateElement(conn, env.Data)
	case types.EventDeleteElement:
		d.handleDeleteElement(conn, env.Data)
	case types.EventPing:
		d.hub.ToConn(conn, types.EventPong, nil)
	default:
		log.Printf("Ignoring unknown event %q from %s", env.Event, conn.ID())
	}
}

// Disconnect runs the leave path for a closed transport: the participant is
// removed synchronously and stops receiving broadcasts before the socket is
// torn down.
func (d *Dispatcher) Disconnect(conn Conn) {
	roomID, ok := d.hub.Unsubscribe(conn.ID())
	if !ok {
		return
	}

	room, err := d.rooms.GetRoom(roomID)
	if err != nil {
		return
	}

	room.Lock()
	defer room.Unlock()

	if d.presence.Leave(room, conn.ID()) {
		d.hub.ToRoomExcept(roomID, conn.ID(), types.EventUserLeft, types.UserLeftPayload{
			ParticipantID: conn.ID(),
		})
	}
}

func (d *Dispatcher) handleJoin(conn Conn, data json.RawMessage) {
	var req types.JoinSessionRequest
	if err := json.Unmarshal(data, &req); err != nil || req.SessionID == "" {
		d.sendError(conn, "Invalid join request")
		return
	}

	// Resolve the target before touching any existing membership: a join
	// that cannot succeed leaves the sender exactly where it was.
	room, err := d.rooms.GetRoom(req.SessionID)
	if err != nil {
		d.sendError(conn, "Session not found")
		return
	}

	// Re-joining the current room is a leave followed by a fresh join.
	if prev, subscribed := d.hub.RoomOf(conn.ID()); subscribed && prev == req.SessionID {
		d.Disconnect(conn)
	}

	room.Lock()
	result, err := d.presence.Join(room, conn.ID(), req.Username, req.Role)
	if err != nil {
		room.Unlock()
		if errors.Is(err, types.ErrRoomFull) {
			d.sendError(conn, "Session is full")
		} else {
			d.sendError(conn, "Failed to join session")
		}
		return
	}

	d.hub.ToConn(conn, types.EventSessionJoined, types.SessionJoinedPayload{
		Participant: result.Participant,
		Users:       result.Roster,
		Elements:    result.Elements,
		Ball:        result.Ball,
		Scores:      result.Scores,
		GameState:   result.GameState,
	})
	d.hub.ToRoomExcept(req.SessionID, conn.ID(), types.EventUserJoined, result.Participant)
	room.Unlock()

	// Only now that the join is committed does the previous room lose the
	// participant. Never hold two room locks at once.
	d.Disconnect(conn)
	d.hub.Subscribe(conn, req.SessionID)
}

func (d *Dispatcher) handleCursorUpdate(conn Conn, data json.RawMessage) {
	roomID, ok := d.hub.RoomOf(conn.ID())
	if !ok {
		return
	}

	var req types.CursorUpdateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return // non-numeric input, dropped silently
	}

	room, err := d.rooms.GetRoom(roomID)
	if err != nil {
		d.hub.ToConn(conn, types.EventRejoinRequired, types.RejoinRequiredPayload{SessionID: roomID})
		return
	}

	room.Lock()
	defer room.Unlock()

	p, moved, err := d.presence.Move(room, conn.ID(), req.X, req.Y)
	if errors.Is(err, types.ErrStaleIdentity) {
		// Recoverable ordering race: the transport delivered a cursor
		// update after the disconnect was processed. Ask for a rejoin
		// instead of erroring.
		d.hub.ToConn(conn, types.EventRejoinRequired, types.RejoinRequiredPayload{SessionID: roomID})
		return
	}

	if moved {
		d.hub.ToRoom(roomID, types.EventCursorUpdated, types.CursorUpdatedPayload{
			ParticipantID: p.ID,
			X:             p.X,
			Y:             p.Y,
		})
	}
}

func (d *Dispatcher) handleCreateElement(conn Conn, data json.RawMessage) {
	roomID, ok := d.hub.RoomOf(conn.ID())
	if !ok {
		return
	}

	var req types.CreateElementRequest
	if err := json.Unmarshal(data, &req); err != nil {
		d.sendError(conn, "Invalid element spec")
		return
	}

	room, err := d.rooms.GetRoom(roomID)
	if err != nil {
		return
	}

	room.Lock()
	defer room.Unlock()

	el, err := d.board.Create(room, conn.ID(), req)
	if errors.Is(err, types.ErrValidationFailed) {
		d.sendError(conn, "Element requires a kind and numeric coordinates")
		return
	}

	d.hub.ToRoom(roomID, types.EventElementCreated, el)
}

func (d *Dispatcher) handleUpdateElement(conn Conn, data json.RawMessage) {
	roomID, ok := d.hub.RoomOf(conn.ID())
	if !ok {
		return
	}

	var req types.UpdateElementRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ID == "" {
		d.sendError(conn, "Invalid element update")
		return
	}

	room, err := d.rooms.GetRoom(roomID)
	if err != nil {
		return
	}

	room.Lock()
	defer room.Unlock()

	el, err := d.board.Update(room, req.ID, req)
	if errors.Is(err, types.ErrElementNotFound) {
		d.sendError(conn, "Element not found")
		return
	}

	d.hub.ToRoom(roomID, types.EventElementUpdated, el)
}

func (d *Dispatcher) handleDeleteElement(conn Conn, data json.RawMessage) {
	roomID, ok := d.hub.RoomOf(conn.ID())
	if !ok {
		return
	}

	var req types.DeleteElementRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ID == "" {
		return
	}

	room, err := d.rooms.GetRoom(roomID)
	if err != nil {
		return
	}

	room.Lock()
	defer room.Unlock()

	// Deleting an unknown id is a no-op with no broadcast.
	deleted, err := d.board.Delete(room, req.ID)
	if err != nil || !deleted {
		return
	}

	d.hub.ToRoom(roomID, types.EventElementDeleted, types.ElementDeletedPayload{ID: req.ID})
}

func (d *Dispatcher) sendError(conn Conn, message string) {
	d.hub.ToConn(conn, types.EventError, types.ErrorPayload{Message: message})
}
