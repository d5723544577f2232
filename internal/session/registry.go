package session

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foundermafstat/interactive-board/internal/game"
	"github.com/foundermafstat/interactive-board/pkg/types"
)

// Engine advances one room by one simulation step. Satisfied by
// *game.Engine; injected so the registry can be tested with a fake.
type Engine interface {
	Tick(room *types.Room)
}

// Registry owns the set of active rooms. Creating a room starts its
// recurring physics ticker; removing it cancels the ticker and any pending
// respawn so nothing fires against a stale room.
type Registry struct {
	mu           sync.RWMutex
	rooms        map[string]*types.Room
	engine       Engine
	tickInterval time.Duration
}

// NewRegistry creates an empty registry driving the given engine at the
// standard tick rate.
func NewRegistry(engine Engine) *Registry {
	return &Registry{
		rooms:        make(map[string]*types.Room),
		engine:       engine,
		tickInterval: game.TickInterval,
	}
}

// CreateRoom allocates a room with default geometry, registers it and
// starts its tick timer.
func (r *Registry) CreateRoom() *types.Room {
	now := time.Now()
	room := &types.Room{
		ID:              uuid.New().String(),
		CreatedAt:       now,
		LastActivityAt:  now,
		MaxParticipants: game.MaxParticipants,
		Participants:    make([]*types.Participant, 0, game.MaxParticipants),
		Elements:        make(map[string]*types.BoardElement),
		Ball:            game.NewBall(),
		Goals:           game.DefaultGoals(),
		Scores:          make(map[string]int),
		Game:            types.GameState{InPlay: true},
	}

	quit := make(chan struct{})
	var stopOnce sync.Once
	room.TickStop = func() {
		stopOnce.Do(func() { close(quit) })
	}

	r.mu.Lock()
	r.rooms[room.ID] = room
	r.mu.Unlock()

	go r.runTicker(room, quit)

	log.Printf("Created room: id=%s capacity=%d", room.ID, room.MaxParticipants)
	return room
}

// GetRoom retrieves a room by id.
func (r *Registry) GetRoom(id string) (*types.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, exists := r.rooms[id]
	if !exists {
		return nil, types.ErrRoomNotFound
	}
	return room, nil
}

// RemoveRoom cancels the room's timers and evicts it. Idempotent.
func (r *Registry) RemoveRoom(id string) {
	r.mu.Lock()
	room, exists := r.rooms[id]
	if exists {
		delete(r.rooms, id)
	}
	r.mu.Unlock()

	if !exists {
		return
	}

	room.TickStop()

	room.Lock()
	room.MarkRemoved()
	if room.RespawnTimer != nil {
		room.RespawnTimer.Stop()
		room.RespawnTimer = nil
	}
	room.Unlock()

	log.Printf("Removed room: id=%s", id)
}

// ListRooms returns a snapshot of all active rooms.
func (r *Registry) ListRooms() []*types.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]*types.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// GetStats returns aggregate counts for the health endpoint.
func (r *Registry) GetStats() map[string]int {
	r.mu.RLock()
	rooms := make([]*types.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	participants := 0
	for _, room := range rooms {
		room.Lock()
		participants += len(room.Participants)
		room.Unlock()
	}

	return map[string]int{
		"active_rooms":       len(rooms),
		"total_participants": participants,
	}
}

// runTicker drives the room's simulation until the room is stopped. The
// existence re-check guards the race between the reaper evicting a room and
// a tick already scheduled against it.
func (r *Registry) runTicker(room *types.Room, quit <-chan struct{}) {
	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			if _, err := r.GetRoom(room.ID); err != nil {
				return
			}
			if r.engine != nil {
				r.engine.Tick(room)
			}
		}
	}
}
