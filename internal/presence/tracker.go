package presence

import (
	"log"
	"math"
	"time"

	"github.com/foundermafstat/interactive-board/pkg/types"
)

// MinMoveDelta is the movement threshold below which a cursor update is
// dropped, keeping broadcast volume down for jittery tilt input.
const MinMoveDelta = 1.0

// palette assigns participant colors deterministically by join order.
var palette = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#fabebe",
}

// Tracker manages each room's ordered roster: joins, cursor movement and
// departures. Every method operates on a room the caller has already locked,
// so a mutation and whatever it triggers form one run-to-completion step.
type Tracker struct{}

// NewTracker creates a presence tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// JoinResult is the bootstrap snapshot handed to a new participant.
type JoinResult struct {
	Participant types.Participant
	Roster      []types.Participant
	Elements    []types.BoardElement
	Ball        types.Ball
	Scores      map[string]int
	GameState   types.GameState
}

// Join adds a participant to the room. Fails with ErrRoomFull at capacity;
// an unknown role is admitted as a viewer. The returned snapshot lets late
// joiners rebuild the full board state. Caller must hold the room lock.
func (t *Tracker) Join(room *types.Room, identity, username, role string) (*JoinResult, error) {
	if !types.IsValidRole(role) {
		role = types.RoleViewer
	}

	if len(room.Participants) >= room.MaxParticipants {
		return nil, types.ErrRoomFull
	}

	p := &types.Participant{
		ID:           identity,
		Username:     username,
		Role:         role,
		Color:        palette[len(room.Participants)%len(palette)],
		X:            types.CanvasWidth / 2,
		Y:            types.CanvasHeight / 2,
		LastUpdateAt: time.Now(),
	}
	room.Participants = append(room.Participants, p)
	room.Touch()

	log.Printf("Participant joined: room=%s id=%s role=%s", room.ID, identity, role)

	return &JoinResult{
		Participant: *p,
		Roster:      room.RosterSnapshot(),
		Elements:    room.ElementsSnapshot(),
		Ball:        *room.Ball,
		Scores:      room.ScoresSnapshot(),
		GameState:   room.Game,
	}, nil
}

// Move applies a sanitized cursor update. Missing coordinates are ignored
// silently; positions are clamped to the canvas; updates below the movement
// threshold are dropped. A moved=false return with a nil error means the
// update was filtered, not failed. An identity absent from the roster is a
// stale-identity race, answered distinctly so the client can rejoin.
// Caller must hold the room lock.
func (t *Tracker) Move(room *types.Room, identity string, x, y *float64) (types.Participant, bool, error) {
	if x == nil || y == nil {
		return types.Participant{}, false, nil
	}

	p := room.Participant(identity)
	if p == nil {
		return types.Participant{}, false, types.ErrStaleIdentity
	}

	nx := types.ClampX(*x)
	ny := types.ClampY(*y)

	if math.Abs(nx-p.X) < MinMoveDelta && math.Abs(ny-p.Y) < MinMoveDelta {
		return *p, false, nil
	}

	p.X = nx
	p.Y = ny
	p.LastUpdateAt = time.Now()
	room.Touch()

	return *p, true, nil
}

// Leave removes the participant from the roster. Idempotent: an absent
// identity is a no-op. Caller must hold the room lock.
func (t *Tracker) Leave(room *types.Room, identity string) bool {
	if !room.RemoveParticipant(identity) {
		return false
	}
	room.Touch()

	log.Printf("Participant left: room=%s id=%s", room.ID, identity)
	return true
}
