package types

import (
	"sync"
	"time"
)

// Canvas is the shared coordinate space for every room. All stored positions
// (participants, elements, ball) are clamped into it.
const (
	CanvasWidth  = 1920.0
	CanvasHeight = 1080.0
)

// Participant roles
const (
	RoleDisplay    = "display"
	RoleController = "controller"
	RoleViewer     = "viewer"
)

// Goal sides
const (
	GoalSideLeft  = "left"
	GoalSideRight = "right"
)

// Board element kinds
const (
	ElementRect   = "rect"
	ElementCircle = "circle"
	ElementText   = "text"
	ElementLine   = "line"
	ElementArea   = "area"
)

// Participant is a connected device with a role and a cursor position.
// The ID is the connection identity assigned at upgrade time.
type Participant struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	Color        string    `json:"color"`
	X            float64   `json:"x"`
	Y            float64   `json:"y"`
	LastUpdateAt time.Time `json:"lastUpdateAt"`
}

// BoardElement is a freeform object placed on the board. Elements never
// expire implicitly; they are only created, updated and deleted by events.
type BoardElement struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Color     string     `json:"color"`
	Text      string     `json:"text,omitempty"`
	CreatedBy string     `json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Ball is the one shared puck per room.
type Ball struct {
	X             float64   `json:"x"`
	Y             float64   `json:"y"`
	Radius        float64   `json:"radius"`
	VelocityX     float64   `json:"velocityX"`
	VelocityY     float64   `json:"velocityY"`
	LastTouchedBy string    `json:"lastTouchedBy,omitempty"`
	LastTouchTime time.Time `json:"lastTouchTime"`
}

// Goal is a static scoring rectangle on one side of the canvas.
type Goal struct {
	Side   string  `json:"side"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// GameState tracks whether the ball is live or paused after a goal.
// Exactly one of in-play and goal-pause holds at any time.
type GameState struct {
	InPlay       bool   `json:"inPlay"`
	LastGoalSide string `json:"lastGoalSide,omitempty"`
	GoalMessage  string `json:"goalMessage,omitempty"`
}

// Room is one isolated board: ordered roster, element set, ball, goals and
// scores. The registry is the exclusive owner; every other component holds a
// reference and mutates only through its own operations, under the room lock.
type Room struct {
	ID              string                   `json:"id"`
	CreatedAt       time.Time                `json:"createdAt"`
	LastActivityAt  time.Time                `json:"lastActivityAt"`
	MaxParticipants int                      `json:"maxParticipants"`
	Participants    []*Participant           `json:"participants"`
	Elements        map[string]*BoardElement `json:"elements"`
	Ball            *Ball                    `json:"ball"`
	Goals           [2]Goal                  `json:"goals"`
	Scores          map[string]int           `json:"scores"`
	Game            GameState                `json:"gameState"`

	// TickStop cancels the room's recurring physics ticker. Set by the
	// registry when the room is created, invoked exactly once on removal.
	TickStop func() `json:"-"`

	// RespawnTimer is the pending goal-pause respawn, if any. Stopped on
	// room removal so no timer fires against an evicted room.
	RespawnTimer *time.Timer `json:"-"`

	mu      sync.Mutex
	removed bool
}

// MarkRemoved flags the room as evicted so late timers can tell they lost
// the race against removal. Caller must hold the room lock.
func (r *Room) MarkRemoved() { r.removed = true }

// IsRemoved reports whether the room has been evicted from its registry.
// Caller must hold the room lock.
func (r *Room) IsRemoved() bool { return r.removed }

// Lock acquires the room's state lock. Every inbound event and every physics
// tick runs as one locked, run-to-completion step; rooms never share a lock.
func (r *Room) Lock() { r.mu.Lock() }

// Unlock releases the room's state lock.
func (r *Room) Unlock() { r.mu.Unlock() }

// Participant returns the roster entry for the given identity, or nil.
// Caller must hold the room lock.
func (r *Room) Participant(id string) *Participant {
	for _, p := range r.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// RemoveParticipant drops the identity from the roster, preserving join
// order of the remaining participants. Returns true if it was present.
// Caller must hold the room lock.
func (r *Room) RemoveParticipant(id string) bool {
	for i, p := range r.Participants {
		if p.ID == id {
			r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
			return true
		}
	}
	return false
}

// Touch records activity so the reaper keeps the room alive.
// Caller must hold the room lock.
func (r *Room) Touch() {
	r.LastActivityAt = time.Now()
}

// RosterSnapshot copies the current roster for handing to a subscriber
// outside the room lock.
func (r *Room) RosterSnapshot() []Participant {
	roster := make([]Participant, 0, len(r.Participants))
	for _, p := range r.Participants {
		roster = append(roster, *p)
	}
	return roster
}

// ElementsSnapshot copies the current element set.
// Caller must hold the room lock.
func (r *Room) ElementsSnapshot() []BoardElement {
	elements := make([]BoardElement, 0, len(r.Elements))
	for _, el := range r.Elements {
		elements = append(elements, *el)
	}
	return elements
}

// ScoresSnapshot copies the score table.
// Caller must hold the room lock.
func (r *Room) ScoresSnapshot() map[string]int {
	scores := make(map[string]int, len(r.Scores))
	for id, s := range r.Scores {
		scores[id] = s
	}
	return scores
}
