package game

import (
	"fmt"
	"math"
	"time"

	"github.com/foundermafstat/interactive-board/pkg/types"
)

// Broadcaster delivers an event to every subscriber of a room. The engine
// only ever fans out to the whole room.
type Broadcaster interface {
	ToRoom(roomID string, event string, payload interface{})
}

// Engine runs the fixed-tick ball simulation for every room. It owns no
// rooms itself; the registry drives Tick on each room's own timer and the
// engine mutates room state under the room lock.
type Engine struct {
	broadcast Broadcaster
}

// NewEngine creates a physics engine that emits through the given broadcaster.
func NewEngine(broadcast Broadcaster) *Engine {
	return &Engine{broadcast: broadcast}
}

// NewBall returns a ball at rest at canvas center.
func NewBall() *types.Ball {
	return &types.Ball{
		X:      types.CanvasWidth / 2,
		Y:      types.CanvasHeight / 2,
		Radius: BallRadius,
	}
}

// DefaultGoals returns the fixed left/right goal rectangles, centered
// vertically on the canvas edges.
func DefaultGoals() [2]types.Goal {
	y := (types.CanvasHeight - GoalHeight) / 2
	return [2]types.Goal{
		{Side: types.GoalSideLeft, X: 0, Y: y, Width: GoalWidth, Height: GoalHeight},
		{Side: types.GoalSideRight, X: types.CanvasWidth - GoalWidth, Y: y, Width: GoalWidth, Height: GoalHeight},
	}
}

// Tick advances the room's simulation by one step and broadcasts the
// resulting game state. It runs as a single locked step against the room.
func (e *Engine) Tick(room *types.Room) {
	room.Lock()
	defer room.Unlock()

	e.stepBall(room)
	e.collideWalls(room.Ball)
	e.collideCursors(room)
	e.repelCursors(room)
	e.detectGoal(room)

	// The tick is the display's animation clock, so the state delta goes
	// out every tick even if nothing moved.
	e.broadcast.ToRoom(room.ID, types.EventGameStateUpdate, types.GameStatePayload{
		Ball:      *room.Ball,
		Scores:    room.ScoresSnapshot(),
		GameState: room.Game,
	})
}

// stepBall applies friction, zeroes dead velocity, caps speed and advances
// the ball position.
func (e *Engine) stepBall(room *types.Room) {
	b := room.Ball
	b.VelocityX *= Friction
	b.VelocityY *= Friction

	if math.Abs(b.VelocityX) < VelocityEpsilon {
		b.VelocityX = 0
	}
	if math.Abs(b.VelocityY) < VelocityEpsilon {
		b.VelocityY = 0
	}

	clampBallSpeed(b)

	b.X += b.VelocityX
	b.Y += b.VelocityY
}

func clampBallSpeed(b *types.Ball) {
	speed := math.Hypot(b.VelocityX, b.VelocityY)
	if speed > MaxSpeed {
		scale := MaxSpeed / speed
		b.VelocityX *= scale
		b.VelocityY *= scale
	}
}

// collideWalls clamps the ball circle to the canvas edges, reflecting the
// crossed velocity component with restitution loss.
func (e *Engine) collideWalls(b *types.Ball) {
	if b.X-b.Radius < 0 {
		b.X = b.Radius
		b.VelocityX = -b.VelocityX * Restitution
	} else if b.X+b.Radius > types.CanvasWidth {
		b.X = types.CanvasWidth - b.Radius
		b.VelocityX = -b.VelocityX * Restitution
	}

	if b.Y-b.Radius < 0 {
		b.Y = b.Radius
		b.VelocityY = -b.VelocityY * Restitution
	} else if b.Y+b.Radius > types.CanvasHeight {
		b.Y = types.CanvasHeight - b.Radius
		b.VelocityY = -b.VelocityY * Restitution
	}
}

// collideCursors imparts an impulse to the ball for every overlapping
// non-display cursor. When several cursors overlap in one tick the last one
// in roster order wins the touch attribution.
func (e *Engine) collideCursors(room *types.Room) {
	b := room.Ball
	for _, p := range room.Participants {
		if p.Role == types.RoleDisplay {
			continue
		}

		dx := b.X - p.X
		dy := b.Y - p.Y
		dist := math.Hypot(dx, dy)
		minDist := b.Radius + CursorRadius
		if dist >= minDist {
			continue
		}

		b.LastTouchedBy = p.ID
		b.LastTouchTime = time.Now()

		// Degenerate overlap: push straight up rather than dividing by zero.
		nx, ny := 0.0, -1.0
		if dist > 0 {
			nx = dx / dist
			ny = dy / dist
		}

		penetration := minDist - dist
		impulse := penetration * ImpulseScale
		if impulse > MaxImpulse {
			impulse = MaxImpulse
		}

		b.VelocityX += nx * impulse
		b.VelocityY += ny * impulse
	}
	clampBallSpeed(b)
}

// repelCursors accumulates pairwise personal-space offsets for non-display
// participants and applies each participant's net offset once, re-clamped to
// the canvas.
func (e *Engine) repelCursors(room *types.Room) {
	type offset struct{ x, y float64 }
	offsets := make(map[string]*offset)

	cursors := make([]*types.Participant, 0, len(room.Participants))
	for _, p := range room.Participants {
		if p.Role != types.RoleDisplay {
			cursors = append(cursors, p)
		}
	}

	for i := 0; i < len(cursors); i++ {
		for j := i + 1; j < len(cursors); j++ {
			a, b := cursors[i], cursors[j]
			dx := a.X - b.X
			dy := a.Y - b.Y
			dist := math.Hypot(dx, dy)
			if dist >= RepulsionThreshold {
				continue
			}

			nx, ny := 1.0, 0.0
			if dist > 0 {
				nx = dx / dist
				ny = dy / dist
			}

			push := (1 - dist/RepulsionThreshold) * RepulsionStrength
			if offsets[a.ID] == nil {
				offsets[a.ID] = &offset{}
			}
			if offsets[b.ID] == nil {
				offsets[b.ID] = &offset{}
			}
			offsets[a.ID].x += nx * push
			offsets[a.ID].y += ny * push
			offsets[b.ID].x -= nx * push
			offsets[b.ID].y -= ny * push
		}
	}

	for _, p := range cursors {
		o := offsets[p.ID]
		if o == nil {
			continue
		}
		p.X = types.ClampX(p.X + o.x)
		p.Y = types.ClampY(p.Y + o.y)
	}
}

// detectGoal checks the ball against the goal rectangles while play is
// live. Only the first overlapping goal counts; scanning stops there.
func (e *Engine) detectGoal(room *types.Room) {
	if !room.Game.InPlay {
		return
	}

	for _, goal := range room.Goals {
		if !circleOverlapsRect(room.Ball, goal) {
			continue
		}
		e.scoreGoal(room, goal)
		return
	}
}

func circleOverlapsRect(b *types.Ball, g types.Goal) bool {
	cx := clampRange(b.X, g.X, g.X+g.Width)
	cy := clampRange(b.Y, g.Y, g.Y+g.Height)
	dx := b.X - cx
	dy := b.Y - cy
	return dx*dx+dy*dy < b.Radius*b.Radius
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// scoreGoal transitions the room into goal-pause, credits the last toucher
// if known, and schedules the one-shot respawn. Unattributed goals still
// pause play, they just award nothing.
func (e *Engine) scoreGoal(room *types.Room, goal types.Goal) {
	scorer := room.Ball.LastTouchedBy
	message := "Goal!"
	if scorer != "" {
		room.Scores[scorer]++
		if p := room.Participant(scorer); p != nil && p.Username != "" {
			message = fmt.Sprintf("%s scored!", p.Username)
		}
	}

	room.Game.InPlay = false
	room.Game.LastGoalSide = goal.Side
	room.Game.GoalMessage = message

	e.broadcast.ToRoom(room.ID, types.EventGoal, types.GoalPayload{
		GoalSide:           goal.Side,
		ScoringParticipant: scorer,
		Message:            message,
		Scores:             room.ScoresSnapshot(),
	})

	// One-shot respawn; the timer handle lives on the room so removal can
	// cancel it before it fires.
	room.RespawnTimer = time.AfterFunc(GoalPauseDelay, func() {
		e.respawn(room)
	})
}

// respawn resets the ball to canvas center at rest and resumes play. A timer
// that fired while the room was being removed finds the removal flag and
// backs out without touching the evicted room.
func (e *Engine) respawn(room *types.Room) {
	room.Lock()
	defer room.Unlock()

	if room.IsRemoved() {
		return
	}

	room.RespawnTimer = nil
	room.Ball.X = types.CanvasWidth / 2
	room.Ball.Y = types.CanvasHeight / 2
	room.Ball.VelocityX = 0
	room.Ball.VelocityY = 0
	room.Ball.LastTouchedBy = ""
	room.Game.InPlay = true
	room.Game.GoalMessage = ""

	e.broadcast.ToRoom(room.ID, types.EventGameResume, types.GameResumePayload{
		Ball: *room.Ball,
	})
}
