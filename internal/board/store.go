package board

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/foundermafstat/interactive-board/pkg/types"
)

// Defaults applied when an element spec omits optional geometry.
const (
	DefaultWidth  = 100.0
	DefaultHeight = 100.0
	DefaultColor  = "#cccccc"
)

// Store manages each room's freeform board elements. Elements only change
// through these operations; there is no implicit expiry. Every method
// operates on a room the caller has already locked.
type Store struct{}

// NewStore creates an element store.
func NewStore() *Store {
	return &Store{}
}

// Create validates and stores a new element. Missing kind or non-numeric
// coordinates reject the spec; out-of-bounds geometry is clamped, never an
// error. Caller must hold the room lock.
func (s *Store) Create(room *types.Room, identity string, req types.CreateElementRequest) (*types.BoardElement, error) {
	if !types.IsValidElementKind(req.Kind) || req.X == nil || req.Y == nil {
		return nil, types.ErrValidationFailed
	}

	el := &types.BoardElement{
		ID:        uuid.New().String(),
		Kind:      req.Kind,
		X:         types.ClampX(*req.X),
		Y:         types.ClampY(*req.Y),
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		Color:     DefaultColor,
		Text:      req.Text,
		CreatedBy: identity,
		CreatedAt: time.Now(),
	}
	if req.Width != nil {
		el.Width = clampSize(*req.Width, types.CanvasWidth)
	}
	if req.Height != nil {
		el.Height = clampSize(*req.Height, types.CanvasHeight)
	}
	if req.Color != "" {
		el.Color = req.Color
	}

	room.Elements[el.ID] = el
	room.Touch()

	log.Printf("Element created: room=%s id=%s kind=%s by=%s", room.ID, el.ID, el.Kind, identity)

	copied := *el
	return &copied, nil
}

// Update merges the provided fields over an existing element, re-clamping
// any supplied coordinates and stamping the update time. Caller must hold
// the room lock.
func (s *Store) Update(room *types.Room, id string, req types.UpdateElementRequest) (*types.BoardElement, error) {
	el, exists := room.Elements[id]
	if !exists {
		return nil, types.ErrElementNotFound
	}

	if req.X != nil {
		el.X = types.ClampX(*req.X)
	}
	if req.Y != nil {
		el.Y = types.ClampY(*req.Y)
	}
	if req.Width != nil {
		el.Width = clampSize(*req.Width, types.CanvasWidth)
	}
	if req.Height != nil {
		el.Height = clampSize(*req.Height, types.CanvasHeight)
	}
	if req.Color != nil {
		el.Color = *req.Color
	}
	if req.Text != nil {
		el.Text = *req.Text
	}

	now := time.Now()
	el.UpdatedAt = &now
	room.Touch()

	copied := *el
	return &copied, nil
}

// Delete removes an element by id. Idempotent: deleting an unknown id
// reports false with no error. Caller must hold the room lock.
func (s *Store) Delete(room *types.Room, id string) (bool, error) {
	if _, exists := room.Elements[id]; !exists {
		return false, nil
	}

	delete(room.Elements, id)
	room.Touch()

	log.Printf("Element deleted: room=%s id=%s", room.ID, id)
	return true, nil
}

func clampSize(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
