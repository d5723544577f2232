package types

import (
	"encoding/json"
	"fmt"
)

// Event names for the room-scoped wire protocol. Inbound events mutate room
// state through the dispatcher; outbound events are fanned out by the hub.
const (
	EventJoinSession   = "join-session"
	EventSessionJoined = "session-joined"
	EventUserJoined    = "user-joined"
	EventUserLeft      = "user-left"

	EventCursorUpdate  = "cursor-update"
	EventCursorUpdated = "cursor-updated"

	EventCreateElement  = "create-element"
	EventUpdateElement  = "update-element"
	EventDeleteElement  = "delete-element"
	EventElementCreated = "element-created"
	EventElementUpdated = "element-updated"
	EventElementDeleted = "element-deleted"

	EventGameStateUpdate = "game-state-update"
	EventGoal            = "goal"
	EventGameResume      = "game-resume"

	EventError          = "error"
	EventRejoinRequired = "rejoin-required"
	EventPing           = "ping"
	EventPong           = "pong"
)

// Envelope is the wire frame for every protocol message, in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals a payload into an envelope for the given event.
func NewEnvelope(event string, payload interface{}) (Envelope, error) {
	if event == "" {
		return Envelope{}, fmt.Errorf("envelope event cannot be empty")
	}
	if payload == nil {
		return Envelope{Event: event}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	return Envelope{Event: event, Data: data}, nil
}

// DecodeEnvelope parses a raw frame into an envelope.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	if len(raw) == 0 {
		return Envelope{}, fmt.Errorf("empty frame")
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, err
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("frame missing event name")
	}
	return env, nil
}

// Inbound payloads. Coordinate fields are pointers so missing or non-numeric
// values are distinguishable from zero; validation policy lives with each
// handler (high-frequency events drop bad input silently).

type JoinSessionRequest struct {
	SessionID string `json:"sessionId"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

type CursorUpdateRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type CreateElementRequest struct {
	Kind   string   `json:"kind"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Color  string   `json:"color"`
	Text   string   `json:"text"`
}

type UpdateElementRequest struct {
	ID     string   `json:"id"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Color  *string  `json:"color"`
	Text   *string  `json:"text"`
}

type DeleteElementRequest struct {
	ID string `json:"id"`
}

// Outbound payloads.

type SessionJoinedPayload struct {
	Participant Participant    `json:"participant"`
	Users       []Participant  `json:"users"`
	Elements    []BoardElement `json:"elements"`
	Ball        Ball           `json:"ball"`
	Scores      map[string]int `json:"scores"`
	GameState   GameState      `json:"gameState"`
}

type UserLeftPayload struct {
	ParticipantID string `json:"participantId"`
}

type CursorUpdatedPayload struct {
	ParticipantID string  `json:"participantId"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
}

type ElementDeletedPayload struct {
	ID string `json:"id"`
}

type GameStatePayload struct {
	Ball      Ball           `json:"ball"`
	Scores    map[string]int `json:"scores"`
	GameState GameState      `json:"gameState"`
}

type GoalPayload struct {
	GoalSide           string         `json:"goalSide"`
	ScoringParticipant string         `json:"scoringParticipant,omitempty"`
	Message            string         `json:"message"`
	Scores             map[string]int `json:"scores"`
}

type GameResumePayload struct {
	Ball Ball `json:"ball"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type RejoinRequiredPayload struct {
	SessionID string `json:"sessionId"`
}
