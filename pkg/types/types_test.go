package types

import (
	"encoding/json"
	"testing"
)

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"event":"cursor-update","data":{"x":10,"y":20}}`))
	if err != nil {
		t.Fatalf("DecodeEnvelope failed: %v", err)
	}
	if env.Event != EventCursorUpdate {
		t.Errorf("event = %q, want %q", env.Event, EventCursorUpdate)
	}

	var req CursorUpdateRequest
	if err := json.Unmarshal(env.Data, &req); err != nil {
		t.Fatalf("payload unmarshal failed: %v", err)
	}
	if req.X == nil || *req.X != 10 || req.Y == nil || *req.Y != 20 {
		t.Errorf("unexpected payload: %+v", req)
	}
}

func TestDecodeEnvelopeRejectsBadFrames(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"not json", []byte("hello")},
		{"missing event", []byte(`{"data":{}}`)},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeEnvelope(tt.raw); err == nil {
				t.Error("expected decode error")
			}
		})
	}
}

func TestCursorUpdateNonNumericCoordinates(t *testing.T) {
	// A string coordinate must fail to unmarshal so the handler can drop it.
	var req CursorUpdateRequest
	if err := json.Unmarshal([]byte(`{"x":"abc","y":5}`), &req); err == nil {
		t.Error("expected unmarshal error for non-numeric x")
	}

	// Missing coordinates decode as nil pointers.
	req = CursorUpdateRequest{}
	if err := json.Unmarshal([]byte(`{"y":5}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.X != nil {
		t.Error("missing x should decode as nil")
	}
}

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope(EventUserLeft, UserLeftPayload{ParticipantID: "p1"})
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}

	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	decoded, err := DecodeEnvelope(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	var payload UserLeftPayload
	if err := json.Unmarshal(decoded.Data, &payload); err != nil {
		t.Fatalf("payload unmarshal failed: %v", err)
	}
	if payload.ParticipantID != "p1" {
		t.Errorf("participantId = %q, want p1", payload.ParticipantID)
	}
}

func TestNewEnvelopeRequiresEvent(t *testing.T) {
	if _, err := NewEnvelope("", nil); err == nil {
		t.Error("expected error for empty event name")
	}
}

func TestRoomRosterHelpers(t *testing.T) {
	room := &Room{
		Participants: []*Participant{
			{ID: "a"}, {ID: "b"}, {ID: "c"},
		},
	}

	if p := room.Participant("b"); p == nil || p.ID != "b" {
		t.Fatalf("Participant(b) = %+v", p)
	}
	if p := room.Participant("missing"); p != nil {
		t.Fatalf("expected nil for unknown id, got %+v", p)
	}

	if !room.RemoveParticipant("b") {
		t.Fatal("expected removal of b")
	}
	if room.RemoveParticipant("b") {
		t.Fatal("second removal should report false")
	}

	// Join order of the remaining roster is preserved.
	if len(room.Participants) != 2 || room.Participants[0].ID != "a" || room.Participants[1].ID != "c" {
		t.Errorf("unexpected roster after removal: %+v", room.Participants)
	}
}
