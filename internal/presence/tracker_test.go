package presence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/foundermafstat/interactive-board/internal/session"
	"github.com/foundermafstat/interactive-board/pkg/types"
)

func newTestRoom(t *testing.T) (*Tracker, *types.Room) {
	t.Helper()
	reg := session.NewRegistry(nil)
	room := reg.CreateRoom()
	t.Cleanup(func() { reg.RemoveRoom(room.ID) })
	return NewTracker(), room
}

func floatPtr(v float64) *float64 { return &v }

func TestJoinAssignsColorAndCenter(t *testing.T) {
	tracker, room := newTestRoom(t)

	first, err := tracker.Join(room, "c1", "alice", types.RoleController)
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	second, err := tracker.Join(room, "c2", "bob", types.RoleController)
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}

	if first.Participant.X != types.CanvasWidth/2 || first.Participant.Y != types.CanvasHeight/2 {
		t.Errorf("participant not spawned at center: %+v", first.Participant)
	}
	if first.Participant.Color == second.Participant.Color {
		t.Error("consecutive joiners should get different palette colors")
	}
	if len(second.Roster) != 2 {
		t.Errorf("roster size = %d, want 2", len(second.Roster))
	}
	// Roster order is join order.
	if second.Roster[0].ID != "c1" || second.Roster[1].ID != "c2" {
		t.Errorf("roster not in join order: %+v", second.Roster)
	}
}

func TestJoinUnknownRoleBecomesViewer(t *testing.T) {
	tracker, room := newTestRoom(t)

	res, err := tracker.Join(room, "c1", "x", "superuser")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if res.Participant.Role != types.RoleViewer {
		t.Errorf("role = %q, want viewer", res.Participant.Role)
	}
}

func TestJoinCapacity(t *testing.T) {
	tracker, room := newTestRoom(t)

	for i := 0; i < room.MaxParticipants; i++ {
		if _, err := tracker.Join(room, fmt.Sprintf("c%d", i), "u", types.RoleController); err != nil {
			t.Fatalf("join %d failed: %v", i, err)
		}
	}

	if _, err := tracker.Join(room, "overflow", "u", types.RoleController); !errors.Is(err, types.ErrRoomFull) {
		t.Errorf("expected ErrRoomFull, got %v", err)
	}

	if len(room.Participants) != room.MaxParticipants {
		t.Errorf("roster size = %d, want %d", len(room.Participants), room.MaxParticipants)
	}
}

func TestMoveClampsToCanvas(t *testing.T) {
	tracker, room := newTestRoom(t)
	if _, err := tracker.Join(room, "c1", "u", types.RoleController); err != nil {
		t.Fatal(err)
	}

	p, moved, err := tracker.Move(room, "c1", floatPtr(5000), floatPtr(-100))
	if err != nil || !moved {
		t.Fatalf("move failed: moved=%v err=%v", moved, err)
	}
	if p.X != types.CanvasWidth || p.Y != 0 {
		t.Errorf("position = (%v, %v), want (%v, 0)", p.X, p.Y, types.CanvasWidth)
	}
}

func TestMoveIgnoresMissingCoordinates(t *testing.T) {
	tracker, room := newTestRoom(t)
	if _, err := tracker.Join(room, "c1", "u", types.RoleController); err != nil {
		t.Fatal(err)
	}

	_, moved, err := tracker.Move(room, "c1", nil, floatPtr(10))
	if err != nil {
		t.Errorf("missing x should be silently ignored, got %v", err)
	}
	if moved {
		t.Error("missing x should not move the cursor")
	}
}

func TestMoveMinDeltaFilter(t *testing.T) {
	tracker, room := newTestRoom(t)
	if _, err := tracker.Join(room, "c1", "u", types.RoleController); err != nil {
		t.Fatal(err)
	}

	if _, moved, _ := tracker.Move(room, "c1", floatPtr(100), floatPtr(100)); !moved {
		t.Fatal("expected first move to apply")
	}

	// Sub-threshold wiggle is filtered.
	_, moved, err := tracker.Move(room, "c1", floatPtr(100.3), floatPtr(100.3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved {
		t.Error("sub-threshold move should be filtered")
	}
}

func TestMoveStaleIdentity(t *testing.T) {
	tracker, room := newTestRoom(t)

	_, _, err := tracker.Move(room, "ghost", floatPtr(10), floatPtr(10))
	if !errors.Is(err, types.ErrStaleIdentity) {
		t.Errorf("expected ErrStaleIdentity, got %v", err)
	}
}

func TestLeaveIdempotent(t *testing.T) {
	tracker, room := newTestRoom(t)
	if _, err := tracker.Join(room, "c1", "u", types.RoleController); err != nil {
		t.Fatal(err)
	}

	if !tracker.Leave(room, "c1") {
		t.Error("expected first leave to remove the participant")
	}
	if tracker.Leave(room, "c1") {
		t.Error("second leave should be a no-op")
	}
}
