package room

import "testing"

// stubState is a minimal State used to exercise the registry.
type stubState struct {
	Base
}

func (s *stubState) Reset() bool                          { return false }
func (s *stubState) Move(data []byte, connID string) bool { return false }
func (s *stubState) IsFinished() bool                     { return false }
func (s *stubState) Snapshot() Snapshot {
	return Snapshot{Players: s.Players(), Status: s.Status()}
}

func newStub() State {
	return &stubState{Base: NewBase(2, 2)}
}

func TestBase_ReadyFiresOnExactMinPlayers(t *testing.T) {
	base := NewBase(2, 2)

	if !base.AddPlayer(Player{ConnectionHandle: "a"}) {
		t.Fatal("First add should succeed")
	}
	if base.Status() != StatusNotReady {
		t.Fatalf("One of two players should leave the room notReady, got %s", base.Status())
	}

	if !base.AddPlayer(Player{ConnectionHandle: "b"}) {
		t.Fatal("Second add should succeed")
	}
	if base.Status() != StatusReady {
		t.Fatalf("Reaching minPlayers should make the room ready, got %s", base.Status())
	}
}

func TestBase_AddPlayerFullRoom(t *testing.T) {
	base := NewBase(2, 2)
	base.AddPlayer(Player{ConnectionHandle: "a"})
	base.AddPlayer(Player{ConnectionHandle: "b"})

	if base.AddPlayer(Player{ConnectionHandle: "c"}) {
		t.Fatal("Adding to a full room should fail")
	}
	if base.PlayerCount() != 2 {
		t.Errorf("Failed add must not mutate the player list, got %d players", base.PlayerCount())
	}
}

func TestBase_ReadyNeverFiresTwice(t *testing.T) {
	base := NewBase(2, 2)
	base.AddPlayer(Player{ConnectionHandle: "a"})
	base.AddPlayer(Player{ConnectionHandle: "b"})
	if !base.Start() {
		t.Fatal("Start from ready should succeed")
	}

	// A mid-game leave followed by a rejoin lands the count back on
	// minPlayers; the status must stay inProgress.
	base.RemovePlayer("b")
	base.AddPlayer(Player{ConnectionHandle: "c"})

	if base.Status() != StatusInProgress {
		t.Fatalf("Readiness must not re-fire after the first time, got %s", base.Status())
	}
}

func TestBase_RemovePlayerKeepsOrder(t *testing.T) {
	base := NewBase(2, 3)
	base.AddPlayer(Player{ConnectionHandle: "a"})
	base.AddPlayer(Player{ConnectionHandle: "b"})
	base.AddPlayer(Player{ConnectionHandle: "c"})

	base.RemovePlayer("b")

	players := base.Players()
	if len(players) != 2 || players[0].ConnectionHandle != "a" || players[1].ConnectionHandle != "c" {
		t.Errorf("Removal should preserve insertion order, got %v", players)
	}

	// Removing an absent handle is a no-op.
	base.RemovePlayer("missing")
	if base.PlayerCount() != 2 {
		t.Errorf("Removing an unknown handle must not mutate, got %d players", base.PlayerCount())
	}
}

func TestBase_StartRequiresReady(t *testing.T) {
	base := NewBase(2, 2)

	if base.Start() {
		t.Fatal("Start from notReady should fail")
	}

	base.AddPlayer(Player{ConnectionHandle: "a"})
	base.AddPlayer(Player{ConnectionHandle: "b"})
	if !base.Start() {
		t.Fatal("Start from ready should succeed")
	}
	if base.Status() != StatusInProgress {
		t.Fatalf("Expected inProgress after start, got %s", base.Status())
	}

	if base.Start() {
		t.Fatal("Start from inProgress should fail")
	}
}

func TestBase_Opponent(t *testing.T) {
	base := NewBase(2, 2)
	base.AddPlayer(Player{ConnectionHandle: "a"})
	base.AddPlayer(Player{ConnectionHandle: "b"})

	opp, ok := base.Opponent("a")
	if !ok || opp.ConnectionHandle != "b" {
		t.Errorf("Expected opponent b, got %v (ok=%v)", opp, ok)
	}

	base.RemovePlayer("b")
	if _, ok := base.Opponent("a"); ok {
		t.Error("A lone player should have no opponent")
	}
}

func TestManager_CreateGetRemove(t *testing.T) {
	manager := NewManager(newStub)

	st := manager.Create("room1")
	if st == nil {
		t.Fatal("Create should return the new room")
	}

	retrieved, exists := manager.Get("room1")
	if !exists || retrieved != st {
		t.Fatal("Get should return the created instance")
	}

	// Create on an existing id must not replace the instance.
	again := manager.Create("room1")
	if again != st {
		t.Fatal("Create on an existing id should keep the original instance")
	}

	manager.Remove("room1")
	if _, exists := manager.Get("room1"); exists {
		t.Fatal("Get should not find a removed room")
	}
	if manager.Count() != 0 {
		t.Errorf("Expected 0 rooms, got %d", manager.Count())
	}
}
