package xo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/xoserver/room"
)

func playerA() room.Player { return room.Player{ConnectionHandle: "conn-a", Nickname: "alice"} }
func playerB() room.Player { return room.Player{ConnectionHandle: "conn-b", Nickname: "bob"} }

// startedRoom returns a room with two players admitted and the game started.
func startedRoom(t *testing.T) *Room {
	t.Helper()
	r := NewRoom()
	require.True(t, r.AddPlayer(playerA()))
	require.True(t, r.AddPlayer(playerB()))
	require.True(t, r.Start())
	return r
}

// opponentOf returns the other handle of the fixed two-player pair.
func opponentOf(handle string) string {
	if handle == "conn-a" {
		return "conn-b"
	}
	return "conn-a"
}

// play walks the slots in order, alternating from whoever holds the turn.
// Odd positions (first, third, ...) go to the starter's mark.
func play(t *testing.T, r *Room, slots ...Slot) {
	t.Helper()
	for _, slot := range slots {
		holder := r.CurrentTurn()
		require.True(t, r.MoveSlot(slot, holder), "move on %s by %s should succeed", slot, holder)
	}
}

func TestRolesFollowJoinOrder(t *testing.T) {
	r := NewRoom()

	require.True(t, r.AddPlayer(playerA()))
	require.True(t, r.AddPlayer(playerB()))

	assert.Equal(t, "conn-a", r.PlayerX())
	assert.Equal(t, "conn-b", r.PlayerO())
	assert.Equal(t, room.StatusReady, r.Status())
}

func TestRolesSurviveRemoval(t *testing.T) {
	r := NewRoom()
	r.AddPlayer(playerA())
	r.AddPlayer(playerB())

	r.RemovePlayer("conn-a")

	assert.Equal(t, "conn-a", r.PlayerX(), "roles are never reassigned")
	assert.Equal(t, "conn-b", r.PlayerO())
}

func TestThirdPlayerRejected(t *testing.T) {
	r := NewRoom()
	r.AddPlayer(playerA())
	r.AddPlayer(playerB())

	assert.False(t, r.AddPlayer(room.Player{ConnectionHandle: "conn-c"}))
	assert.Len(t, r.Players(), 2)
}

func TestStartPicksAConnectedPlayer(t *testing.T) {
	r := startedRoom(t)

	assert.Equal(t, room.StatusInProgress, r.Status())
	assert.Contains(t, []string{"conn-a", "conn-b"}, r.CurrentTurn())
}

func TestStartRequiresReady(t *testing.T) {
	r := NewRoom()
	assert.False(t, r.Start(), "start with no players should fail")

	r.AddPlayer(playerA())
	assert.False(t, r.Start(), "start with one player should fail")

	r.AddPlayer(playerB())
	assert.True(t, r.Start())
	assert.False(t, r.Start(), "start while inProgress should fail")
}

// Scenario A: move by the non-turn-holder is a silent no-op.
func TestMoveByNonTurnHolder(t *testing.T) {
	r := startedRoom(t)
	intruder := opponentOf(r.CurrentTurn())

	assert.False(t, r.MoveSlot("1-1", intruder))
	assert.Equal(t, Mark(""), r.SlotMark("1-1"), "board must be unchanged")
	assert.NotEqual(t, intruder, r.CurrentTurn(), "turn must not flip")
}

func TestMoveBeforeStart(t *testing.T) {
	r := NewRoom()
	r.AddPlayer(playerA())
	r.AddPlayer(playerB())

	assert.False(t, r.MoveSlot("0-0", "conn-a"), "move while ready should fail")
}

func TestMoveOnOccupiedSlot(t *testing.T) {
	r := startedRoom(t)
	first := r.CurrentTurn()
	second := opponentOf(first)

	require.True(t, r.MoveSlot("1-1", first))
	assert.False(t, r.MoveSlot("1-1", second), "occupied slot must reject the move")
	assert.Equal(t, second, r.CurrentTurn(), "failed move must not flip the turn")
}

func TestMoveFlipsTurnAndWritesOnce(t *testing.T) {
	r := startedRoom(t)
	first := r.CurrentTurn()

	require.True(t, r.MoveSlot("0-0", first))

	assert.NotEqual(t, Mark(""), r.SlotMark("0-0"))
	assert.Equal(t, opponentOf(first), r.CurrentTurn())
}

func TestMoveRejectsUnknownRole(t *testing.T) {
	r := startedRoom(t)

	// Swap the waiting player for a role-less late joiner: both role
	// slots stay pinned to the original pair, so once the turn reaches
	// the newcomer their move trips the role guard.
	holder := r.CurrentTurn()
	r.RemovePlayer(opponentOf(holder))
	require.True(t, r.AddPlayer(room.Player{ConnectionHandle: "conn-c"}))

	require.True(t, r.MoveSlot("0-0", holder))
	require.Equal(t, "conn-c", r.CurrentTurn())

	assert.False(t, r.MoveSlot("1-1", "conn-c"))
	assert.Equal(t, Mark(""), r.SlotMark("1-1"))
}

// Scenario B: X completes the top row on alternating legal turns.
func TestTopRowWin(t *testing.T) {
	r := startedRoom(t)

	// Whoever starts takes the top row; the opponent plays filler moves.
	play(t, r, "0-0", "1-0", "0-1", "1-1", "0-2")

	winner := r.SlotMark("0-0")
	assert.Equal(t, room.StatusDone, r.Status())
	assert.Equal(t, string(winner), r.Result())
}

func TestEveryWinningTriple(t *testing.T) {
	triples := [][3]Slot{
		{"0-0", "0-1", "0-2"},
		{"1-0", "1-1", "1-2"},
		{"2-0", "2-1", "2-2"},
		{"0-0", "1-0", "2-0"},
		{"0-1", "1-1", "2-1"},
		{"0-2", "1-2", "2-2"},
		{"0-0", "1-1", "2-2"},
		{"0-2", "1-1", "2-0"},
	}

	// Filler slots for the opponent: for each triple, three slots that do
	// not complete any line of their own.
	fillers := [][3]Slot{
		{"1-0", "1-1", "2-0"},
		{"0-0", "0-1", "2-2"},
		{"0-0", "1-1", "0-2"},
		{"0-1", "1-1", "0-2"},
		{"0-0", "1-0", "2-2"},
		{"0-0", "1-1", "1-0"},
		{"0-1", "1-0", "0-2"},
		{"0-0", "0-1", "1-0"},
	}

	for i, triple := range triples {
		r := startedRoom(t)
		winner := r.CurrentTurn()
		loser := opponentOf(winner)

		for j := 0; j < 3; j++ {
			require.True(t, r.MoveSlot(triple[j], winner), "triple %d move %d", i, j)
			if j < 2 {
				require.True(t, r.MoveSlot(fillers[i][j], loser), "triple %d filler %d", i, j)
			}
		}

		winnerMark := r.SlotMark(triple[0])
		assert.Equal(t, room.StatusDone, r.Status(), "triple %d should finish the game", i)
		assert.Equal(t, string(winnerMark), r.Result(), "triple %d winner mark", i)
	}
}

func TestEightFilledSlotsNoLineIsNotFinished(t *testing.T) {
	r := startedRoom(t)

	// Same layout as the draw scenario, stopping one move short.
	starter := r.CurrentTurn()
	other := opponentOf(starter)
	moves := []struct {
		slot Slot
		by   string
	}{
		{"0-0", starter}, {"0-1", other},
		{"1-1", starter}, {"0-2", other},
		{"2-0", starter}, {"1-0", other},
		{"1-2", starter}, {"2-2", other},
	}
	for _, m := range moves {
		require.True(t, r.MoveSlot(m.slot, m.by))
	}

	assert.False(t, r.IsFinished())
	assert.Equal(t, room.StatusInProgress, r.Status())
	assert.Empty(t, r.Result())
}

// Scenario C: all 9 slots filled with no completed line.
func TestDraw(t *testing.T) {
	r := startedRoom(t)

	// starter: 0-0,1-1,2-0,1-2,2-1 / other: 0-1,0-2,1-0,2-2
	starter := r.CurrentTurn()
	other := opponentOf(starter)
	moves := []struct {
		slot Slot
		by   string
	}{
		{"0-0", starter}, {"0-1", other},
		{"1-1", starter}, {"0-2", other},
		{"2-0", starter}, {"1-0", other},
		{"1-2", starter}, {"2-2", other},
		{"2-1", starter},
	}
	for _, m := range moves {
		require.True(t, r.MoveSlot(m.slot, m.by))
	}

	assert.Equal(t, room.StatusDone, r.Status())
	assert.Equal(t, ResultDraw, r.Result())
}

// Scenario D: a done room rejects moves regardless of slot or sender.
func TestMoveRejectedWhenDone(t *testing.T) {
	r := startedRoom(t)
	play(t, r, "0-0", "1-0", "0-1", "1-1", "0-2")
	require.Equal(t, room.StatusDone, r.Status())

	for _, handle := range []string{"conn-a", "conn-b"} {
		assert.False(t, r.MoveSlot("2-2", handle))
	}
	assert.Equal(t, Mark(""), r.SlotMark("2-2"))
}

func TestMoveRequiresInProgress(t *testing.T) {
	// Companion to TestMoveRejectedWhenDone: every non-inProgress status
	// blocks a move, so the duplicated done/in-progress guards behave
	// identically from the outside.
	r := NewRoom()
	assert.False(t, r.MoveSlot("0-0", "conn-a"), "notReady must reject")

	r.AddPlayer(playerA())
	r.AddPlayer(playerB())
	assert.False(t, r.MoveSlot("0-0", "conn-a"), "ready must reject")
}

func TestReset(t *testing.T) {
	r := startedRoom(t)

	assert.False(t, r.Reset(), "reset while inProgress should fail")

	play(t, r, "0-0", "1-0", "0-1", "1-1", "0-2")
	require.Equal(t, room.StatusDone, r.Status())

	require.True(t, r.Reset())
	assert.Equal(t, room.StatusReady, r.Status())
	assert.Empty(t, r.Result())
	assert.Empty(t, r.CurrentTurn())
	for _, slot := range SlotNames {
		assert.Equal(t, Mark(""), r.SlotMark(slot))
	}
	assert.Equal(t, "conn-a", r.PlayerX(), "reset keeps roles")
	assert.Equal(t, "conn-b", r.PlayerO())
	assert.Len(t, r.Players(), 2, "reset keeps the player list")

	assert.True(t, r.Start(), "a reset room can start again")
}

func TestTurnReassignedWhenHolderLeaves(t *testing.T) {
	r := startedRoom(t)
	holder := r.CurrentTurn()

	r.RemovePlayer(holder)

	assert.Equal(t, opponentOf(holder), r.CurrentTurn())

	r.RemovePlayer(opponentOf(holder))
	assert.Empty(t, r.CurrentTurn(), "an empty room holds no turn")
}

func TestMovePayload(t *testing.T) {
	r := startedRoom(t)
	holder := r.CurrentTurn()

	assert.False(t, r.Move([]byte(`{`), holder), "malformed payload")
	assert.False(t, r.Move([]byte(`{"slot":"3-3"}`), holder), "unknown slot name")
	assert.True(t, r.Move([]byte(`{"slot":"1-1"}`), holder))
	assert.NotEqual(t, Mark(""), r.SlotMark("1-1"))
}

func TestSnapshotShape(t *testing.T) {
	r := startedRoom(t)
	holder := r.CurrentTurn()
	require.True(t, r.MoveSlot("1-1", holder))

	snap := r.Snapshot()

	assert.Len(t, snap.Players, 2)
	assert.Equal(t, room.StatusInProgress, snap.Status)
	assert.Empty(t, snap.Result)

	gs, ok := snap.GameState.(GameState)
	require.True(t, ok)
	assert.Len(t, gs.Slots, 9, "all 9 slots are always present")
	require.NotNil(t, gs.Slots["1-1"])
	assert.Nil(t, gs.Slots["0-0"])
	require.NotNil(t, gs.CurrentTurn)
	assert.Equal(t, opponentOf(holder), gs.CurrentTurn.ConnectionHandle)
}
