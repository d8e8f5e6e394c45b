package room

// State is the contract every game room implements. The registry stores
// rooms behind this interface; the router never sees a concrete game.
//
// All operations report success with a bare bool: a false return means
// the call did not mutate the room (precondition not met, illegal move,
// full room). Reasons are deliberately not surfaced here.
type State interface {
	// AddPlayer admits a player, re-evaluating readiness. Fails without
	// mutation when the room is full.
	AddPlayer(p Player) bool

	// RemovePlayer drops any player with the given connection handle.
	// A no-op if absent. Never demotes an inProgress or done room.
	RemovePlayer(connID string)

	// Start transitions ready -> inProgress and performs game-specific
	// initialization. Fails from any other status.
	Start() bool

	// Reset returns a finished room to ready with a cleared payload,
	// keeping the player list and role assignments.
	Reset() bool

	// Move applies a game-specific move for the given sender. The payload
	// shape is owned by the game. Always fails when not inProgress.
	Move(data []byte, connID string) bool

	// IsFinished re-derives completion and records the outcome.
	IsFinished() bool

	Status() Status
	Players() []Player

	// Snapshot returns a read-only copy of the full state for broadcast.
	Snapshot() Snapshot
}
