// room/room.go
package room

// Status is the abstract room lifecycle. It only moves forward, except
// for the explicit reset transition done -> ready.
type Status string

const (
	StatusNotReady   Status = "notReady"
	StatusReady      Status = "ready"
	StatusInProgress Status = "inProgress"
	StatusDone       Status = "done"
)

// Player is a pure value: an opaque connection handle plus an optional
// display name. Identity is the handle, unique within a room.
type Player struct {
	ConnectionHandle string `json:"connectionHandle"`
	Nickname         string `json:"nickname,omitempty"`
}

// Snapshot is the serialized room state broadcast to every participant.
type Snapshot struct {
	Players   []Player    `json:"players"`
	Status    Status      `json:"status"`
	GameState interface{} `json:"gameState"`
	Result    string      `json:"result,omitempty"`
}

// Base carries the game-independent part of a room: the ordered player
// list, the lifecycle status and the min/max player bounds. Concrete
// games embed it and layer their payload on top.
//
// Base is not safe for concurrent use; the embedding game serializes
// access (see xo.Room).
type Base struct {
	players    []Player
	status     Status
	minPlayers int
	maxPlayers int
}

func NewBase(minPlayers, maxPlayers int) Base {
	return Base{
		status:     StatusNotReady,
		minPlayers: minPlayers,
		maxPlayers: maxPlayers,
	}
}

// Joinable reports whether another player fits.
func (b *Base) Joinable() bool {
	return len(b.players) < b.maxPlayers
}

// AddPlayer appends the player in insertion order and re-evaluates
// readiness. Fails without mutation when the room is full.
func (b *Base) AddPlayer(p Player) bool {
	if !b.Joinable() {
		return false
	}
	b.players = append(b.players, p)
	b.refreshReady()
	return true
}

// RemovePlayer drops any player with the handle, then re-evaluates
// readiness. Removal mid-game does not roll back an inProgress or done
// status; that asymmetry is deliberate.
func (b *Base) RemovePlayer(connID string) {
	filtered := b.players[:0]
	for _, p := range b.players {
		if p.ConnectionHandle != connID {
			filtered = append(filtered, p)
		}
	}
	b.players = filtered
	b.refreshReady()
}

// refreshReady promotes notReady -> ready when the player count reaches
// exactly minPlayers. It fires once: later additions, removals or
// rejoins never re-derive readiness for a room past notReady.
func (b *Base) refreshReady() {
	if b.status == StatusNotReady && len(b.players) == b.minPlayers {
		b.status = StatusReady
	}
}

// Start transitions ready -> inProgress. Concrete games wrap this with
// their own initialization but keep the same precondition.
func (b *Base) Start() bool {
	if b.status != StatusReady {
		return false
	}
	b.status = StatusInProgress
	return true
}

func (b *Base) Status() Status {
	return b.status
}

// SetStatus is for embedding games driving their own transitions.
func (b *Base) SetStatus(status Status) {
	b.status = status
}

// Players returns a copy of the player list in insertion order.
func (b *Base) Players() []Player {
	out := make([]Player, len(b.players))
	copy(out, b.players)
	return out
}

func (b *Base) PlayerCount() int {
	return len(b.players)
}

// Opponent returns the first connected player with a different handle.
func (b *Base) Opponent(connID string) (Player, bool) {
	for _, p := range b.players {
		if p.ConnectionHandle != connID {
			return p, true
		}
	}
	return Player{}, false
}

// HasPlayer reports whether the handle is currently connected.
func (b *Base) HasPlayer(connID string) bool {
	for _, p := range b.players {
		if p.ConnectionHandle == connID {
			return true
		}
	}
	return false
}
