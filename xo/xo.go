// xo/xo.go
package xo

import (
	"encoding/json"
	"math/rand"
	"sync"

	"github.com/wfunc/xoserver/room"
)

// Slot is one of the 9 fixed board positions, keyed "row-col".
type Slot string

// Mark is what occupies a slot once played.
type Mark string

const (
	MarkX Mark = "X"
	MarkO Mark = "O"
)

// Result values. The empty string means no result yet; a finished game
// carries "X", "O" or ResultDraw.
const ResultDraw = "DRAW"

// SlotNames lists the 9 board positions in row-major order.
var SlotNames = [9]Slot{
	"0-0", "0-1", "0-2",
	"1-0", "1-1", "1-2",
	"2-0", "2-1", "2-2",
}

// winningTriples are the 3 rows, 3 columns and 2 diagonals.
var winningTriples = [8][3]Slot{
	{"0-0", "0-1", "0-2"},
	{"1-0", "1-1", "1-2"},
	{"2-0", "2-1", "2-2"},

	{"0-0", "1-0", "2-0"},
	{"0-1", "1-1", "2-1"},
	{"0-2", "1-2", "2-2"},

	{"0-0", "1-1", "2-2"},
	{"0-2", "1-1", "2-0"},
}

var validSlots = func() map[Slot]struct{} {
	m := make(map[Slot]struct{}, len(SlotNames))
	for _, s := range SlotNames {
		m[s] = struct{}{}
	}
	return m
}()

// GameState is the game-specific part of the room snapshot.
type GameState struct {
	Slots       map[Slot]*Mark `json:"slots"`
	CurrentTurn *room.Player   `json:"currentTurn"`
}

// movePayload is the body of a move command.
type movePayload struct {
	Slot Slot `json:"slot"`
}

// Room is a two-player tic-tac-toe game on top of room.Base.
//
// The first joiner plays X, the second O; roles are fixed for the room's
// lifetime and survive removals. The turn is held as a connection handle
// rather than a pointer into the player list, so a mid-game disconnect
// can never leave it dangling.
//
// All exported methods hold the room's own mutex: two commands for the
// same room are serialized here no matter how many connection goroutines
// issue them.
type Room struct {
	base    room.Base
	slots   map[Slot]Mark // only occupied slots are present
	turn    string        // connection handle, empty when unset
	playerX string
	playerO string
	result  string
	mu      sync.Mutex
}

var _ room.State = (*Room)(nil)

func NewRoom() *Room {
	return &Room{
		base:  room.NewBase(2, 2),
		slots: make(map[Slot]Mark, len(SlotNames)),
	}
}

// AddPlayer admits the player and pins their role: X if unset, else O.
func (r *Room) AddPlayer(p room.Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.base.AddPlayer(p) {
		return false
	}
	if r.playerX == "" {
		r.playerX = p.ConnectionHandle
	} else if r.playerO == "" {
		r.playerO = p.ConnectionHandle
	}
	return true
}

// RemovePlayer drops the player. Roles stay assigned, but a turn held by
// the leaver moves to the remaining player (or clears).
func (r *Room) RemovePlayer(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.base.RemovePlayer(connID)
	if r.turn == connID {
		if opp, ok := r.base.Opponent(connID); ok {
			r.turn = opp.ConnectionHandle
		} else {
			r.turn = ""
		}
	}
}

// Start requires ready and picks the first turn uniformly at random
// among the connected players.
func (r *Room) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.base.Start() {
		return false
	}
	players := r.base.Players()
	r.turn = players[rand.Intn(len(players))].ConnectionHandle
	return true
}

// Move applies a {"slot": "r-c"} payload for the sender.
func (r *Room) Move(data []byte, connID string) bool {
	var payload movePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return false
	}
	if _, ok := validSlots[payload.Slot]; !ok {
		return false
	}
	return r.MoveSlot(payload.Slot, connID)
}

// MoveSlot plays the given slot for the sender.
func (r *Room) MoveSlot(slot Slot, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A done room rejects moves outright, before the general
	// in-progress check.
	if r.base.Status() == room.StatusDone {
		return false
	}
	if r.base.Status() != room.StatusInProgress {
		return false
	}
	if r.turn != connID {
		return false
	}
	if _, occupied := r.slots[slot]; occupied {
		return false
	}

	var mark Mark
	switch connID {
	case r.playerX:
		mark = MarkX
	case r.playerO:
		mark = MarkO
	default:
		// Unreachable while roles are assigned at join time.
		return false
	}

	r.slots[slot] = mark
	if opp, ok := r.base.Opponent(connID); ok {
		r.turn = opp.ConnectionHandle
	} else {
		r.turn = ""
	}
	r.finishLocked()
	return true
}

// IsFinished re-derives completion and records the outcome.
func (r *Room) IsFinished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finishLocked()
}

func (r *Room) finishLocked() bool {
	if st := r.base.Status(); st == room.StatusNotReady || st == room.StatusReady {
		return false
	}

	for _, triple := range winningTriples {
		mark := r.slots[triple[0]]
		if mark != "" && r.slots[triple[1]] == mark && r.slots[triple[2]] == mark {
			r.result = string(mark)
			r.base.SetStatus(room.StatusDone)
			return true
		}
	}

	if len(r.slots) < len(SlotNames) {
		return false
	}

	r.base.SetStatus(room.StatusDone)
	r.result = ResultDraw
	return true
}

// Reset returns a done room to ready: slots, result and turn cleared,
// roles and player list untouched.
func (r *Room) Reset() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.base.Status() != room.StatusDone {
		return false
	}
	r.slots = make(map[Slot]Mark, len(SlotNames))
	r.result = ""
	r.turn = ""
	r.base.SetStatus(room.StatusReady)
	return true
}

func (r *Room) Status() room.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.base.Status()
}

func (r *Room) Players() []room.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.base.Players()
}

// CurrentTurn returns the handle holding the turn, empty when unset.
func (r *Room) CurrentTurn() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.turn
}

func (r *Room) PlayerX() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerX
}

func (r *Room) PlayerO() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerO
}

func (r *Room) Result() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// SlotMark returns the mark in a slot, empty when unoccupied.
func (r *Room) SlotMark(slot Slot) Mark {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots[slot]
}

// Snapshot serializes the full room: all 9 slots (nil when empty), the
// current turn as a player value, and the result once the game is done.
func (r *Room) Snapshot() room.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots := make(map[Slot]*Mark, len(SlotNames))
	for _, name := range SlotNames {
		if mark, occupied := r.slots[name]; occupied {
			m := mark
			slots[name] = &m
		} else {
			slots[name] = nil
		}
	}

	var turn *room.Player
	if r.turn != "" {
		for _, p := range r.base.Players() {
			if p.ConnectionHandle == r.turn {
				player := p
				turn = &player
				break
			}
		}
	}

	return room.Snapshot{
		Players: r.base.Players(),
		Status:  r.base.Status(),
		GameState: GameState{
			Slots:       slots,
			CurrentTurn: turn,
		},
		Result: r.result,
	}
}
