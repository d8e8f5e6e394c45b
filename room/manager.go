// room/manager.go
package room

import "sync"

// Factory builds a fresh room state for a new group.
type Factory func() State

// Manager is the room registry: one concrete State per room identifier,
// exclusively owned here. Entries are created and destroyed strictly by
// the grouping primitive's lifecycle notifications, never by command
// handlers.
type Manager struct {
	rooms   map[string]State
	factory Factory
	mutex   sync.RWMutex
}

func NewManager(factory Factory) *Manager {
	return &Manager{
		rooms:   make(map[string]State),
		factory: factory,
	}
}

// Create instantiates and stores a room for the identifier. An existing
// entry is left untouched; no two identifiers ever alias one instance.
func (m *Manager) Create(id string) State {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if existing, exists := m.rooms[id]; exists {
		return existing
	}
	st := m.factory()
	m.rooms[id] = st
	return st
}

// Remove discards the room for the identifier.
func (m *Manager) Remove(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.rooms, id)
}

// Get returns the room for the identifier, if it exists.
func (m *Manager) Get(id string) (State, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	st, exists := m.rooms[id]
	return st, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}
