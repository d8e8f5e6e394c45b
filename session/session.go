// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/xoserver/network"
)

// Session wraps one live connection. Its ID is the opaque connection handle
// the rest of the system identifies a player by.
type Session struct {
	ID         string
	Conn       network.Connection
	UserID     int64  // 0 until the connection authenticates
	Nickname   string // display name, empty for anonymous sockets
	RoomID     string
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

// BindUser attaches a verified identity to the connection.
func (s *Session) BindUser(userID int64, nickname string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.UserID = userID
	s.Nickname = nickname
}

func (s *Session) DisplayName() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.Nickname
}

// User reports the identity bound to the connection, 0 for anonymous.
func (s *Session) User() int64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.UserID
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.Touch()
	return s.Conn.Send(msgID, data)
}

// Touch records activity for the idle sweep.
func (s *Session) Touch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.LastActive = time.Now()
}

func (s *Session) IdleSince() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.LastActive
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager tracks every live session by connection handle.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// ByUser returns every live session authenticated as the given user.
// One account may hold several connections.
func (m *Manager) ByUser(userID int64) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var out []*Session
	for _, s := range m.sessions {
		if s.User() == userID {
			out = append(out, s)
		}
	}
	return out
}

// IdleSessions returns the sessions with no activity since the cutoff.
func (m *Manager) IdleSessions(cutoff time.Time) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var idle []*Session
	for _, s := range m.sessions {
		if s.IdleSince().Before(cutoff) {
			idle = append(idle, s)
		}
	}
	return idle
}
