package session

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/xoserver/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct{}

func (m *MockConnection) Send(msgID uint16, data []byte) error { return nil }
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	_, exists = manager.Get(sessionID)
	if exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestSession_BindUser(t *testing.T) {
	sess := NewSession("test_session", &MockConnection{})

	if sess.UserID != 0 {
		t.Fatal("A fresh session should be anonymous")
	}

	sess.BindUser(42, "lolo")

	if sess.UserID != 42 {
		t.Errorf("Expected UserID 42, got %d", sess.UserID)
	}
	if sess.DisplayName() != "lolo" {
		t.Errorf("Expected nickname lolo, got %q", sess.DisplayName())
	}
}

func TestManager_ByUser(t *testing.T) {
	manager := NewManager()

	first := NewSession("first", &MockConnection{})
	second := NewSession("second", &MockConnection{})
	anon := NewSession("anon", &MockConnection{})
	first.BindUser(42, "lolo")
	second.BindUser(42, "lolo")

	manager.Add(first)
	manager.Add(second)
	manager.Add(anon)

	bound := manager.ByUser(42)
	if len(bound) != 2 {
		t.Fatalf("Expected 2 sessions for user 42, got %d", len(bound))
	}
	for _, s := range bound {
		if s.User() != 42 {
			t.Errorf("Session %s reported user %d", s.ID, s.User())
		}
	}

	if len(manager.ByUser(99)) != 0 {
		t.Error("Unknown users should have no sessions")
	}
}

func TestManager_IdleSessions(t *testing.T) {
	manager := NewManager()

	stale := NewSession("stale", &MockConnection{})
	stale.LastActive = time.Now().Add(-time.Hour)
	fresh := NewSession("fresh", &MockConnection{})

	manager.Add(stale)
	manager.Add(fresh)

	idle := manager.IdleSessions(time.Now().Add(-time.Minute))
	if len(idle) != 1 {
		t.Fatalf("Expected 1 idle session, got %d", len(idle))
	}
	if idle[0].ID != "stale" {
		t.Errorf("Expected the stale session to be reported, got %s", idle[0].ID)
	}
}
