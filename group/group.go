// group/group.go
package group

import (
	"sync"

	"github.com/wfunc/xoserver/session"
)

// Hooks receives group lifecycle notifications. The registry is the single
// source of truth for which groups and members exist: consumers react to
// these callbacks instead of mutating their own bookkeeping directly.
//
// For one Join/Leave call the ordering is fixed: created before joined,
// left before destroyed.
type Hooks interface {
	OnGroupCreated(groupID string)
	OnGroupDestroyed(groupID string)
	OnMemberJoined(groupID string, sess *session.Session)
	OnMemberLeft(groupID string, sess *session.Session)
}

// Registry clusters sessions into named groups, the transport-level
// primitive rooms are bound to. A group springs into existence on its
// first join and is destroyed when its last member leaves.
type Registry struct {
	groups map[string]map[string]*session.Session // groupID -> sessionID -> session
	hooks  Hooks
	mutex  sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		groups: make(map[string]map[string]*session.Session),
	}
}

// SetHooks must be called before any Join; nil hooks disable notifications.
func (r *Registry) SetHooks(h Hooks) {
	r.hooks = h
}

// Join adds the session to the named group, creating the group if needed.
// Returns false if the session is already a member.
func (r *Registry) Join(groupID string, sess *session.Session) bool {
	r.mutex.Lock()
	members, exists := r.groups[groupID]
	if !exists {
		members = make(map[string]*session.Session)
		r.groups[groupID] = members
	}
	if _, already := members[sess.ID]; already {
		r.mutex.Unlock()
		return false
	}
	members[sess.ID] = sess
	sess.RoomID = groupID
	r.mutex.Unlock()

	// Hooks run outside the lock: they broadcast, which reads membership.
	if r.hooks != nil {
		if !exists {
			r.hooks.OnGroupCreated(groupID)
		}
		r.hooks.OnMemberJoined(groupID, sess)
	}
	return true
}

// Leave removes the session from the named group. The group is destroyed
// once its last member is gone.
func (r *Registry) Leave(groupID string, sess *session.Session) bool {
	r.mutex.Lock()
	members, exists := r.groups[groupID]
	if !exists {
		r.mutex.Unlock()
		return false
	}
	if _, member := members[sess.ID]; !member {
		r.mutex.Unlock()
		return false
	}
	delete(members, sess.ID)
	if sess.RoomID == groupID {
		sess.RoomID = ""
	}
	destroyed := len(members) == 0
	if destroyed {
		delete(r.groups, groupID)
	}
	r.mutex.Unlock()

	if r.hooks != nil {
		r.hooks.OnMemberLeft(groupID, sess)
		if destroyed {
			r.hooks.OnGroupDestroyed(groupID)
		}
	}
	return true
}

// Members returns a snapshot of the group's sessions.
func (r *Registry) Members(groupID string) []*session.Session {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	members, exists := r.groups[groupID]
	if !exists {
		return nil
	}
	sessions := make([]*session.Session, 0, len(members))
	for _, s := range members {
		sessions = append(sessions, s)
	}
	return sessions
}

func (r *Registry) Contains(groupID, sessionID string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	members, exists := r.groups[groupID]
	if !exists {
		return false
	}
	_, member := members[sessionID]
	return member
}

func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.groups)
}
