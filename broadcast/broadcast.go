// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/xoserver/group"
)

var ErrRoomNotFound = errors.New("room not found")

// Broadcaster fans a packet out to every member of a room's group.
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
}

// GroupBroadcaster broadcasts over the grouping registry's membership.
type GroupBroadcaster struct {
	groups *group.Registry
}

func NewGroupBroadcaster(groups *group.Registry) *GroupBroadcaster {
	return &GroupBroadcaster{groups: groups}
}

func (b *GroupBroadcaster) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	members := b.groups.Members(roomID)
	if members == nil {
		return ErrRoomNotFound
	}

	for _, s := range members {
		if err := s.Send(msgID, data); err != nil {
			// A dead member is the read loop's problem; keep sending.
			continue
		}
	}
	return nil
}
