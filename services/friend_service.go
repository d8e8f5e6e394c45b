// services/friend_service.go
package services

import (
	"errors"

	"github.com/wfunc/xoserver/models"
	"github.com/wfunc/xoserver/persistence"
)

var ErrSelfFriendship = errors.New("cannot befriend yourself")

// Notifier pushes social events to the receiver's live connections.
type Notifier interface {
	NotifyFriendRequest(receiverID int64, request *models.Friendship)
}

// FriendService manages the friendship graph: requests, responses and
// friend resolution.
type FriendService struct {
	db       persistence.Database
	notifier Notifier
}

func NewFriendService(db persistence.Database) *FriendService {
	return &FriendService{db: db}
}

// SetNotifier attaches a live-notification sink. A nil notifier leaves
// requests discoverable through polling only.
func (s *FriendService) SetNotifier(n Notifier) {
	s.notifier = n
}

// CreateRequest sends a friend request to the named user. The receiver
// is notified over any live connection they hold.
func (s *FriendService) CreateRequest(senderID int64, receiverUsername string) (*models.Friendship, error) {
	receiver, err := s.db.GetUserByUsername(receiverUsername)
	if err != nil {
		return nil, err
	}
	receiverID := int64(receiver.ID)
	if receiverID == senderID {
		return nil, ErrSelfFriendship
	}

	if err := s.db.CreateFriendship(senderID, receiverID); err != nil {
		return nil, err
	}

	request := &models.Friendship{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.FriendshipPending,
	}
	if s.notifier != nil {
		s.notifier.NotifyFriendRequest(receiverID, request)
	}
	return request, nil
}

// Accept marks the request from senderID to receiverID as accepted.
func (s *FriendService) Accept(receiverID, senderID int64) error {
	return s.db.UpdateFriendshipStatus(senderID, receiverID, models.FriendshipAccepted)
}

// Reject blocks the request from senderID to receiverID.
func (s *FriendService) Reject(receiverID, senderID int64) error {
	return s.db.UpdateFriendshipStatus(senderID, receiverID, models.FriendshipBlocked)
}

// PendingRequests lists open requests addressed to the user.
func (s *FriendService) PendingRequests(receiverID int64) ([]models.Friendship, error) {
	edges, err := s.db.PendingFriendships(receiverID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Friendship, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.ToFriendship())
	}
	return out, nil
}

// Friends resolves every accepted friendship touching the user to the
// account on the far side of the edge.
func (s *FriendService) Friends(userID int64) ([]*models.User, error) {
	edges, err := s.db.AcceptedFriendships(userID)
	if err != nil {
		return nil, err
	}

	friends := make([]*models.User, 0, len(edges))
	for _, e := range edges {
		friendID := e.SenderID
		if friendID == userID {
			friendID = e.ReceiverID
		}
		friend, err := s.db.GetUserByID(friendID)
		if err != nil {
			if errors.Is(err, persistence.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		friends = append(friends, friend.ToUser())
	}
	return friends, nil
}
