// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/wfunc/xoserver/models"
)

// Database is the narrow store surface the rest of the system is allowed
// to touch: fetch and update user or friendship records. Query
// construction stays behind this interface.
type Database interface {
	CreateUser(user *models.GormUser) error
	GetUserByID(id int64) (*models.GormUser, error)
	GetUserByUsername(username string) (*models.GormUser, error)
	UpdateUserProfile(id int64, profile map[string]interface{}) error

	CreateFriendship(senderID, receiverID int64) error
	UpdateFriendshipStatus(senderID, receiverID int64, status string) error
	PendingFriendships(receiverID int64) ([]models.GormFriendship, error)
	AcceptedFriendships(userID int64) ([]models.GormFriendship, error)

	Close() error
}

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicate      = errors.New("record already exists")
)
