// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormUser is the persisted account record.
type GormUser struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;not null"`
	DisplayName  string `gorm:"size:50"`
	PasswordHash string `gorm:"not null"`
	ImageURL     string
	DiscordTag   string
}

// GormFriendship is one persisted friendship edge. The composite key
// makes an edge unique per direction; sender and receiver must differ.
type GormFriendship struct {
	SenderID   int64  `gorm:"primaryKey;check:sender_id <> receiver_id"`
	ReceiverID int64  `gorm:"primaryKey"`
	Status     string `gorm:"not null;default:pending"`
}

// ToUser converts the record to its wire shape, dropping the hash.
func (u *GormUser) ToUser() *User {
	return &User{
		ID:          int64(u.ID),
		Username:    u.Username,
		DisplayName: u.DisplayName,
		ImageURL:    u.ImageURL,
		DiscordTag:  u.DiscordTag,
		CreatedAt:   u.CreatedAt,
	}
}

// ToFriendship converts the record to its wire shape.
func (f *GormFriendship) ToFriendship() Friendship {
	return Friendship{
		SenderID:   f.SenderID,
		ReceiverID: f.ReceiverID,
		Status:     f.Status,
	}
}
