// models/models.go
package models

import "time"

// FriendshipStatus values. A request is pending until the receiver
// accepts or blocks it.
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipBlocked  = "blocked"
)

// User is the wire shape of an account. The password hash never leaves
// the persistence layer.
type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName,omitempty"`
	ImageURL    string    `json:"imageURL,omitempty"`
	DiscordTag  string    `json:"discordTag,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Friendship is one edge of the friendship graph, identified by the
// (sender, receiver) pair.
type Friendship struct {
	SenderID   int64  `json:"senderID"`
	ReceiverID int64  `json:"receiverID"`
	Status     string `json:"status"`
}

// Token wraps an issued login token.
type Token struct {
	Token string `json:"token"`
}
