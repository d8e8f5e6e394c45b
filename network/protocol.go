package network

// Client -> server commands.
const (
	MsgTypeHeartbeat    = 1
	MsgTypeAuthenticate = 2
	MsgTypeCreateRoom   = 101
	MsgTypeJoinRoom     = 102
	MsgTypeLeaveRoom    = 103
	MsgTypeStartRoom    = 104
	MsgTypeResetRoom    = 105
	MsgTypeMove         = 201
)

// Server -> client broadcasts and notices.
const (
	MsgTypeRoomState    = 301
	MsgTypePlayerJoined = 302
	MsgTypePlayerLeft   = 303
	MsgTypeRoomStarted  = 304
	MsgTypeRoomReset    = 305
	MsgTypeBoardChanged = 306
	MsgTypeRejected     = 401
)

// Server -> client social notices.
const (
	MsgTypeFriendRequest = 501
)
