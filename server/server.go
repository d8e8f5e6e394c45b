// server/server.go
package server

import (
	"encoding/json"
	"net/http"
	"net/rpc"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/xoserver/broadcast"
	"github.com/wfunc/xoserver/group"
	"github.com/wfunc/xoserver/logger"
	"github.com/wfunc/xoserver/models"
	"github.com/wfunc/xoserver/monitor"
	"github.com/wfunc/xoserver/network"
	"github.com/wfunc/xoserver/room"
	xorpc "github.com/wfunc/xoserver/rpc"
	"github.com/wfunc/xoserver/services"
	"github.com/wfunc/xoserver/session"
	"github.com/wfunc/xoserver/timer"
	"github.com/wfunc/xoserver/xo"
)

const sessionIdleTimeout = 5 * time.Minute

// GameServer owns the websocket endpoint and the event router: it turns
// grouping lifecycle notifications and player commands into room
// mutations and broadcasts.
type GameServer struct {
	addr           string
	rpcAddr        string
	upgrader       websocket.Upgrader
	sessionManager *session.Manager
	groups         *group.Registry
	roomManager    *room.Manager
	broadcaster    broadcast.Broadcaster
	authService    *services.AuthService
	friendService  *services.FriendService
	mon            *monitor.Monitor
	timers         *timer.Manager
	rpcServer      *xorpc.Server
	shutdownChan   chan struct{}

	// roomLocks serializes each room end to end: mutation, snapshot
	// capture and fan-out all happen under one lock, so every member
	// observes the same snapshot sequence.
	roomLocks map[string]*sync.Mutex
	locksMu   sync.Mutex
}

func NewGameServer(addr, rpcAddr string, auth *services.AuthService, friends *services.FriendService, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		addr:           addr,
		rpcAddr:        rpcAddr,
		sessionManager: session.NewManager(),
		groups:         group.NewRegistry(),
		roomManager:    room.NewManager(func() room.State { return xo.NewRoom() }),
		authService:    auth,
		friendService:  friends,
		mon:            mon,
		timers:         timer.NewManager(),
		shutdownChan:   make(chan struct{}),
		roomLocks:      make(map[string]*sync.Mutex),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.broadcaster = broadcast.NewGroupBroadcaster(s.groups)

	// The grouping registry's notifications drive room existence and
	// membership; nothing else creates or destroys rooms.
	s.groups.SetHooks(s)

	return s
}

func (s *GameServer) Start() error {
	if s.rpcAddr != "" {
		rpcServer, err := xorpc.NewServer(s.rpcAddr)
		if err != nil {
			return err
		}
		s.rpcServer = rpcServer
		rpc.Register(xorpc.NewAccountService(s.authService, s.friendService))
		go s.rpcServer.Start()
	}

	s.timers.AddTimer(sessionIdleTimeout, sessionIdleTimeout, s.sweepIdleSessions)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	if s.rpcServer != nil {
		s.rpcServer.Stop()
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(network.NewWSConnection(conn))
}

func (s *GameServer) handleConnection(conn network.Connection) {
	sess := session.NewSession(uuid.New().String(), conn)
	s.sessionManager.Add(sess)
	if s.mon != nil {
		s.mon.IncOnlinePlayers()
	}

	logger.Log.Infof("New connection from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())
		if sess.RoomID != "" {
			s.groups.Leave(sess.RoomID, sess)
		}
		s.sessionManager.Remove(sess.GetID())
		if s.mon != nil {
			s.mon.DecOnlinePlayers()
		}
		conn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := conn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	if s.mon != nil {
		s.mon.IncMessagesReceived()
		defer func() { s.mon.ObserveMessageLatency(time.Since(start)) }()
	}

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()
	case network.MsgTypeAuthenticate:
		s.handleAuthenticate(sess, packet)
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess)
	case network.MsgTypeStartRoom:
		s.handleStartRoom(sess, packet)
	case network.MsgTypeResetRoom:
		s.handleResetRoom(sess, packet)
	case network.MsgTypeMove:
		s.handleMove(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

// roomLock returns the serialization lock for a room id, creating it on
// first use.
func (s *GameServer) roomLock(roomID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lk, ok := s.roomLocks[roomID]
	if !ok {
		lk = &sync.Mutex{}
		s.roomLocks[roomID] = lk
	}
	return lk
}

func (s *GameServer) dropRoomLock(roomID string) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	delete(s.roomLocks, roomID)
}

// --- group.Hooks: lifecycle is the single source of truth ---

func (s *GameServer) OnGroupCreated(groupID string) {
	s.roomManager.Create(groupID)
	if s.mon != nil {
		s.mon.SetActiveRooms(s.roomManager.Count())
	}
	logger.Log.Infof("Room %s created", groupID)
}

func (s *GameServer) OnGroupDestroyed(groupID string) {
	s.roomManager.Remove(groupID)
	s.dropRoomLock(groupID)
	if s.mon != nil {
		s.mon.SetActiveRooms(s.roomManager.Count())
	}
	logger.Log.Infof("Room %s destroyed", groupID)
}

func (s *GameServer) OnMemberJoined(groupID string, sess *session.Session) {
	lk := s.roomLock(groupID)
	lk.Lock()

	st, exists := s.roomManager.Get(groupID)
	if !exists {
		lk.Unlock()
		return
	}

	player := room.Player{ConnectionHandle: sess.GetID(), Nickname: sess.DisplayName()}
	admitted := st.AddPlayer(player)
	if admitted {
		s.broadcastRoom(groupID, st, network.MsgTypePlayerJoined, sess.GetID())
	}
	lk.Unlock()

	if !admitted {
		// Full room: the group join is rolled back so membership and
		// room state cannot diverge. Only the joiner hears about it.
		// The rollback re-enters the lock via OnMemberLeft, hence the
		// release above.
		s.sendRejection(sess, groupID, "join")
		s.groups.Leave(groupID, sess)
	}
}

func (s *GameServer) OnMemberLeft(groupID string, sess *session.Session) {
	lk := s.roomLock(groupID)
	lk.Lock()
	defer lk.Unlock()

	st, exists := s.roomManager.Get(groupID)
	if !exists {
		return
	}

	// A kicked joiner was never admitted; nothing to broadcast then.
	wasMember := false
	for _, p := range st.Players() {
		if p.ConnectionHandle == sess.GetID() {
			wasMember = true
			break
		}
	}
	st.RemovePlayer(sess.GetID())
	if wasMember {
		s.broadcastRoom(groupID, st, network.MsgTypePlayerLeft, sess.GetID())
	}
}

// --- player commands ---

func (s *GameServer) handleAuthenticate(sess *session.Session, packet *network.Packet) {
	if s.authService == nil {
		return
	}
	var req struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	user, err := s.authService.ResolveUser(req.Token)
	if err != nil {
		logger.Log.Warnf("Session %s presented an invalid token", sess.GetID())
		return
	}

	nickname := user.DisplayName
	if nickname == "" {
		nickname = user.Username
	}
	sess.BindUser(user.ID, nickname)
	logger.Log.Infof("Session %s authenticated as user %d (%s)", sess.GetID(), user.ID, user.Username)
}

func (s *GameServer) handleCreateRoom(sess *session.Session) {
	if sess.RoomID != "" {
		s.sendRejection(sess, sess.RoomID, "create-room")
		return
	}

	roomID := uuid.New().String()
	s.groups.Join(roomID, sess)

	logger.Log.Infof("Session %s created room %s", sess.GetID(), roomID)

	// Only the requester learns the fresh identifier.
	resp, _ := json.Marshal(map[string]string{"room": roomID})
	sess.Send(network.MsgTypeCreateRoom, resp)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req struct {
		Room string `json:"room"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil || req.Room == "" {
		return
	}

	if sess.RoomID != "" {
		s.sendRejection(sess, req.Room, "join-room")
		return
	}

	s.groups.Join(req.Room, sess)
}

func (s *GameServer) handleLeaveRoom(sess *session.Session) {
	if sess.RoomID != "" {
		s.groups.Leave(sess.RoomID, sess)
	}
}

func (s *GameServer) handleStartRoom(sess *session.Session, packet *network.Packet) {
	roomID, ok := parseRoomID(packet.Data)
	if !ok {
		return
	}

	lk := s.roomLock(roomID)
	lk.Lock()
	st, member := s.memberRoom(roomID, sess)
	started := member && st.Start()
	if started {
		s.broadcastRoom(roomID, st, network.MsgTypeRoomStarted, sess.GetID())
	}
	lk.Unlock()

	if member && !started {
		s.sendRejection(sess, roomID, "start-room")
	}
}

func (s *GameServer) handleResetRoom(sess *session.Session, packet *network.Packet) {
	roomID, ok := parseRoomID(packet.Data)
	if !ok {
		return
	}

	lk := s.roomLock(roomID)
	lk.Lock()
	st, member := s.memberRoom(roomID, sess)
	reset := member && st.Reset()
	if reset {
		s.broadcastRoom(roomID, st, network.MsgTypeRoomReset, sess.GetID())
	}
	lk.Unlock()

	if member && !reset {
		s.sendRejection(sess, roomID, "reset-room")
	}
}

func (s *GameServer) handleMove(sess *session.Session, packet *network.Packet) {
	var req struct {
		Room string          `json:"room"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil || req.Room == "" {
		return
	}

	lk := s.roomLock(req.Room)
	lk.Lock()
	st, member := s.memberRoom(req.Room, sess)
	accepted := member && st.Move(req.Data, sess.GetID())
	if accepted {
		s.broadcastRoom(req.Room, st, network.MsgTypeBoardChanged, sess.GetID())
	}
	lk.Unlock()

	if !member {
		return
	}
	if s.mon != nil {
		s.mon.IncMovesPlayed(accepted)
	}
	if !accepted {
		s.sendRejection(sess, req.Room, "move")
	}
}

func parseRoomID(data []byte) (string, bool) {
	var req struct {
		Room string `json:"room"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.Room == "" {
		return "", false
	}
	return req.Room, true
}

// memberRoom resolves a room id for a command issued by sess; an
// unknown room or a sender outside the group is a no-op. The caller
// holds the room's lock.
func (s *GameServer) memberRoom(roomID string, sess *session.Session) (room.State, bool) {
	st, exists := s.roomManager.Get(roomID)
	if !exists || !s.groups.Contains(roomID, sess.GetID()) {
		return nil, false
	}
	return st, true
}

// broadcastRoom sends the full snapshot plus the discrete notice to the
// whole group. Everything is marshalled up front: every member sees the
// same pair or nobody sees anything. The caller holds the room's lock,
// so the snapshot order delivered to each member matches the order of
// successful mutations.
func (s *GameServer) broadcastRoom(roomID string, st room.State, noticeID uint16, actorHandle string) {
	snap, err := json.Marshal(st.Snapshot())
	if err != nil {
		logger.Log.Errorf("Failed to serialize room %s: %v", roomID, err)
		return
	}
	notice, err := json.Marshal(map[string]string{
		"room":             roomID,
		"connectionHandle": actorHandle,
	})
	if err != nil {
		logger.Log.Errorf("Failed to serialize notice for room %s: %v", roomID, err)
		return
	}

	s.broadcaster.BroadcastToRoom(roomID, network.MsgTypeRoomState, snap)
	s.broadcaster.BroadcastToRoom(roomID, noticeID, notice)
}

// sendRejection tells the command issuer, and only the issuer, that the
// operation changed nothing.
func (s *GameServer) sendRejection(sess *session.Session, roomID, command string) {
	data, _ := json.Marshal(map[string]string{
		"room":    roomID,
		"command": command,
	})
	sess.Send(network.MsgTypeRejected, data)
}

// NotifyFriendRequest pushes a new friend request to every live session
// authenticated as the receiver. Anonymous sockets hear nothing; the
// request stays visible through the account API either way.
func (s *GameServer) NotifyFriendRequest(receiverID int64, request *models.Friendship) {
	data, err := json.Marshal(request)
	if err != nil {
		logger.Log.Errorf("Failed to serialize friend request for user %d: %v", receiverID, err)
		return
	}
	for _, sess := range s.sessionManager.ByUser(receiverID) {
		sess.Send(network.MsgTypeFriendRequest, data)
	}
}

// sweepIdleSessions closes connections with no traffic for the idle
// window; the read loop then runs the normal leave path. A session
// busy inside a command handler is reaped on its next read, not
// mid-command.
func (s *GameServer) sweepIdleSessions() {
	cutoff := time.Now().Add(-sessionIdleTimeout)
	for _, sess := range s.sessionManager.IdleSessions(cutoff) {
		logger.Log.Infof("Closing idle session %s", sess.GetID())
		sess.Close()
	}
}
