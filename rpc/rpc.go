// rpc/rpc.go
package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/xoserver/logger"
	"github.com/wfunc/xoserver/models"
	"github.com/wfunc/xoserver/services"
)

// Server manages the RPC listener for internal tooling.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AccountService exposes account lookups over net/rpc. Methods follow
// the net/rpc signature rules: exported, pointer reply, error return.
type AccountService struct {
	authService   *services.AuthService
	friendService *services.FriendService
}

func NewAccountService(auth *services.AuthService, friends *services.FriendService) *AccountService {
	return &AccountService{authService: auth, friendService: friends}
}

type GetUserProfileArgs struct {
	Token string
}

type GetUserProfileReply struct {
	User    *models.User
	Friends []*models.User
}

func (a *AccountService) GetUserProfile(args *GetUserProfileArgs, reply *GetUserProfileReply) error {
	user, err := a.authService.ResolveUser(args.Token)
	if err != nil {
		return err
	}
	friends, err := a.friendService.Friends(user.ID)
	if err != nil {
		return err
	}
	reply.User = user
	reply.Friends = friends
	return nil
}
