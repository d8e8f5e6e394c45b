// api/api.go
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wfunc/xoserver/persistence"
	"github.com/wfunc/xoserver/services"
)

// Handler serves the account surface (signup, login, profile, friends)
// as JSON over HTTP. It is a sibling of the game server, not part of the
// room core.
type Handler struct {
	authService   *services.AuthService
	friendService *services.FriendService
}

func NewHandler(auth *services.AuthService, friends *services.FriendService) *Handler {
	return &Handler{authService: auth, friendService: friends}
}

// Router builds the gin engine with all account routes mounted.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/signup", h.signup)
	router.POST("/login", h.login)

	authed := router.Group("/", h.requireAuth)
	authed.GET("/me", h.currentUser)
	authed.PATCH("/me", h.updateProfile)
	authed.GET("/me/friends", h.listFriends)
	authed.GET("/me/friend-requests", h.listFriendRequests)
	authed.POST("/friend-requests", h.createFriendRequest)
	authed.POST("/friend-requests/:senderID/accept", h.acceptFriendRequest)
	authed.POST("/friend-requests/:senderID/reject", h.rejectFriendRequest)

	return router
}

type signupRequest struct {
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password" binding:"required"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.Signup(req.Username, req.DisplayName, req.Password)
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "username taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		return
	}
	c.JSON(http.StatusCreated, token)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, token)
}

// requireAuth resolves the bearer token and stashes the claims.
func (h *Handler) requireAuth(c *gin.Context) {
	token := c.GetHeader("X-Access-Token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	claims, err := h.authService.VerifyToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set("userID", claims.UserID)
	c.Next()
}

func userID(c *gin.Context) int64 {
	return c.GetInt64("userID")
}

func (h *Handler) currentUser(c *gin.Context) {
	user, err := h.authService.User(userID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type profileRequest struct {
	DisplayName string `json:"displayName"`
	ImageURL    string `json:"imageURL"`
	DiscordTag  string `json:"discordTag"`
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.UpdateProfile(userID(c), req.DisplayName, req.ImageURL, req.DiscordTag)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) listFriends(c *gin.Context) {
	friends, err := h.friendService.Friends(userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

func (h *Handler) listFriendRequests(c *gin.Context) {
	pending, err := h.friendService.PendingRequests(userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"friendRequests": pending})
}

type friendRequestRequest struct {
	ReceiverUsername string `json:"receiverUsername" binding:"required"`
}

func (h *Handler) createFriendRequest(c *gin.Context) {
	var req friendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	friendship, err := h.friendService.CreateRequest(userID(c), req.ReceiverUsername)
	if err != nil {
		switch {
		case errors.Is(err, persistence.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "no such user"})
		case errors.Is(err, persistence.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "request already exists"})
		case errors.Is(err, services.ErrSelfFriendship):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot befriend yourself"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, friendship)
}

func (h *Handler) respondToFriendRequest(c *gin.Context, accept bool) {
	senderID, err := strconv.ParseInt(c.Param("senderID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad sender id"})
		return
	}

	if accept {
		err = h.friendService.Accept(userID(c), senderID)
	} else {
		err = h.friendService.Reject(userID(c), senderID)
	}
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no such request"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) acceptFriendRequest(c *gin.Context) {
	h.respondToFriendRequest(c, true)
}

func (h *Handler) rejectFriendRequest(c *gin.Context) {
	h.respondToFriendRequest(c, false)
}
