// services/auth_service.go
package services

import (
	"errors"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"

	"github.com/wfunc/xoserver/models"
	"github.com/wfunc/xoserver/persistence"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Claims are the signed contents of a login token.
type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies login tokens and owns the password
// hashing scheme. The room engine only ever uses VerifyToken, through
// the authenticate packet.
type AuthService struct {
	db     persistence.Database
	secret []byte
	ttl    time.Duration
}

func NewAuthService(db persistence.Database, secret string, ttl time.Duration) *AuthService {
	return &AuthService{db: db, secret: []byte(secret), ttl: ttl}
}

// Signup creates an account and returns a fresh login token.
func (s *AuthService) Signup(username, displayName, password string) (*models.Token, error) {
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return nil, err
	}

	user := &models.GormUser{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: hash,
	}
	if err := s.db.CreateUser(user); err != nil {
		return nil, err
	}

	return s.issueToken(int64(user.ID), user.Username)
}

// Login verifies the password and returns a fresh login token.
func (s *AuthService) Login(username, password string) (*models.Token, error) {
	user, err := s.db.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := argon2id.ComparePasswordAndHash(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(int64(user.ID), user.Username)
}

// VerifyToken resolves a presented token to its verified claims.
func (s *AuthService) VerifyToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ResolveUser verifies the token and loads the account behind it.
func (s *AuthService) ResolveUser(token string) (*models.User, error) {
	claims, err := s.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.db.GetUserByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	return user.ToUser(), nil
}

// User loads an account by id.
func (s *AuthService) User(userID int64) (*models.User, error) {
	user, err := s.db.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	return user.ToUser(), nil
}

// UpdateProfile applies the given display fields to the account.
func (s *AuthService) UpdateProfile(userID int64, displayName, imageURL, discordTag string) (*models.User, error) {
	profile := map[string]interface{}{}
	if displayName != "" {
		profile["display_name"] = displayName
	}
	if imageURL != "" {
		profile["image_url"] = imageURL
	}
	if discordTag != "" {
		profile["discord_tag"] = discordTag
	}
	if len(profile) > 0 {
		if err := s.db.UpdateUserProfile(userID, profile); err != nil {
			return nil, err
		}
	}
	user, err := s.db.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	return user.ToUser(), nil
}

func (s *AuthService) issueToken(userID int64, username string) (*models.Token, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &models.Token{Token: signed}, nil
}
