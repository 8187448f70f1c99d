// Package identity tracks which user the client acts for.
package identity

import (
	"fmt"
	"sync/atomic"

	"github.com/dmitrijs2005/marketsales/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// PlaceholderUserID is stored by some front ends while nobody is signed in.
// It is never a real user.
const PlaceholderUserID = "no-user"

// Provider supplies the current user. ok is false when nobody is signed in.
type Provider interface {
	CurrentUser() (userID string, ok bool)
}

// IsReal reports whether userID names an actual user.
func IsReal(userID string) bool {
	return userID != "" && userID != PlaceholderUserID
}

// Session is a Provider whose user is replaced atomically on login and
// logout. The zero value has no user.
type Session struct {
	user atomic.Pointer[string]
}

func NewSession(userID string) *Session {
	s := &Session{}
	if userID != "" {
		s.Login(userID)
	}
	return s
}

func (s *Session) CurrentUser() (string, bool) {
	p := s.user.Load()
	if p == nil || !IsReal(*p) {
		return "", false
	}
	return *p, true
}

func (s *Session) Login(userID string) {
	s.user.Store(&userID)
}

func (s *Session) Logout() {
	s.user.Store(nil)
}

// Require returns the current user or common.ErrNoUser.
func Require(p Provider) (string, error) {
	u, ok := p.CurrentUser()
	if !ok {
		return "", common.ErrNoUser
	}
	return u, nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// UserFromToken reads the user of an access token without verifying it;
// the server does that on every call.
func UserFromToken(token string) (string, error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.UserID != "" {
		return claims.UserID, nil
	}
	if claims.Subject != "" {
		return claims.Subject, nil
	}
	return "", fmt.Errorf("%w: no subject", common.ErrInvalidToken)
}
