// Package session owns the authenticated identity for this machine. One
// Store per process, all processes sharing a state file; the Bus relays
// changes to subscribers in this process and, through the file watcher, to
// every other gatherctl process of the same user.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleStandard Role = "STANDARD"
	RoleAdmin    Role = "ADMIN"
)

// Session is an immutable snapshot of the current identity. Role and
// DisplayName only mean anything while Token is non-empty.
type Session struct {
	Token        string
	RefreshToken string
	IsAdmin      bool
	DisplayName  string
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

func (s Session) Role() Role {
	if s.IsAdmin {
		return RoleAdmin
	}
	return RoleStandard
}

// tokenExpired reports whether a bearer token is a JWT whose exp claim has
// already passed. Opaque tokens and JWTs without exp are assumed live; the
// server is still the authority and will answer 401 if not.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
