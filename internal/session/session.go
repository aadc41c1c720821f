// Package session carries the authenticated-identity context through a
// request instead of ambient globals. A Session moves through
// Uninitialized -> Authenticated -> Unauthenticated and record operations
// only run against an Authenticated one.
package session

import (
	"github.com/google/uuid"

	"github.com/inficare/inficare/internal/domain"
)

type State int

const (
	Uninitialized State = iota
	Authenticated
	Unauthenticated
)

type Session struct {
	state  State
	claims domain.Claims
}

// New returns an Uninitialized session; SignIn or SignOut moves it on.
func New() *Session {
	return &Session{state: Uninitialized}
}

func (s *Session) SignIn(claims domain.Claims) {
	s.state = Authenticated
	s.claims = claims
}

func (s *Session) SignOut() {
	s.state = Unauthenticated
	s.claims = domain.Claims{}
}

func (s *Session) State() State {
	return s.state
}

// OwnerID yields the authenticated identity, or false when the session is
// not (or no longer) authenticated.
func (s *Session) OwnerID() (uuid.UUID, bool) {
	if s.state != Authenticated {
		return uuid.Nil, false
	}
	return s.claims.UserID, true
}

func (s *Session) Claims() (domain.Claims, bool) {
	if s.state != Authenticated {
		return domain.Claims{}, false
	}
	return s.claims, true
}
