package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Record is the persisted form of a Session.
type Record struct {
	ID           string    `json:"id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Role         string    `json:"role"`
	Username     string    `json:"username"`
	Flash        *Flash    `json:"flash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session holds the credentials of one signed-in user. It is safe for concurrent use.
type Session struct {
	mu  sync.RWMutex
	rec Record
}

// Create starts a session for a successful sign-in.
func Create(username, access, refresh, role string) *Session {
	now := time.Now().UTC()
	return &Session{rec: Record{
		ID:           uuid.NewString(),
		AccessToken:  access,
		RefreshToken: refresh,
		Role:         role,
		Username:     username,
		CreatedAt:    now,
		UpdatedAt:    now,
	}}
}

func FromRecord(rec Record) *Session {
	return &Session{rec: rec}
}

func (s *Session) Record() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := s.rec
	if s.rec.Flash != nil {
		f := *s.rec.Flash
		rec.Flash = &f
	}
	return rec
}

func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec.ID
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec.AccessToken
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec.RefreshToken
}

func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec.Role
}

func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec.Username
}

// Authenticated reports whether the session still carries an access token.
func (s *Session) Authenticated() bool {
	if s == nil {
		return false
	}
	return s.AccessToken() != ""
}

// SetAccess replaces the access token after a refresh.
func (s *Session) SetAccess(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.AccessToken = token
	s.rec.UpdatedAt = time.Now().UTC()
}

// Invalidate drops both tokens and the role.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.AccessToken = ""
	s.rec.RefreshToken = ""
	s.rec.Role = ""
	s.rec.UpdatedAt = time.Now().UTC()
}

func (s *Session) SetFlash(level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.Flash = &Flash{Level: level, Message: message}
}

// TakeFlash returns the pending toast, if any, and clears it.
func (s *Session) TakeFlash() *Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.rec.Flash
	s.rec.Flash = nil
	return f
}
