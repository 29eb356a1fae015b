package client

import "sync"

// Session holds the current bearer token for a client. It has exactly two
// states: logged out (no token) and logged in (token present). Construct one
// at startup and pass it to everything that needs it; nothing reads it
// through a global.
type Session struct {
	mu    sync.RWMutex
	token string
}

func NewSession() *Session {
	return &Session{}
}

// NewSessionWithToken restores a session from a previously stored token
// (e.g. the CLI token file).
func NewSessionWithToken(token string) *Session {
	return &Session{token: token}
}

// Login transitions to logged in. Call only with a token the server issued.
func (s *Session) Login(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Logout discards the token. The gateway is stateless, so this is the whole
// logout operation.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

func (s *Session) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
