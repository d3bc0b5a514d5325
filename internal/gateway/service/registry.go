package service

import (
	"sync"

	"lnd-gateway/internal/lnd"
)

// ============================================================
// Session Registry
// ============================================================

// Session binds a bearer token to a live node client and the identity
// fetched when the connection was verified. The Client is exclusively
// owned by the registry entry; nobody else closes it.
type Session struct {
	Token    string
	Host     string
	Cert     string
	Macaroon string
	Pubkey   string
	Alias    string
	Client   lnd.Client
}

// Registry is the process-wide map of active node sessions, keyed by
// token. Sessions live in memory only and do not survive a restart.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Put inserts or replaces a session. At most one session may exist per
// host: any prior entry with the same host is removed and returned so
// the caller can release its client. The returned session is nil when
// nothing was evicted.
func (r *Registry) Put(s *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted *Session
	for token, existing := range r.sessions {
		if existing.Host == s.Host && token != s.Token {
			evicted = existing
			delete(r.sessions, token)
			break
		}
	}

	r.sessions[s.Token] = s
	return evicted
}

// Get looks up a session by token.
func (r *Registry) Get(token string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[token]
	return s, ok
}

// All returns a snapshot of the active sessions.
func (r *Registry) All() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Remove deletes a single session and returns it, if present.
func (r *Registry) Remove(token string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[token]
	if !ok {
		return nil
	}
	delete(r.sessions, token)
	return s
}
