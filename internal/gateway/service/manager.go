package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"lnd-gateway/internal/gateway/models"
	"lnd-gateway/internal/lnd"
)

// ============================================================
// Node Session Manager
// ============================================================

// ErrUnknownSession is returned by Resolve for tokens that were never
// issued or whose session was superseded by a reconnect.
var ErrUnknownSession = errors.New("unknown session")

// connectTimeout bounds the dial + probe sequence so a hung node never
// stalls a connect request indefinitely.
const connectTimeout = 15 * time.Second

// ConnectResult is what a successful connect hands back to the caller.
type ConnectResult struct {
	Token  string `json:"token"`
	Pubkey string `json:"pubkey"`
	Alias  string `json:"alias"`
}

// Manager is the only component that creates, verifies and resolves
// node sessions. Handlers go through it instead of touching the
// registry directly.
type Manager struct {
	registry *Registry
	dial     lnd.Dialer
}

func NewManager(registry *Registry, dial lnd.Dialer) *Manager {
	return &Manager{
		registry: registry,
		dial:     dial,
	}
}

// Connect dials the node at host, verifies the connection with a
// GetInfo probe, registers the session under a fresh token and returns
// the token plus the node's identity. A connection that fails the probe
// is closed and never registered.
func (m *Manager) Connect(ctx context.Context, host, cert, macaroon string) (*ConnectResult, error) {
	session, err := m.establish(ctx, host, cert, macaroon, uuid.NewString())
	if err != nil {
		return nil, err
	}

	m.register(session)
	return &ConnectResult{
		Token:  session.Token,
		Pubkey: session.Pubkey,
		Alias:  session.Alias,
	}, nil
}

// Resolve returns the live client for token, or ErrUnknownSession.
// The handle is not revalidated here; a stale connection surfaces as a
// call failure when it is actually used.
func (m *Manager) Resolve(token string) (lnd.Client, error) {
	s, ok := m.registry.Get(token)
	if !ok {
		return nil, ErrUnknownSession
	}
	return s.Client, nil
}

// ReconnectAll re-establishes sessions from persisted node records,
// reusing each record's existing token. Individual failures are logged
// and skipped so one bad credential does not block the rest.
func (m *Manager) ReconnectAll(ctx context.Context, nodes []models.Node) {
	for _, node := range nodes {
		session, err := m.establish(ctx, node.Host, node.Cert, node.Macaroon, node.Token)
		if err != nil {
			log.Printf("[MANAGER] reconnect %s failed: %v", node.Host, err)
			continue
		}
		m.register(session)
		log.Printf("[MANAGER] reconnected to %s (%s)", node.Host, session.Alias)
	}
}

// Shutdown closes every live client and empties the registry.
func (m *Manager) Shutdown() {
	for _, s := range m.registry.All() {
		if removed := m.registry.Remove(s.Token); removed != nil {
			if err := removed.Client.Close(); err != nil {
				log.Printf("[MANAGER] close %s: %v", removed.Host, err)
			}
		}
	}
}

// establish runs the dial + probe sequence and builds the session. The
// registry lock is never held here; only register touches it.
func (m *Manager) establish(ctx context.Context, host, cert, macaroon, token string) (*Session, error) {
	if host == "" || cert == "" || macaroon == "" {
		return nil, fmt.Errorf("host, cert and macaroon are required")
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := m.dial(ctx, host, cert, macaroon)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", host, err)
	}

	info, err := client.GetInfo(ctx)
	if err != nil {
		// transport came up but the node rejected the probe; do not
		// cache the half-working connection
		if cerr := client.Close(); cerr != nil {
			log.Printf("[MANAGER] close after failed probe: %v", cerr)
		}
		return nil, fmt.Errorf("verify connection to %s: %w", host, err)
	}

	return &Session{
		Token:    token,
		Host:     host,
		Cert:     cert,
		Macaroon: macaroon,
		Pubkey:   info.Pubkey,
		Alias:    info.Alias,
		Client:   client,
	}, nil
}

// register puts the session and releases the client of any superseded
// session for the same host.
func (m *Manager) register(s *Session) {
	if evicted := m.registry.Put(s); evicted != nil {
		log.Printf("[MANAGER] superseding session for %s", evicted.Host)
		if err := evicted.Client.Close(); err != nil {
			log.Printf("[MANAGER] close superseded %s: %v", evicted.Host, err)
		}
	}
}
