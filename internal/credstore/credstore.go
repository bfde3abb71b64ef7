// Package credstore persists the access/refresh token pair between sessions.
// The pair lives under two fixed storage keys; everything else the client
// holds is in-memory and rebuilt from the server.
package credstore

import (
	"context"
	"sync"

	"github.com/steve-ongera/amazon/internal/domain"
)

// Fixed storage keys for the credential pair.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// Store persists the credential pair. Implementations must treat an absent
// pair as a zero value, not an error: an anonymous session is a normal state.
type Store interface {
	// Load returns the stored pair; a zero pair when nothing is stored.
	Load(ctx context.Context) (domain.TokenPair, error)

	// Save stores both tokens.
	Save(ctx context.Context, pair domain.TokenPair) error

	// SaveAccess replaces only the access token, keeping the refresh token.
	// Used after a successful token refresh.
	SaveAccess(ctx context.Context, access string) error

	// Clear removes both tokens.
	Clear(ctx context.Context) error
}

// Memory is an in-process Store, used in tests and short-lived tools.
type Memory struct {
	mu   sync.RWMutex
	pair domain.TokenPair
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) (domain.TokenPair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pair, nil
}

func (m *Memory) Save(_ context.Context, pair domain.TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = pair
	return nil
}

func (m *Memory) SaveAccess(_ context.Context, access string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair.Access = access
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = domain.TokenPair{}
	return nil
}
