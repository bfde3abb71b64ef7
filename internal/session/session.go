// Package session holds the authenticated identity for the running client.
// Credentials persist across restarts through the credential store; the user
// profile itself is re-fetched on startup rather than cached.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/steve-ongera/amazon/internal/api"
	"github.com/steve-ongera/amazon/internal/credstore"
	"github.com/steve-ongera/amazon/internal/domain"
)

// Store tracks the current user. Safe for concurrent use.
type Store struct {
	api    *api.Client
	creds  credstore.Store
	logger *slog.Logger

	mu   sync.RWMutex
	user *domain.UserProfile

	logoutMu sync.Mutex
	onLogout []func()
}

// NewStore creates a session store. The session starts anonymous until
// Initialize or Login runs.
func NewStore(client *api.Client, creds credstore.Store, log *slog.Logger) *Store {
	return &Store{api: client, creds: creds, logger: log}
}

// Initialize restores the session from persisted credentials. With no stored
// access token the session stays anonymous. A stored token that no longer
// resolves to a profile is discarded and the session stays anonymous; stale
// credentials never produce a half-authenticated state.
func (s *Store) Initialize(ctx context.Context) error {
	pair, err := s.creds.Load(ctx)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if pair.Access == "" {
		s.logger.DebugContext(ctx, "no stored credentials, starting anonymous")
		return nil
	}

	s.logger.DebugContext(ctx, "restoring session",
		slog.Int64("user_id", subjectID(pair.Access)),
	)

	profile, err := s.api.GetProfile(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "stored credentials rejected, starting anonymous",
			slog.String("error", err.Error()),
		)
		if clearErr := s.creds.Clear(ctx); clearErr != nil {
			return fmt.Errorf("clear stale credentials: %w", clearErr)
		}
		return nil
	}

	s.mu.Lock()
	s.user = profile
	s.mu.Unlock()
	return nil
}

// Login records an authenticated identity and persists its credential pair.
// Authentication itself happens elsewhere; this only stores the outcome.
func (s *Store) Login(ctx context.Context, user domain.UserProfile, pair domain.TokenPair) error {
	if err := s.creds.Save(ctx, pair); err != nil {
		return fmt.Errorf("persist credentials: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "user logged in", slog.Int64("user_id", user.ID))
	return nil
}

// Logout clears the identity and persisted credentials, then runs the
// registered teardown hooks. Always returns the session to anonymous, even if
// clearing storage fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	err := s.creds.Clear(ctx)

	s.logoutMu.Lock()
	hooks := make([]func(), len(s.onLogout))
	copy(hooks, s.onLogout)
	s.logoutMu.Unlock()
	for _, fn := range hooks {
		fn()
	}

	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	s.logger.InfoContext(ctx, "user logged out")
	return nil
}

// OnLogout registers a hook that runs whenever the session ends. Used by
// per-user caches to tear themselves down.
func (s *Store) OnLogout(fn func()) {
	s.logoutMu.Lock()
	s.onLogout = append(s.onLogout, fn)
	s.logoutMu.Unlock()
}

// RefreshUser re-fetches the profile for the current session. On failure the
// previously known profile is kept.
func (s *Store) RefreshUser(ctx context.Context) error {
	if !s.IsAuthenticated() {
		return nil
	}

	profile, err := s.api.GetProfile(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "profile refresh failed, keeping cached profile",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("refresh profile: %w", err)
	}

	s.mu.Lock()
	s.user = profile
	s.mu.Unlock()
	return nil
}

// User returns the current profile, or nil when anonymous.
func (s *Store) User() *domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated reports whether a user is logged in.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// subjectID extracts the user_id claim from an access token without verifying
// the signature. Verification is the server's job; the ID is only used for
// log enrichment. Returns 0 when the token is unreadable.
func subjectID(access string) int64 {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return 0
	}
	if v, ok := claims["user_id"].(float64); ok {
		return int64(v)
	}
	return 0
}
