package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/salqa/sal/cli/pkg/api"
	"github.com/salqa/sal/cli/pkg/credentials"
	"github.com/salqa/sal/cli/pkg/events"
	"github.com/salqa/sal/cli/pkg/logger"
)

// Status is where the session is in its lifecycle.
type Status int

const (
	Unknown Status = iota
	Unauthenticated
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is a point-in-time view of the session.
type State struct {
	Status  Status
	Profile *api.Profile
}

// IsAuthenticated reports whether a profile was confirmed for the token.
func (s State) IsAuthenticated() bool {
	return s.Status == Authenticated
}

// AuthAPI is the slice of the backend the session talks to.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, req api.RegisterRequest) (string, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*api.Profile, error)
}

// TokenStore persists the bearer token.
type TokenStore interface {
	Load() (*credentials.Credentials, error)
	SetToken(token string) error
	Remember(userID int64, username string) error
	Clear() error
}

type remoteAPI struct{}

// RemoteAPI is the AuthAPI backed by the REST endpoints.
func RemoteAPI() AuthAPI {
	return remoteAPI{}
}

func (remoteAPI) Login(ctx context.Context, username, password string) (string, error) {
	return api.Login(ctx, username, password)
}

func (remoteAPI) Register(ctx context.Context, req api.RegisterRequest) (string, error) {
	return api.Register(ctx, req)
}

func (remoteAPI) Logout(ctx context.Context) error {
	return api.Logout(ctx)
}

func (remoteAPI) Profile(ctx context.Context) (*api.Profile, error) {
	return api.GetProfile(ctx)
}

// Store owns the session state. It starts Unknown and settles after the
// first CheckSession, Login or Register.
type Store struct {
	api    AuthAPI
	tokens TokenStore

	mu      sync.Mutex
	state   State
	changes *events.Signal
}

// New creates a session store in the Unknown state.
func New(authAPI AuthAPI, tokens TokenStore) *Store {
	return &Store{
		api:     authAPI,
		tokens:  tokens,
		changes: events.NewSignal("session-changed"),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state
	if snap.Profile != nil {
		p := *snap.Profile
		snap.Profile = &p
	}
	return snap
}

// Changes subscribes to state transitions.
func (s *Store) Changes() (<-chan struct{}, func()) {
	return s.changes.Subscribe()
}

func (s *Store) set(status Status, profile *api.Profile) {
	s.mu.Lock()
	prev := s.state.Status
	s.state = State{Status: status, Profile: profile}
	s.mu.Unlock()

	if prev != status {
		logger.Debug("Session changed", "from", prev, "to", status)
	}
	s.changes.Emit()
}

func (s *Store) dropToken() {
	if err := s.tokens.Clear(); err != nil {
		logger.Warn("Failed to clear stored token", "error", err)
	}
}

// CheckSession confirms the stored token with the backend. Without a token
// no request is made. Any failure clears the token.
func (s *Store) CheckSession(ctx context.Context) State {
	creds, err := s.tokens.Load()
	if err != nil {
		logger.Warn("Unreadable credentials, signing out", "error", err)
		s.dropToken()
		s.set(Unauthenticated, nil)
		return s.Snapshot()
	}
	if creds == nil || creds.Token == "" {
		s.set(Unauthenticated, nil)
		return s.Snapshot()
	}
	if creds.IsExpired() {
		logger.Debug("Stored token expired", "expires_at", creds.ExpiresAt)
		s.dropToken()
		s.set(Unauthenticated, nil)
		return s.Snapshot()
	}

	profile, err := s.api.Profile(ctx)
	if err != nil {
		logger.Debug("Session check failed", "error", err)
		s.dropToken()
		s.set(Unauthenticated, nil)
		return s.Snapshot()
	}

	if err := s.tokens.Remember(profile.ID, profile.Username); err != nil {
		logger.Warn("Failed to cache identity", "error", err)
	}
	s.set(Authenticated, profile)
	return s.Snapshot()
}

// Login exchanges credentials for a token and loads the profile.
func (s *Store) Login(ctx context.Context, username, password string) error {
	token, err := s.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	return s.adopt(ctx, token)
}

// Register creates an account and signs in with the returned token.
func (s *Store) Register(ctx context.Context, req api.RegisterRequest) error {
	token, err := s.api.Register(ctx, req)
	if err != nil {
		return err
	}
	return s.adopt(ctx, token)
}

func (s *Store) adopt(ctx context.Context, token string) error {
	if err := s.tokens.SetToken(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	profile, err := s.api.Profile(ctx)
	if err != nil {
		s.dropToken()
		s.set(Unauthenticated, nil)
		return fmt.Errorf("failed to load profile: %w", err)
	}

	if err := s.tokens.Remember(profile.ID, profile.Username); err != nil {
		logger.Warn("Failed to cache identity", "error", err)
	}
	s.set(Authenticated, profile)
	return nil
}

// Logout ends the session locally whether or not the backend call succeeds.
// Only a failure to remove the stored token is returned.
func (s *Store) Logout(ctx context.Context) error {
	creds, _ := s.tokens.Load()
	if creds != nil && creds.Token != "" {
		if err := s.api.Logout(ctx); err != nil {
			logger.Warn("Server logout failed", "error", err)
		}
	}

	err := s.tokens.Clear()
	s.set(Unauthenticated, nil)
	if err != nil {
		return fmt.Errorf("failed to remove stored token: %w", err)
	}
	return nil
}

// Watch re-checks the session each time signal fires, until ctx is done.
func (s *Store) Watch(ctx context.Context, signal *events.Signal) {
	ch, unsubscribe := signal.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			logger.Debug("Auth error signalled, re-checking session", "signal", signal.Name())
			s.CheckSession(ctx)
		}
	}
}
