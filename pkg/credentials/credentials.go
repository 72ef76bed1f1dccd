package credentials

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	json "github.com/json-iterator/go"
	"github.com/salqa/sal/cli/pkg/config"
)

// Credentials is the single persisted client record. Token is the only
// authoritative field; the rest is a convenience mirror for offline display.
type Credentials struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// IsExpired reports whether the token carries an expiry that has passed.
// Opaque tokens without an exp claim never expire client-side.
func (c *Credentials) IsExpired() bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(c.ExpiresAt)
}

// IsValid checks if credentials are usable
func (c *Credentials) IsValid() bool {
	return c != nil && c.Token != "" && !c.IsExpired()
}

// TokenExpiry reads the exp claim of a JWT without verifying it. The server
// remains the authority; this only lets the CLI skip a doomed request.
func TokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// Store persists credentials in one file. Writes replace the file atomically.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Default returns a store at the configured credentials path.
func Default() *Store {
	return NewStore(config.GetCredentialsPath())
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load loads credentials from disk. Missing credentials are (nil, nil).
func (s *Store) Load() (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Save writes credentials with owner-only permissions.
func (s *Store) Save(creds *Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Delete deletes credentials from disk. Deleting absent credentials is not an error.
func (s *Store) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Token returns the stored token, or "" when none is stored.
func (s *Store) Token() (string, error) {
	creds, err := s.Load()
	if err != nil || creds == nil {
		return "", err
	}
	return creds.Token, nil
}

// SetToken stores a new token, replacing any previous credentials.
func (s *Store) SetToken(token string) error {
	return s.Save(&Credentials{
		Token:     token,
		ExpiresAt: TokenExpiry(token),
	})
}

// Clear removes the stored token.
func (s *Store) Clear() error {
	return s.Delete()
}

// Remember mirrors the signed-in user's identity next to the token.
func (s *Store) Remember(userID int64, username string) error {
	creds, err := s.Load()
	if err != nil {
		return err
	}
	if creds == nil {
		return nil
	}
	creds.UserID = userID
	creds.Username = username
	return s.Save(creds)
}
