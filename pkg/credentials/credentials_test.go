package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "credentials"))
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestCredentialsIsExpired(t *testing.T) {
	testCases := []struct {
		name      string
		expiresAt time.Time
		expect    bool
	}{
		{"past expiration", time.Now().Add(-1 * time.Hour), true},
		{"future expiration", time.Now().Add(1 * time.Hour), false},
		{"no expiry", time.Time{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			creds := &Credentials{Token: "test_token", ExpiresAt: tc.expiresAt}
			assert.Equal(t, tc.expect, creds.IsExpired())
		})
	}
}

func TestCredentialsIsValid(t *testing.T) {
	testCases := []struct {
		name   string
		creds  *Credentials
		expect bool
	}{
		{"valid credentials", &Credentials{Token: "t", ExpiresAt: time.Now().Add(time.Hour)}, true},
		{"opaque token", &Credentials{Token: "1|abcdef"}, true},
		{"empty access token", &Credentials{ExpiresAt: time.Now().Add(time.Hour)}, false},
		{"expired token", &Credentials{Token: "t", ExpiresAt: time.Now().Add(-time.Hour)}, false},
		{"nil credentials", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.creds.IsValid())
		})
	}
}

func TestLoadMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	creds, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, creds)

	token, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetToken("opaque-token"))
	require.NoError(t, store.Remember(7, "ada"))

	creds, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "opaque-token", creds.Token)
	assert.Equal(t, int64(7), creds.UserID)
	assert.Equal(t, "ada", creds.Username)
	assert.True(t, creds.ExpiresAt.IsZero())
}

func TestSaveUsesOwnerOnlyPermissions(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetToken("secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSetTokenReadsJWTExpiry(t *testing.T) {
	store := newTestStore(t)
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)

	require.NoError(t, store.SetToken(signedToken(t, exp)))

	creds, err := store.Load()
	require.NoError(t, err)
	assert.True(t, exp.Equal(creds.ExpiresAt), "want %v got %v", exp, creds.ExpiresAt)
}

func TestTokenExpiryOpaqueToken(t *testing.T) {
	assert.True(t, TokenExpiry("not-a-jwt").IsZero())
	assert.True(t, TokenExpiry("").IsZero())
}

func TestClearIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetToken("t"))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	token, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRememberWithoutTokenIsNoop(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Remember(1, "ghost"))

	creds, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestLoadCorruptFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0600))

	_, err := store.Load()
	assert.Error(t, err)
}
