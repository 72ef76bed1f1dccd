package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/salqa/sal/cli/pkg/api"
	"github.com/salqa/sal/cli/pkg/credentials"
	"github.com/salqa/sal/cli/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu           sync.Mutex
	token        string
	loginErr     error
	logoutErr    error
	profile      *api.Profile
	profileErr   error
	profileCalls int
	logoutCalls  int
	registered   []api.RegisterRequest
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.token, nil
}

func (f *fakeAPI) Register(_ context.Context, req api.RegisterRequest) (string, error) {
	f.mu.Lock()
	f.registered = append(f.registered, req)
	f.mu.Unlock()
	return f.token, nil
}

func (f *fakeAPI) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeAPI) Profile(context.Context) (*api.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profileCalls
}

func newTestStore(t *testing.T, fake *fakeAPI) (*Store, *credentials.Store) {
	t.Helper()
	tokens := credentials.NewStore(filepath.Join(t.TempDir(), "credentials"))
	return New(fake, tokens), tokens
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "7", "exp": exp.Unix()})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

var ada = &api.Profile{ID: 7, Username: "ada", FirstName: "Ada", LastName: "Lovelace"}

func TestNewStoreStartsUnknown(t *testing.T) {
	s, _ := newTestStore(t, &fakeAPI{})
	assert.Equal(t, Unknown, s.Snapshot().Status)
	assert.Equal(t, "unknown", s.Snapshot().Status.String())
}

func TestCheckSession_NoTokenMakesNoRequest(t *testing.T) {
	fake := &fakeAPI{profile: ada}
	s, _ := newTestStore(t, fake)

	state := s.CheckSession(context.Background())
	assert.Equal(t, Unauthenticated, state.Status)
	assert.Nil(t, state.Profile)
	assert.Equal(t, 0, fake.calls())
}

func TestCheckSession_ExpiredTokenIsCleared(t *testing.T) {
	fake := &fakeAPI{profile: ada}
	s, tokens := newTestStore(t, fake)
	require.NoError(t, tokens.SetToken(signedToken(t, time.Now().Add(-time.Hour))))

	state := s.CheckSession(context.Background())
	assert.Equal(t, Unauthenticated, state.Status)
	assert.Equal(t, 0, fake.calls())

	creds, err := tokens.Load()
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestCheckSession_RejectedTokenIsCleared(t *testing.T) {
	fake := &fakeAPI{profileErr: &api.APIError{StatusCode: 401, Message: "Unauthenticated."}}
	s, tokens := newTestStore(t, fake)
	require.NoError(t, tokens.SetToken("opaque-token"))

	state := s.CheckSession(context.Background())
	assert.Equal(t, Unauthenticated, state.Status)
	assert.Equal(t, 1, fake.calls())

	token, err := tokens.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestCheckSession_ValidTokenLoadsProfile(t *testing.T) {
	fake := &fakeAPI{profile: ada}
	s, tokens := newTestStore(t, fake)
	require.NoError(t, tokens.SetToken(signedToken(t, time.Now().Add(time.Hour))))

	state := s.CheckSession(context.Background())
	require.True(t, state.IsAuthenticated())
	assert.Equal(t, "ada", state.Profile.Username)

	creds, err := tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(7), creds.UserID)
	assert.Equal(t, "ada", creds.Username)
}

func TestLogin_StoresTokenAndProfile(t *testing.T) {
	fake := &fakeAPI{token: "fresh-token", profile: ada}
	s, tokens := newTestStore(t, fake)

	require.NoError(t, s.Login(context.Background(), "ada", "secret1"))
	assert.True(t, s.Snapshot().IsAuthenticated())

	token, err := tokens.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
}

func TestLogin_FailureKeepsState(t *testing.T) {
	fake := &fakeAPI{loginErr: &api.APIError{StatusCode: 422, Message: "The provided credentials are incorrect."}}
	s, tokens := newTestStore(t, fake)
	s.CheckSession(context.Background())

	err := s.Login(context.Background(), "ada", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The provided credentials are incorrect.")
	assert.Equal(t, Unauthenticated, s.Snapshot().Status)

	creds, _ := tokens.Load()
	assert.Nil(t, creds)
}

func TestLogin_ProfileFailureDropsToken(t *testing.T) {
	fake := &fakeAPI{token: "fresh-token", profileErr: errors.New("connection refused")}
	s, tokens := newTestStore(t, fake)

	err := s.Login(context.Background(), "ada", "secret1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load profile")

	token, _ := tokens.Token()
	assert.Empty(t, token)
	assert.Equal(t, Unauthenticated, s.Snapshot().Status)
}

func TestRegister_SignsIn(t *testing.T) {
	fake := &fakeAPI{token: "new-token", profile: ada}
	s, _ := newTestStore(t, fake)

	req := api.RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "secret1"}
	require.NoError(t, s.Register(context.Background(), req))
	assert.True(t, s.Snapshot().IsAuthenticated())
	assert.Equal(t, []api.RegisterRequest{req}, fake.registered)
}

func TestLogout_ServerFailureStillSignsOut(t *testing.T) {
	fake := &fakeAPI{token: "t", profile: ada, logoutErr: errors.New("503")}
	s, tokens := newTestStore(t, fake)
	require.NoError(t, s.Login(context.Background(), "ada", "secret1"))

	require.NoError(t, s.Logout(context.Background()))
	assert.Equal(t, 1, fake.logoutCalls)
	assert.Equal(t, Unauthenticated, s.Snapshot().Status)

	token, _ := tokens.Token()
	assert.Empty(t, token)
}

func TestLogout_WithoutTokenSkipsServer(t *testing.T) {
	fake := &fakeAPI{}
	s, _ := newTestStore(t, fake)

	require.NoError(t, s.Logout(context.Background()))
	assert.Equal(t, 0, fake.logoutCalls)
}

func TestSnapshotIsACopy(t *testing.T) {
	fake := &fakeAPI{token: "t", profile: ada}
	s, _ := newTestStore(t, fake)
	require.NoError(t, s.Login(context.Background(), "ada", "secret1"))

	snap := s.Snapshot()
	snap.Profile.Username = "mallory"
	assert.Equal(t, "ada", s.Snapshot().Profile.Username)
}

func TestChangesNotifiesObservers(t *testing.T) {
	fake := &fakeAPI{token: "t", profile: ada}
	s, _ := newTestStore(t, fake)
	ch, unsubscribe := s.Changes()
	defer unsubscribe()

	require.NoError(t, s.Login(context.Background(), "ada", "secret1"))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no change notification")
	}
}

func TestWatch_AuthErrorSignsOut(t *testing.T) {
	fake := &fakeAPI{token: "t", profile: ada}
	s, tokens := newTestStore(t, fake)
	require.NoError(t, s.Login(context.Background(), "ada", "secret1"))

	changes, unsubscribe := s.Changes()
	defer unsubscribe()

	signal := events.NewSignal("auth-error")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Watch(ctx, signal)
		close(done)
	}()

	// what the HTTP interceptor does on a 401
	require.NoError(t, tokens.Clear())
	require.Eventually(t, func() bool {
		signal.Emit()
		select {
		case <-changes:
			return s.Snapshot().Status == Unauthenticated
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
