package service

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/salqa/sal/cli/pkg/credentials"
	clierrors "github.com/salqa/sal/cli/pkg/errors"
	"github.com/salqa/sal/cli/pkg/query"
	"github.com/salqa/sal/cli/pkg/session"
	"github.com/salqa/sal/cli/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T, mux *http.ServeMux) (*AuthService, *credentials.Store, *server, *syncBuffer, *Env) {
	t.Helper()
	env, out := newTestEnv(t)
	tokens := credentials.NewStore(filepath.Join(t.TempDir(), "credentials.json"))
	srv := startServer(t, mux, tokens)
	store := session.New(session.RemoteAPI(), tokens)
	return NewAuthService(env, store), tokens, srv, out, env
}

func TestAuthLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("POST /login", respond(http.StatusOK, `{"success":true,"token":"opaque-token"}`))
	mux.HandleFunc("GET /profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer opaque-token" {
			respond(http.StatusUnauthorized, `{"message":"Unauthenticated."}`)(w, r)
			return
		}
		respond(http.StatusOK, profileBody)(w, r)
	})
	svc, tokens, _, out, _ := newAuthFixture(t, mux)

	require.NoError(t, svc.Login(context.Background(), " ada ", "secret1"))

	token, err := tokens.Token()
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)
	assert.Contains(t, out.String(), "Logged in as @ada")

	require.NoError(t, svc.Me(context.Background()))
	assert.Contains(t, out.String(), "Ada Lovelace")
}

func TestAuthLogin_BadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("POST /login", respond(http.StatusUnauthorized, `{"success":false,"message":"Invalid credentials"}`))
	svc, tokens, srv, _, _ := newAuthFixture(t, mux)

	err := svc.Login(context.Background(), "ada", "wrong-pass")
	require.Error(t, err)

	token, _ := tokens.Token()
	assert.Empty(t, token)
	assert.Equal(t, 0, srv.count(http.MethodGet, "/profile"))
}

func TestAuthRegister_Validation(t *testing.T) {
	svc, _, srv, _, _ := newAuthFixture(t, http.NewServeMux())

	err := svc.Register(context.Background(), validation.Registration{
		Username:        "ada",
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret2",
	})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "confirm_password")
	assert.Empty(t, srv.requests())
}

func TestAuthRegister(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("POST /register", respond(http.StatusCreated, `{"success":true,"token":"new-token"}`))
	mux.Handle("GET /profile", respond(http.StatusOK, profileBody))
	svc, tokens, srv, out, _ := newAuthFixture(t, mux)

	require.NoError(t, svc.Register(context.Background(), validation.Registration{
		Username:        "ada",
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}))

	token, _ := tokens.Token()
	assert.Equal(t, "new-token", token)
	assert.JSONEq(t,
		`{"username":"ada","first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","password":"secret1"}`,
		srv.requests()[0].Body)
	assert.Contains(t, out.String(), "Account created.")
}

func TestAuthLogout(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("DELETE /logout", respond(http.StatusInternalServerError, `{"message":"boom"}`))
	svc, tokens, srv, out, env := newAuthFixture(t, mux)
	require.NoError(t, tokens.SetToken("opaque-token"))

	require.NoError(t, svc.Logout(context.Background()))

	token, _ := tokens.Token()
	assert.Empty(t, token)
	assert.Equal(t, 1, srv.count(http.MethodDelete, "/logout"))
	assert.Equal(t, uint64(1), env.Cache.Generation(query.KindProfile))
	assert.Equal(t, uint64(1), env.Cache.Generation(query.KindNotifications))
	assert.Contains(t, out.String(), "Logged out.")
}

func TestAuthMe_NotLoggedIn(t *testing.T) {
	svc, _, srv, _, _ := newAuthFixture(t, http.NewServeMux())

	err := svc.Me(context.Background())
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeAuth, cliErr.Type)
	assert.Empty(t, srv.requests())
}
