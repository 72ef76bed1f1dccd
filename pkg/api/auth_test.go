package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_ReturnsToken(t *testing.T) {
	b := newBackend(t, http.StatusOK, `{"success":true,"token":"tok-1","message":"ok"}`)

	token, err := Login(context.Background(), "ada", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	req := b.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/login", req.Path)
	assert.JSONEq(t, `{"username":"ada","password":"secret1"}`, req.Body)
}

func TestLogin_MissingToken(t *testing.T) {
	newBackend(t, http.StatusOK, `{"success":true}`)

	_, err := Login(context.Background(), "ada", "secret1")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestLogin_UnsuccessfulEnvelopeRejected(t *testing.T) {
	newBackend(t, http.StatusOK, `{"success":false,"token":"tok-1","message":"Account locked"}`)

	token, err := Login(context.Background(), "ada", "secret1")
	assert.Empty(t, token)
	assert.ErrorIs(t, err, ErrUnsuccessful)
	assert.Contains(t, err.Error(), "Account locked")
}

func TestLogin_InvalidCredentialsCarriesBackendMessage(t *testing.T) {
	newBackend(t, http.StatusUnprocessableEntity, `{"success":false,"message":"The provided credentials are incorrect."}`)

	_, err := Login(context.Background(), "ada", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "The provided credentials are incorrect.", apiErr.Message)
	assert.True(t, IsValidation(err))
}

func TestRegister_SendsAllFields(t *testing.T) {
	b := newBackend(t, http.StatusCreated, `{"success":true,"token":"tok-new"}`)

	token, err := Register(context.Background(), RegisterRequest{
		Username:  "grace",
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
		Password:  "cobol60",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-new", token)
	assert.JSONEq(t,
		`{"username":"grace","first_name":"Grace","last_name":"Hopper","email":"grace@example.com","password":"cobol60"}`,
		b.last().Body)
}

func TestRegister_UnsuccessfulEnvelopeRejected(t *testing.T) {
	newBackend(t, http.StatusCreated, `{"token":"tok-new"}`)

	token, err := Register(context.Background(), RegisterRequest{Username: "grace"})
	assert.Empty(t, token)
	assert.ErrorIs(t, err, ErrUnsuccessful)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	newBackend(t, http.StatusUnprocessableEntity,
		`{"success":false,"message":"Validation failed","errors":{"username":["The username has already been taken."]}}`)

	_, err := Register(context.Background(), RegisterRequest{Username: "grace"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, []string{"The username has already been taken."}, apiErr.Fields["username"])
	assert.Contains(t, err.Error(), "username: The username has already been taken.")
}

func TestLogout_UsesDelete(t *testing.T) {
	b := newBackend(t, http.StatusOK, `{"success":true}`)

	require.NoError(t, Logout(context.Background()))
	req := b.last()
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/logout", req.Path)
	assert.Equal(t, "Bearer test-token", req.Auth)
}
