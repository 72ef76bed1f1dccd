package api

import (
	"context"
	"fmt"

	"github.com/salqa/sal/cli/pkg/client"
	"github.com/salqa/sal/cli/pkg/logger"
)

// Login authenticates with username and password and returns the bearer token.
func Login(ctx context.Context, username, password string) (string, error) {
	logger.Debug("Attempting login", "username", username)

	var env Envelope[struct{}]
	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetBody(LoginRequest{Username: username, Password: password}).
		Post("/login")

	if err := decode(resp, err, &env); err != nil {
		return "", err
	}
	if !env.Success {
		return "", fmt.Errorf("login failed: %s: %w", orDefault(env.Message, "unsuccessful response"), ErrUnsuccessful)
	}
	if env.Token == "" {
		return "", fmt.Errorf("login failed: %w", ErrNoToken)
	}

	logger.Debug("Login successful", "username", username)
	return env.Token, nil
}

// Register creates an account and returns the bearer token for it.
func Register(ctx context.Context, req RegisterRequest) (string, error) {
	logger.Debug("Registering account", "username", req.Username, "email", req.Email)

	var env Envelope[struct{}]
	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetBody(req).
		Post("/register")

	if err := decode(resp, err, &env); err != nil {
		return "", err
	}
	if !env.Success {
		return "", fmt.Errorf("registration failed: %s: %w", orDefault(env.Message, "unsuccessful response"), ErrUnsuccessful)
	}
	if env.Token == "" {
		return "", fmt.Errorf("registration failed: %w", ErrNoToken)
	}

	logger.Debug("Registration successful", "username", req.Username)
	return env.Token, nil
}

// Logout invalidates the server-side session.
func Logout(ctx context.Context) error {
	logger.Debug("Invalidating server session")

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		Delete("/logout")

	return CheckResponse(resp, err)
}
