package service

import (
	"context"
	"strings"

	"github.com/salqa/sal/cli/pkg/api"
	clierrors "github.com/salqa/sal/cli/pkg/errors"
	"github.com/salqa/sal/cli/pkg/formatter"
	"github.com/salqa/sal/cli/pkg/logger"
	"github.com/salqa/sal/cli/pkg/output"
	"github.com/salqa/sal/cli/pkg/prompter"
	"github.com/salqa/sal/cli/pkg/session"
	"github.com/salqa/sal/cli/pkg/validation"
)

// AuthService drives sign-in, sign-up and sign-out on top of the session store
type AuthService struct {
	env   *Env
	store *session.Store
}

// NewAuthService creates a new auth service
func NewAuthService(env *Env, store *session.Store) *AuthService {
	return &AuthService{env: env, store: store}
}

// Login signs in, prompting for anything not supplied
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	var err error
	if strings.TrimSpace(username) == "" {
		if username, err = prompter.PromptString("Username: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = prompter.PromptPassword("Password: "); err != nil {
			return err
		}
	}

	form := validation.Login{Username: strings.TrimSpace(username), Password: password}
	if err := validation.Struct(form); err != nil {
		return err
	}

	output.PrintInfo("Signing in...")
	if err := s.store.Login(ctx, form.Username, form.Password); err != nil {
		return err
	}

	s.welcome()
	return nil
}

// Register creates an account, prompting for missing fields
func (s *AuthService) Register(ctx context.Context, form validation.Registration) error {
	prompts := []struct {
		value  *string
		label  string
		secret bool
	}{
		{&form.Username, "Username: ", false},
		{&form.FirstName, "First name: ", false},
		{&form.LastName, "Last name: ", false},
		{&form.Email, "Email: ", false},
		{&form.Password, "Password: ", true},
		{&form.ConfirmPassword, "Confirm password: ", true},
	}
	for _, p := range prompts {
		if *p.value != "" {
			continue
		}
		var err error
		if p.secret {
			*p.value, err = prompter.PromptPassword(p.label)
		} else {
			*p.value, err = prompter.PromptString(p.label)
		}
		if err != nil {
			return err
		}
	}

	if err := validation.Struct(form); err != nil {
		return err
	}

	logger.Debug("Registering", "username", form.Username)
	err := s.store.Register(ctx, api.RegisterRequest{
		Username:  form.Username,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Password:  form.Password,
	})
	if err != nil {
		return err
	}

	output.PrintSuccess("Account created.")
	s.welcome()
	return nil
}

// Logout signs out. It only fails if the stored token cannot be removed.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.store.Logout(ctx); err != nil {
		return err
	}
	s.env.Invalidate(allKinds...)
	output.PrintSuccess("Logged out.")
	return nil
}

// Me shows who is signed in
func (s *AuthService) Me(ctx context.Context) error {
	state := s.store.Snapshot()
	if state.Status == session.Unknown {
		state = s.store.CheckSession(ctx)
	}
	if !state.IsAuthenticated() {
		return clierrors.NotLoggedInError()
	}
	return output.PrintRecord("Signed in", state.Profile, formatter.ProfileFields(state.Profile))
}

func (s *AuthService) welcome() {
	state := s.store.Snapshot()
	if state.Profile == nil {
		return
	}
	output.PrintSuccess("Logged in as %s", formatter.Bold.Sprint("@"+state.Profile.Username))
}
