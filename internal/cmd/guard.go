package cmd

import (
	"context"
	"errors"
	"strings"

	clierrors "github.com/salqa/sal/cli/pkg/errors"
	"github.com/salqa/sal/cli/pkg/guard"
	"github.com/salqa/sal/cli/pkg/logger"
	"github.com/salqa/sal/cli/pkg/output"
	"github.com/salqa/sal/cli/pkg/prompter"
	"github.com/salqa/sal/cli/pkg/service"
	"github.com/salqa/sal/cli/pkg/session"
	"github.com/spf13/cobra"
)

const guardAnnotation = "guard"

const (
	guardAuth  = "auth"
	guardGuest = "guest"
)

// requireAuth marks cmd as needing a signed-in session.
func requireAuth(cmd *cobra.Command) *cobra.Command {
	return annotate(cmd, guardAuth)
}

// requireGuest marks cmd as only for signed-out sessions.
func requireGuest(cmd *cobra.Command) *cobra.Command {
	return annotate(cmd, guardGuest)
}

func annotate(cmd *cobra.Command, kind string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[guardAnnotation] = kind
	return cmd
}

// installGuards wraps the RunE of every annotated command in the tree.
func installGuards(cmd *cobra.Command) {
	for _, child := range cmd.Commands() {
		installGuards(child)
	}

	kind := cmd.Annotations[guardAnnotation]
	if kind == "" || cmd.RunE == nil {
		return
	}

	run := cmd.RunE
	cmd.RunE = func(c *cobra.Command, args []string) error {
		proceed, err := enforce(c.Context(), kind, locationOf(c))
		if err != nil || !proceed {
			return err
		}
		return run(c, args)
	}
}

// enforce settles the session and applies the command's guard. It reports
// whether the command itself should run.
func enforce(ctx context.Context, kind string, requested guard.Location) (bool, error) {
	return apply(ctx, kind, app.session.CheckSession(ctx), requested)
}

// apply acts on the guard decision for state. Only Render runs the command;
// a session that has not settled never passes either guard.
func apply(ctx context.Context, kind string, state session.State, requested guard.Location) (bool, error) {
	switch kind {
	case guardAuth:
		decision := guard.RequireAuth(state, requested)
		switch decision.Action {
		case guard.Render:
			return true, nil
		case guard.Redirect:
			return signInAndResume(ctx, decision, requested)
		default:
			logger.Debug("Session not settled", "status", state.Status, "path", requested.Path)
			return false, clierrors.NotLoggedInError()
		}

	case guardGuest:
		decision := guard.RequireGuest(state, requested)
		switch decision.Action {
		case guard.Render:
			return true, nil
		case guard.Redirect:
			output.PrintInfo("Already logged in as @%s.", state.Profile.Username)
			return false, navigate(ctx, decision.Target)
		default:
			logger.Debug("Session not settled", "status", state.Status, "path", requested.Path)
			return false, nil
		}
	}
	return true, nil
}

func signInAndResume(ctx context.Context, decision guard.Decision, requested guard.Location) (bool, error) {
	output.PrintWarning("You need to sign in to run '%s'.", commandName(requested))
	err := service.NewAuthService(app.env, app.session).Login(ctx, "", "")
	if errors.Is(err, prompter.ErrNoInput) {
		return false, clierrors.NotLoggedInError()
	}
	if err != nil {
		return false, err
	}

	// back to where the login redirect came from
	resume := guard.ReturnTarget(decision.Target)
	logger.Debug("Resuming after sign-in", "path", resume.Path)
	return resume.Path == requested.Path, nil
}

// navigate renders a guard redirect target.
func navigate(ctx context.Context, to guard.Location) error {
	switch to.Path {
	case guard.HomePath:
		return service.NewQuestionService(app.env).ListQuestions(ctx, service.PageOptions{})
	case guard.LoginPath:
		return service.NewAuthService(app.env, app.session).Login(ctx, "", "")
	default:
		output.PrintInfo("Run 'sal %s' to continue.", commandName(to))
		return nil
	}
}

// locationOf maps a command to a path: "sal questions list" is /questions/list.
func locationOf(cmd *cobra.Command) guard.Location {
	parts := strings.Fields(cmd.CommandPath())
	if len(parts) > 0 {
		parts = parts[1:]
	}
	return guard.Location{Path: "/" + strings.Join(parts, "/")}
}

func commandName(loc guard.Location) string {
	return strings.ReplaceAll(strings.TrimPrefix(loc.Path, "/"), "/", " ")
}
