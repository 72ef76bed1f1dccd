package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/salqa/sal/cli/pkg/client"
	"github.com/salqa/sal/cli/pkg/config"
	"github.com/salqa/sal/cli/pkg/credentials"
	clierrors "github.com/salqa/sal/cli/pkg/errors"
	"github.com/salqa/sal/cli/pkg/events"
	"github.com/salqa/sal/cli/pkg/logger"
	"github.com/salqa/sal/cli/pkg/output"
	"github.com/salqa/sal/cli/pkg/service"
	"github.com/salqa/sal/cli/pkg/session"
	"github.com/salqa/sal/cli/pkg/vote"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
	assumeYes  bool
)

// app is the per-process state shared by every command.
var app struct {
	env     *service.Env
	session *session.Store
}

var rootCmd = &cobra.Command{
	Use:   "sal",
	Short: "Sal CLI - ask and answer questions from the terminal",
	Long: `Sal CLI is a command-line client for the Sal question-and-answer
platform. Browse the feed, ask and answer questions, vote, and keep up
with your notifications without leaving the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("error initializing config: %w", err)
		}
		logger.Init(verbose)

		if outputFmt != "" {
			if !output.ValidateOutputFormat(outputFmt) {
				return clierrors.ValidationError(fmt.Sprintf("invalid output format %q (want text, json or table)", outputFmt), nil)
			}
			config.Override("output.format", outputFmt)
		}

		client.Init()
		app.env = service.NewEnv()
		app.session = session.New(session.RemoteAPI(), credentials.Default())
		go app.session.Watch(cmd.Context(), events.AuthError)

		logger.Debug("Command started", "command", cmd.CommandPath(), "base_url", config.GetString("api.base_url"))
		return nil
	},
}

// Execute runs the command tree until completion or interrupt.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	installGuards(rootCmd)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprint(os.Stderr, clierrors.FormatError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/sal/cli/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "Output format: text, json, table")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Skip confirmation prompts")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(answersCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(versionCmd)
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, clierrors.ValidationError(fmt.Sprintf("invalid %s id %q", what, s), err)
	}
	return id, nil
}

// parseVote reads a vote direction argument. A blank argument is an error,
// not "none".
func parseVote(s string) (vote.Direction, error) {
	if strings.TrimSpace(s) == "" {
		return vote.None, clierrors.ValidationError("vote direction is required (up, down or none)", nil)
	}
	dir, err := vote.ParseDirection(s)
	if err != nil {
		return vote.None, clierrors.ValidationError(err.Error(), err)
	}
	return dir, nil
}
