package cmd

import (
	"github.com/salqa/sal/cli/pkg/service"
	"github.com/spf13/cobra"
)

var userQuestionsAll bool

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Look up other users",
}

var usersShowCmd = requireAuth(&cobra.Command{
	Use:   "show <username>",
	Short: "Show a user's public profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userSvc := service.NewUserService(app.env)
		return userSvc.ShowUser(cmd.Context(), args[0])
	},
})

var usersQuestionsCmd = requireAuth(&cobra.Command{
	Use:   "questions <username>",
	Short: "List the questions a user has asked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userSvc := service.NewUserService(app.env)
		return userSvc.ListUserQuestions(cmd.Context(), args[0], service.PageOptions{All: userQuestionsAll})
	},
})

func init() {
	usersQuestionsCmd.Flags().BoolVar(&userQuestionsAll, "all", false, "Load every page without asking")

	usersCmd.AddCommand(usersShowCmd)
	usersCmd.AddCommand(usersQuestionsCmd)
}
