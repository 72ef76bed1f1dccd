package cmd

import (
	"github.com/salqa/sal/cli/pkg/service"
	"github.com/salqa/sal/cli/pkg/validation"
	"github.com/spf13/cobra"
)

var (
	loginUsername string
	registerForm  validation.Registration
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Manage your Sal session",
}

var registerCmd = requireGuest(&cobra.Command{
	Use:   "register",
	Short: "Create a new Sal account",
	Long:  "Register a new account. Fields not given as flags are prompted for; the password is always prompted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		authSvc := service.NewAuthService(app.env, app.session)
		return authSvc.Register(cmd.Context(), registerForm)
	},
})

var loginCmd = requireGuest(&cobra.Command{
	Use:   "login [username]",
	Short: "Login to Sal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := loginUsername
		if len(args) == 1 {
			username = args[0]
		}
		authSvc := service.NewAuthService(app.env, app.session)
		return authSvc.Login(cmd.Context(), username, "")
	},
})

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from Sal",
	RunE: func(cmd *cobra.Command, args []string) error {
		authSvc := service.NewAuthService(app.env, app.session)
		return authSvc.Logout(cmd.Context())
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Display current authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		authSvc := service.NewAuthService(app.env, app.session)
		return authSvc.Me(cmd.Context())
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")

	registerCmd.Flags().StringVarP(&registerForm.Username, "username", "u", "", "Username (3-30 letters, digits or underscores)")
	registerCmd.Flags().StringVar(&registerForm.FirstName, "first-name", "", "First name")
	registerCmd.Flags().StringVar(&registerForm.LastName, "last-name", "", "Last name")
	registerCmd.Flags().StringVar(&registerForm.Email, "email", "", "Email address")

	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(meCmd)
}
