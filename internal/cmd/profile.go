package cmd

import (
	"github.com/salqa/sal/cli/pkg/service"
	"github.com/salqa/sal/cli/pkg/validation"
	"github.com/spf13/cobra"
)

var profileFields = struct {
	firstName, lastName, email, job, bio string
}{}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Your profile",
	Long:  "View and edit your own profile",
}

var profileShowCmd = requireAuth(&cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewProfileService(app.env)
		return svc.ShowProfile(cmd.Context())
	},
})

var profileUpdateCmd = requireAuth(&cobra.Command{
	Use:   "update",
	Short: "Edit your profile",
	Long:  "Update profile fields. Only the flags given are changed; pass an empty value to clear a field.",
	Example: `  sal profile update --job "Backend engineer"
  sal profile update --bio ""`,
	RunE: func(cmd *cobra.Command, args []string) error {
		form := validation.ProfileUpdate{
			FirstName: changed(cmd, "first-name", profileFields.firstName),
			LastName:  changed(cmd, "last-name", profileFields.lastName),
			Email:     changed(cmd, "email", profileFields.email),
			Job:       changed(cmd, "job", profileFields.job),
			Bio:       changed(cmd, "bio", profileFields.bio),
		}

		svc := service.NewProfileService(app.env)
		_, err := svc.UpdateProfile(cmd.Context(), form)
		return err
	},
})

var profileAvatarCmd = requireAuth(&cobra.Command{
	Use:   "avatar <image-file>",
	Short: "Upload a new avatar",
	Long:  "Upload a JPEG, PNG, GIF or WebP image (max 5 MB) and set it as your avatar.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewProfileService(app.env)
		_, err := svc.UploadAvatar(cmd.Context(), args[0])
		return err
	},
})

var profileRemoveAvatarCmd = requireAuth(&cobra.Command{
	Use:   "remove-avatar",
	Short: "Remove your avatar",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewProfileService(app.env)
		_, err := svc.RemoveAvatar(cmd.Context(), assumeYes)
		return err
	},
})

// changed returns &value when the flag was given on the command line.
func changed(cmd *cobra.Command, flag, value string) *string {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &value
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profileFields.firstName, "first-name", "", "First name")
	profileUpdateCmd.Flags().StringVar(&profileFields.lastName, "last-name", "", "Last name")
	profileUpdateCmd.Flags().StringVar(&profileFields.email, "email", "", "Email address")
	profileUpdateCmd.Flags().StringVar(&profileFields.job, "job", "", "Job title")
	profileUpdateCmd.Flags().StringVar(&profileFields.bio, "bio", "", "Short bio (max 500 characters)")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)
	profileCmd.AddCommand(profileAvatarCmd)
	profileCmd.AddCommand(profileRemoveAvatarCmd)
}
