package cmd

import (
	"time"

	"github.com/salqa/sal/cli/pkg/config"
	"github.com/salqa/sal/cli/pkg/service"
	"github.com/spf13/cobra"
)

var (
	notifAll      bool
	notifUnread   bool
	watchInterval time.Duration
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"n"},
	Short:   "Notification commands",
	Long:    "View and manage notifications",
}

var notificationsListCmd = requireAuth(&cobra.Command{
	Use:   "list",
	Short: "List notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		notifService := service.NewNotificationService(app.env)
		return notifService.ListNotifications(cmd.Context(), service.PageOptions{All: notifAll}, notifUnread)
	},
})

var notificationsReadCmd = requireAuth(&cobra.Command{
	Use:   "read <notification-id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "notification")
		if err != nil {
			return err
		}
		notifService := service.NewNotificationService(app.env)
		return notifService.MarkNotificationAsRead(cmd.Context(), id)
	},
})

var notificationsWatchCmd = requireAuth(&cobra.Command{
	Use:   "watch",
	Short: "Watch for new notifications",
	Long:  "Poll for new notifications and print them as they arrive. Stop with Ctrl+C.",
	RunE: func(cmd *cobra.Command, args []string) error {
		interval := watchInterval
		if !cmd.Flags().Changed("interval") {
			interval = config.GetDuration("notifications.poll_interval")
		}
		notifService := service.NewNotificationService(app.env)
		return notifService.WatchNotifications(cmd.Context(), interval)
	},
})

func init() {
	notificationsListCmd.Flags().BoolVar(&notifAll, "all", false, "Load every page without asking")
	notificationsListCmd.Flags().BoolVar(&notifUnread, "unread", false, "Only show unread notifications")
	notificationsWatchCmd.Flags().DurationVar(&watchInterval, "interval", 30*time.Second, "Polling interval")

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsWatchCmd)
}
