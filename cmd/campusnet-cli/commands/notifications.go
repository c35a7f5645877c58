package commands

import (
	"fmt"

	campusnet "campusnet-client/lib/scrapers/campusnet"
	"campusnet-client/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(notificationsCmd)
}

func notificationLabel(kind campusnet.NotificationType) string {
	switch kind {
	case campusnet.NotificationScheduleChange:
		return "schedule change"
	case campusnet.NotificationScheduleSet:
		return "schedule set"
	}
	return "message"
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Reads the message inbox.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		service, cleanup := createService(ctx)
		defer cleanup()

		notifications, err := service.FetchNotifications(ctx)
		if err != nil {
			serviceutil.Fatal("failed to fetch notifications", err)
		}

		for _, item := range notifications {
			unread := " "
			if item.IsUnread {
				unread = "!"
			}
			fmt.Printf("%s %s %s  [%s]  %s\n",
				unread, item.Date, item.Time, notificationLabel(item.Type), item.Subject)
		}
	},
}
