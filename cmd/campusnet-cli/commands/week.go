package commands

import (
	"fmt"
	"time"

	"campusnet-client/lib/timezone"
	"campusnet-client/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var weekDate *string

func init() {
	weekDate = weekCmd.Flags().String("date", "", "A day inside the week to fetch, formatted dd.mm.yyyy. Defaults to today.")
	rootCmd.AddCommand(weekCmd)
}

func resolveDate(raw string) time.Time {
	if raw == "" {
		return timezone.Now()
	}
	date, err := time.ParseInLocation("02.01.2006", raw, timezone.Location)
	if err != nil {
		serviceutil.Fatal("failed to parse date", err)
	}
	return date
}

var weekCmd = &cobra.Command{
	Use:   "week [--date <dd.mm.yyyy>]",
	Short: "Fetches and prints the timetable for one week.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		service, cleanup := createService(ctx)
		defer cleanup()

		week, err := service.FetchWeek(ctx, resolveDate(*weekDate))
		if err != nil {
			serviceutil.Fatal("failed to fetch week", err)
		}

		fmt.Printf("week of %s\n", week.WeekStart.Format("02.01.2006"))
		for _, day := range week.Days {
			if len(day.Events) == 0 {
				continue
			}
			fmt.Printf("\n%s\n", day.Date.Format("Mon 02.01."))
			for _, event := range day.Events {
				title := event.Title
				if event.FullTitle != "" {
					title = event.FullTitle
				}
				fmt.Printf("  %s - %s  %s", event.StartTime, event.EndTime, title)
				if event.Room != "" {
					fmt.Printf("  [%s]", event.Room)
				}
				if event.Lecturer != "" {
					fmt.Printf("  (%s)", event.Lecturer)
				}
				fmt.Println()
			}
		}
	},
}
