package commands

import (
	"fmt"

	campusnet "campusnet-client/lib/scrapers/campusnet"
	"campusnet-client/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(changesCmd)
}

func printEvent(event campusnet.Event) string {
	return fmt.Sprintf("%s %s - %s %s", event.Title, event.StartTime, event.EndTime, event.Room)
}

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Refetches every cached snapshot and prints what changed.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		service, cleanup := createService(ctx)
		defer cleanup()

		changeSets, gradeChanges, err := service.CheckForChanges(ctx)
		if err != nil {
			serviceutil.Fatal("failed to check for changes", err)
		}

		if len(changeSets) == 0 && gradeChanges == nil {
			fmt.Println("no changes")
			return
		}

		for _, changes := range changeSets {
			fmt.Printf("week of %s:\n", changes.WeekStart.Format("02.01.2006"))
			for _, event := range changes.AddedEvents {
				fmt.Printf("  + %s\n", printEvent(event))
			}
			for _, event := range changes.RemovedEvents {
				fmt.Printf("  - %s\n", printEvent(event))
			}
			for _, change := range changes.ModifiedEvents {
				fmt.Printf("  ~ %s -> %s\n", printEvent(change.Old), printEvent(change.New))
			}
		}

		if gradeChanges != nil {
			fmt.Println("grades:")
			for _, line := range gradeChanges.NewGrades {
				fmt.Printf("  new: %s\n", line)
			}
			for _, line := range gradeChanges.UpdatedGrades {
				fmt.Printf("  updated: %s\n", line)
			}
		}
	},
}
