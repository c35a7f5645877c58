package commands

import (
	"fmt"
	"os"

	"campusnet-client/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var (
	icsDate *string
	icsOut  *string
)

func init() {
	icsDate = icsCmd.Flags().String("date", "", "A day inside the week to export, formatted dd.mm.yyyy. Defaults to today.")
	icsOut = icsCmd.Flags().String("out", "", "The file to write to. Defaults to stdout.")
	rootCmd.AddCommand(icsCmd)
}

var icsCmd = &cobra.Command{
	Use:   "ics [--date <dd.mm.yyyy>] [--out <path/to/week.ics>]",
	Short: "Exports one week of the timetable as an iCalendar file.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		service, cleanup := createService(ctx)
		defer cleanup()

		serialized, err := service.ExportWeekICS(ctx, resolveDate(*icsDate))
		if err != nil {
			serviceutil.Fatal("failed to export week", err)
		}

		if *icsOut == "" {
			fmt.Print(serialized)
			return
		}
		if err := os.WriteFile(*icsOut, []byte(serialized), 0644); err != nil {
			serviceutil.Fatal("failed to write ics file", err)
		}
	},
}
