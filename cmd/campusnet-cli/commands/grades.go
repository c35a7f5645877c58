package commands

import (
	"fmt"

	"campusnet-client/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var gradesSemester *string

func init() {
	gradesSemester = gradesCmd.Flags().String("semester", "", "The semester id to fetch. Defaults to the portal's selected one.")
	rootCmd.AddCommand(gradesCmd)
}

var gradesCmd = &cobra.Command{
	Use:   "grades [--semester <id>]",
	Short: "Fetches and prints the grade report for a semester.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		service, cleanup := createService(ctx)
		defer cleanup()

		report, err := service.FetchGrades(ctx, *gradesSemester)
		if err != nil {
			serviceutil.Fatal("failed to fetch grades", err)
		}

		for _, module := range report.Modules {
			grade := module.GradeValue
			if grade == "" {
				grade = "-"
			}
			fmt.Printf("%-12s %-40s %4s  %s (%s)\n",
				module.Id, module.Name, module.Credits, grade, module.State)
		}
		fmt.Printf("\nGPA %s, credits %s/%s\n",
			report.GpaTotal, report.CreditsGained, report.CreditsTotal)
	},
}
