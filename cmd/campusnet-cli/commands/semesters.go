package commands

import (
	"fmt"

	"campusnet-client/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(semestersCmd)
}

var semestersCmd = &cobra.Command{
	Use:   "semesters",
	Short: "Lists the semesters offered by the grade page.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		service, cleanup := createService(ctx)
		defer cleanup()

		semesters, err := service.ListSemesters(ctx)
		if err != nil {
			serviceutil.Fatal("failed to list semesters", err)
		}

		for _, semester := range semesters {
			marker := " "
			if semester.IsSelected {
				marker = "*"
			}
			fmt.Printf("%s %s  %s\n", marker, semester.Value, semester.DisplayName)
		}
	},
}
