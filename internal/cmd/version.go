package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/retracehq/retrace/internal/build"
)

func getCmdVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show application version",
		Long:  `Show the application version and exit.`,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(fmt.Sprintf("retrace v%s", build.Version))
		},
	}
}
