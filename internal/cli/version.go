package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oarkflow/muuk"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("muuk %s\n", muuk.Version)
		if muuk.GitCommit != "" {
			fmt.Printf("  commit: %s\n", muuk.GitCommit)
		}
		if muuk.BuildDate != "" {
			fmt.Printf("  built:  %s\n", muuk.BuildDate)
		}
	},
}
