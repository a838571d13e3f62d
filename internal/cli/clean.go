package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cleanAll bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove build output",
	Long: `Removes the build/ directory. With --all, also removes .muuk/
(fetched dependencies and the module-scan cache),
forcing the next install to start from nothing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.RemoveAll("build"); err != nil {
			return fmt.Errorf("removing build directory: %w", err)
		}
		fmt.Println("removed build/")

		if cleanAll {
			if err := os.RemoveAll(".muuk"); err != nil {
				return fmt.Errorf("removing .muuk directory: %w", err)
			}
			fmt.Println("removed .muuk/")
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "also remove fetched dependencies and caches under .muuk/")
}
