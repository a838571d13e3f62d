package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oarkflow/muuk/internal/orchestrate"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Fetch and resolve dependencies, writing muuk.lock",
	RunE: func(cmd *cobra.Command, args []string) error {
		proj, err := orchestrate.Load(orchestrate.Options{Jobs: jobs})
		if err != nil {
			return err
		}
		return proj.Install(context.Background())
	},
}
