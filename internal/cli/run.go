package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oarkflow/muuk/internal/manifest"
	"github.com/oarkflow/muuk/internal/script"
)

var runCmd = &cobra.Command{
	Use:   "run <script> [args...]",
	Short: "Run a named script declared under [scripts]",
	Long: `With no arguments, lists every script declared in muuk.toml. With a
script name, runs it through the shell, appending any further arguments.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pkg, err := manifest.LoadFile(".", "", "")
		if err != nil {
			return err
		}

		if len(args) == 0 {
			names := script.List(pkg.Scripts)
			if len(names) == 0 {
				fmt.Println("no scripts declared")
				return nil
			}
			for _, name := range names {
				fmt.Printf("%s: %s\n", name, pkg.Scripts[name])
			}
			return nil
		}

		runner := script.NewRunner(pkg.BasePath)
		return runner.Run(context.Background(), pkg.Scripts, args[0], args[1:])
	},
}
