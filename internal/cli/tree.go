package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oarkflow/muuk/internal/orchestrate"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the resolved dependency graph",
	Long: `Fetches and resolves dependencies exactly as install would, then
prints the resulting graph in dependency-before-dependent order without
writing muuk.lock or muuk.lock.toml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		proj, err := orchestrate.Load(orchestrate.Options{Jobs: jobs})
		if err != nil {
			return err
		}
		graph, err := proj.Resolve(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("%s %s\n", proj.Base.Name, proj.Base.Version)
		for _, ref := range graph.Order {
			pkg := graph.Find(ref.Name, ref.Version)
			if pkg == nil {
				continue
			}
			fmt.Printf("├── %s %s\n", ref.Name, ref.Version)
			for _, dep := range pkg.Dependencies.SortedEntries() {
				fmt.Printf("│   └── %s %s\n", dep.Name, dep.Version)
			}
		}
		return nil
	},
}
