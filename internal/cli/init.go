package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oarkflow/muuk/internal/scaffold"
)

var (
	initAuthor  string
	initVersion string
	initLicense string
)

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Scaffold a new muuk project",
	Long: `Writes a muuk.toml, a starter src/ tree and a LICENSE file into the
current directory (or the named directory, if given). Fails if muuk.toml
already exists.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		name := ""
		if len(args) == 1 {
			dir = args[0]
			name = filepath.Base(args[0])
		}
		if name == "" {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			name = filepath.Base(abs)
		}

		opts := scaffold.Options{
			ProjectName: name,
			Author:      initAuthor,
			Version:     initVersion,
			License:     initLicense,
		}
		if err := scaffold.Init(dir, opts); err != nil {
			return err
		}
		fmt.Printf("initialized muuk project %q in %s\n", name, dir)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initAuthor, "author", "", "project author recorded in muuk.toml and LICENSE")
	initCmd.Flags().StringVar(&initVersion, "version", "0.1.0", "initial project version")
	initCmd.Flags().StringVar(&initLicense, "license", "MIT", "license template (MIT or UNLICENSED)")
}
