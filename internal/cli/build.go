package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/oarkflow/muuk/internal/compiler"
	"github.com/oarkflow/muuk/internal/modules"
	"github.com/oarkflow/muuk/internal/orchestrate"
	"github.com/oarkflow/muuk/internal/scancache"
)

var (
	buildTarget   string
	buildCompiler string
	buildProfile  string
	buildWatch    bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Plan the build and emit build.ninja plus compile_commands.json",
	Long: `Installs dependencies first (as muuk install does), then resolves
C++20 module dependencies across every compiled source and writes
build.ninja and compile_commands.json under build/<profile>. With --watch,
re-installs and rebuilds on every manifest or source change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := orchestrate.Options{
			Profile: buildProfile,
			Target:  buildTarget,
			Jobs:    jobs,
		}
		if buildCompiler != "" {
			c, err := compiler.FromString(buildCompiler)
			if err != nil {
				return err
			}
			opts.Compiler = c
		}

		proj, err := orchestrate.Load(opts)
		if err != nil {
			return err
		}

		scanner := modules.NewScanner()
		if cache, err := scancache.Open(".muuk/scancache"); err == nil {
			scanner.Cache = cache
		} else {
			log.Warn("module-scan cache unavailable", "err", err)
		}
		ctx := context.Background()

		if err := proj.Install(ctx); err != nil {
			return err
		}
		if err := proj.Build(ctx, scanner); err != nil {
			return err
		}

		if buildWatch {
			fmt.Println("watching for changes, press Ctrl+C to stop")
			return proj.Watch(ctx, scanner, func(err error) {
				log.Error("rebuild failed", "err", err)
			})
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildTarget, "target", "t", "", "build only the named [build.<target>] entry")
	buildCmd.Flags().StringVarP(&buildCompiler, "compiler", "c", "", "toolchain to build with (gcc, clang, msvc)")
	buildCmd.Flags().StringVarP(&buildProfile, "profile", "p", "release", "build profile to resolve flags from")
	buildCmd.Flags().BoolVar(&buildWatch, "watch", false, "re-run install and build whenever a source or manifest file changes")
}
