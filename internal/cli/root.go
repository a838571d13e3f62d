// Package cli implements muuk's command-line surface (spec.md §6.4): init,
// add, remove, install, build, clean, run, plus the supplemented check and
// tree diagnostics (SPEC_FULL.md §7). Grounded on the teacher's cmd/root.go
// for persistent-flag wiring and cobra.OnInitialize structure, adapted from
// a release-pipeline command set to muuk's package-manager one.
package cli

import (
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/oarkflow/muuk/internal/toolcheck"
)

var (
	debug       bool
	verbose     bool
	jobs        int
	autoInstall bool
	skipInstall bool
)

// rootCmd is muuk's top-level command.
var rootCmd = &cobra.Command{
	Use:   "muuk",
	Short: "A C++ package manager and Ninja build-file generator",
	Long: `muuk resolves a project's TOML-declared C++ dependencies, plans a
build against GCC, Clang or MSVC, and emits a Ninja build file plus a
compile_commands.json compilation database.

Example:
  muuk init                 # scaffold a new project
  muuk add fmt --git <url>  # declare a dependency
  muuk install               # fetch and resolve dependencies
  muuk build -p release      # emit build.ninja + compile_commands.json`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0), "maximum concurrent fetch/scan jobs")
	rootCmd.PersistentFlags().BoolVar(&autoInstall, "auto-install", false, "automatically install missing tools (git, ninja, cmake, clang-scan-deps) without prompting")
	rootCmd.PersistentFlags().BoolVar(&skipInstall, "skip-install", false, "never prompt to install missing tools")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(versionCmd)
}

func initLogging() {
	switch {
	case debug:
		log.SetLevel(log.DebugLevel)
	case verbose:
		log.SetLevel(log.InfoLevel)
	default:
		log.SetLevel(log.WarnLevel)
	}

	if autoInstall {
		toolcheck.AutoInstall = true
		toolcheck.PromptForInstall = false
	} else if skipInstall {
		toolcheck.AutoInstall = false
		toolcheck.PromptForInstall = false
	}
}

