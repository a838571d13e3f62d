package cli

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/oarkflow/muuk/internal/manifest"
	"github.com/oarkflow/muuk/internal/schema"
	"github.com/oarkflow/muuk/internal/toolcheck"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate muuk.toml and report missing external tools",
	Long: `Checks muuk.toml against the manifest schema and reports every
missing external tool (git, ninja, cmake, clang-scan-deps). Performs no
dependency resolution and writes nothing to disk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(manifest.ManifestFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", manifest.ManifestFile, err)
		}

		var root map[string]any
		if err := toml.Unmarshal(data, &root); err != nil {
			return fmt.Errorf("parsing %s: %w", manifest.ManifestFile, err)
		}

		result := schema.NewValidator().Validate(root)
		if result.Valid {
			fmt.Println("muuk.toml: OK")
		} else {
			for _, e := range result.Errors {
				fmt.Printf("muuk.toml: %s\n", e.Error())
			}
		}

		missing := toolcheck.CheckAll()
		for _, tool := range missing {
			status := "missing"
			if tool.Optional {
				status = "missing (optional)"
			}
			fmt.Printf("%s: %s — %s\n", tool.Name, status, tool.Description)
		}

		if !result.Valid {
			return fmt.Errorf("muuk.toml failed validation")
		}
		for _, tool := range missing {
			if !tool.Optional {
				return fmt.Errorf("required tool %q not found on PATH", tool.Binary)
			}
		}
		return nil
	},
}
