package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/oarkflow/muuk/internal/manifest"
)

var (
	addVersion  string
	addGit      string
	addMuukPath string
	addSys      bool
	addTarget   string
)

var addCmd = &cobra.Command{
	Use:   "add <author>/<repo>",
	Short: "Add a dependency to muuk.toml",
	Long: `Declares a new entry under [dependencies] (or, with --target, under
[build.<target>.dependencies]) and rewrites muuk.toml in place. The
dependency's name is the last path segment of <author>/<repo>.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := depName(args[0])

		entry := map[string]any{}
		switch {
		case addSys:
			entry["system"] = true
			if addVersion != "" {
				entry["version"] = addVersion
			}
		case addMuukPath != "":
			entry["path"] = addMuukPath
			if addVersion != "" {
				entry["version"] = addVersion
			}
		case addGit != "":
			entry["git"] = addGit
			if addVersion != "" {
				entry["version"] = addVersion
			} else {
				entry["version"] = "0.0.0"
			}
		default:
			entry["git"] = "https://github.com/" + args[0]
			if addVersion != "" {
				entry["version"] = addVersion
			} else {
				entry["version"] = "0.0.0"
			}
		}

		return editManifest(".", func(root map[string]any) error {
			return putDependency(root, addTarget, name, entry)
		})
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a dependency from muuk.toml",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		return editManifest(".", func(root map[string]any) error {
			return removeDependency(root, addTarget, name)
		})
	},
}

func init() {
	addCmd.Flags().StringVar(&addVersion, "version", "", "dependency version constraint")
	addCmd.Flags().StringVar(&addGit, "git", "", "git URL to fetch the dependency from")
	addCmd.Flags().StringVar(&addMuukPath, "muuk-path", "", "local filesystem path to the dependency")
	addCmd.Flags().BoolVar(&addSys, "sys", false, "resolve against a system-installed package instead of fetching")
	addCmd.Flags().StringVar(&addTarget, "target", "", "add under [build.<target>.dependencies] instead of [dependencies]")

	removeCmd.Flags().StringVar(&addTarget, "target", "", "remove from [build.<target>.dependencies] instead of [dependencies]")
}

func depName(spec string) string {
	parts := strings.Split(spec, "/")
	return parts[len(parts)-1]
}

// editManifest loads dir's muuk.toml into a raw table, lets mutate edit it
// in place, then rewrites the file. Dependency edits work on the raw TOML
// tree rather than through manifest.Package because the manifest package
// has no Package -> TOML serializer: it is write-once, parse-only.
func editManifest(dir string, mutate func(root map[string]any) error) error {
	path := filepath.Join(dir, manifest.ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var root map[string]any
	if err := toml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := mutate(root); err != nil {
		return err
	}

	out, err := toml.Marshal(root)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return os.WriteFile(path, out, 0o644)
}

func putDependency(root map[string]any, target, name string, entry map[string]any) error {
	table, err := dependencyTable(root, target, true)
	if err != nil {
		return err
	}
	table[name] = entry
	fmt.Printf("added dependency %q\n", name)
	return nil
}

func removeDependency(root map[string]any, target, name string) error {
	table, err := dependencyTable(root, target, false)
	if err != nil {
		return err
	}
	if table == nil {
		return fmt.Errorf("no dependency %q declared", name)
	}
	if _, ok := table[name]; !ok {
		return fmt.Errorf("no dependency %q declared", name)
	}
	delete(table, name)
	fmt.Printf("removed dependency %q\n", name)
	return nil
}

// dependencyTable navigates to [dependencies] or [build.<target>.dependencies],
// creating intermediate tables along the way when create is true.
func dependencyTable(root map[string]any, target string, create bool) (map[string]any, error) {
	if target == "" {
		return subTable(root, "dependencies", create)
	}

	builds, err := subTable(root, "build", create)
	if err != nil || builds == nil {
		return nil, err
	}
	buildEntry, ok := builds[target].(map[string]any)
	if !ok {
		if !create {
			return nil, nil
		}
		buildEntry = map[string]any{}
		builds[target] = buildEntry
	}
	return subTable(buildEntry, "dependencies", create)
}

func subTable(root map[string]any, key string, create bool) (map[string]any, error) {
	raw, ok := root[key]
	if !ok {
		if !create {
			return nil, nil
		}
		table := map[string]any{}
		root[key] = table
		return table, nil
	}
	table, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%q is not a table", key)
	}
	return table, nil
}
