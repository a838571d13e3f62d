// Package toolcheck detects the external tools muuk shells out to but
// does not bundle (git, ninja, cmake, clang-scan-deps), grounded on the
// teacher's internal/deps dependency-detection-and-install package: the
// same Tool{Name,Binary,InstallCmds} shape and findInstallCommand/
// runInstallCommand plumbing, trimmed to muuk's actual external
// collaborators (spec.md §1 Out-of-scope: "invocation of ninja/cmake
// themselves", "clang-scan-deps is invoked as a subprocess").
package toolcheck

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// AutoInstall and PromptForInstall mirror the teacher's package-level
// install-behavior switches, set from the CLI's --auto-install/
// --skip-install flags.
var (
	AutoInstall      = false
	PromptForInstall = true
)

// Tool is one external binary muuk depends on but does not vendor.
type Tool struct {
	Name        string
	Binary      string
	Description string
	InstallCmds []string // "<goos>[:<pkg-manager>]:<command>" entries
	Optional    bool
}

// RequiredTools are the external collaborators named in spec.md §1.
var RequiredTools = map[string]Tool{
	"git": {
		Name:        "Git",
		Binary:      "git",
		Description: "fetches and pins dependency sources",
		InstallCmds: []string{
			"linux:apt:sudo apt-get update && sudo apt-get install -y git",
			"linux:pacman:sudo pacman -S git",
			"darwin:brew install git",
			"windows:choco install git",
		},
	},
	"ninja": {
		Name:        "Ninja",
		Binary:      "ninja",
		Description: "executes the generated build.ninja",
		InstallCmds: []string{
			"linux:apt:sudo apt-get update && sudo apt-get install -y ninja-build",
			"linux:pacman:sudo pacman -S ninja",
			"darwin:brew install ninja",
			"windows:choco install ninja",
		},
	},
	"cmake": {
		Name:        "CMake",
		Binary:      "cmake",
		Description: "configures [[external]] CMake subprojects",
		InstallCmds: []string{
			"linux:apt:sudo apt-get update && sudo apt-get install -y cmake",
			"darwin:brew install cmake",
			"windows:choco install cmake",
		},
		Optional: true,
	},
	"clang-scan-deps": {
		Name:        "clang-scan-deps",
		Binary:      "clang-scan-deps",
		Description: "scans C++20 module dependencies (P1689)",
		InstallCmds: []string{
			"linux:apt:sudo apt-get update && sudo apt-get install -y clang-tools",
			"darwin:brew install llvm",
			"windows:choco install llvm",
		},
		Optional: true,
	},
}

// IsAvailable reports whether binary is on PATH.
func IsAvailable(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

// CheckAll reports every RequiredTools entry that is missing, without
// prompting to install (used by `muuk check`, spec.md §7's supplemented
// diagnostics command).
func CheckAll() []Tool {
	var missing []Tool
	for _, tool := range RequiredTools {
		if !IsAvailable(tool.Binary) {
			missing = append(missing, tool)
		}
	}
	return missing
}

// CheckAndInstall looks up toolName in RequiredTools and ensures it is
// available, prompting or auto-installing per the package-level flags.
func CheckAndInstall(toolName string) error {
	tool, ok := RequiredTools[toolName]
	if !ok {
		return fmt.Errorf("toolcheck: unknown tool %q", toolName)
	}
	return CheckAndInstallTool(tool)
}

// CheckAndInstallTool is the teacher's CheckAndInstallTool, unchanged in
// shape: skip if already present, otherwise find an OS-appropriate
// install command, prompt (unless AutoInstall), run it, and verify.
func CheckAndInstallTool(tool Tool) error {
	if IsAvailable(tool.Binary) {
		return nil
	}

	log.Warn("tool not found", "tool", tool.Name, "binary", tool.Binary)

	if tool.Optional && !AutoInstall && !PromptForInstall {
		log.Info("skipping optional tool", "tool", tool.Name)
		return nil
	}

	installCmd := findInstallCommand(tool.InstallCmds)
	if installCmd == "" {
		if tool.Optional {
			log.Warn("no installation method available", "tool", tool.Name, "os", runtime.GOOS)
			return nil
		}
		return fmt.Errorf("no installation method available for %s on %s", tool.Name, runtime.GOOS)
	}

	if !AutoInstall && PromptForInstall {
		fmt.Printf("\n%s (%s) is required but not installed.\n", tool.Name, tool.Description)
		fmt.Printf("  install command: %s\n", installCmd)
		fmt.Print("  install now? [Y/n]: ")

		reader := bufio.NewReader(os.Stdin)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "" && response != "y" && response != "yes" {
			if tool.Optional {
				log.Info("skipping installation", "tool", tool.Name)
				return nil
			}
			return fmt.Errorf("installation declined for required tool: %s", tool.Name)
		}
	}

	log.Info("installing tool", "tool", tool.Name)
	if err := runInstallCommand(installCmd); err != nil {
		if tool.Optional {
			log.Warn("installation failed", "tool", tool.Name, "error", err)
			return nil
		}
		return fmt.Errorf("failed to install %s: %w", tool.Name, err)
	}

	if !IsAvailable(tool.Binary) {
		if tool.Optional {
			log.Warn("tool not available after installation", "tool", tool.Name)
			return nil
		}
		return fmt.Errorf("%s installed but not found in PATH", tool.Name)
	}

	log.Info("tool installed successfully", "tool", tool.Name)
	return nil
}

func findInstallCommand(cmds []string) string {
	goos := runtime.GOOS

	var pkgManager string
	if goos == "linux" {
		switch {
		case IsAvailable("apt-get") || IsAvailable("apt"):
			pkgManager = "apt"
		case IsAvailable("yum"):
			pkgManager = "yum"
		case IsAvailable("dnf"):
			pkgManager = "dnf"
		case IsAvailable("pacman"):
			pkgManager = "pacman"
		}
	}

	var fallback string
	for _, cmd := range cmds {
		parts := strings.SplitN(cmd, ":", 2)
		if len(parts) < 2 || parts[0] != goos {
			continue
		}

		remaining := parts[1]
		subParts := strings.SplitN(remaining, ":", 2)
		if len(subParts) == 2 {
			if subParts[0] == pkgManager {
				return subParts[1]
			}
			continue
		}
		if fallback == "" {
			fallback = remaining
		}
	}
	return fallback
}

func runInstallCommand(cmdStr string) error {
	log.Debug("running installation command", "cmd", cmdStr)
	cmd := exec.Command("sh", "-c", cmdStr)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}
