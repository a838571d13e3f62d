// Command muuk is the CLI entry point.
package main

import (
	"os"

	"github.com/oarkflow/muuk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
