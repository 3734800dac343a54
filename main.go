// Command vicut applies Vim-style editing commands to text read from
// standard input, files, or a literal string, and emits either the
// transformed buffer or captured slices of it.
package main

import (
	"fmt"
	"os"

	"github.com/vicut/vicut/cmd"
)

// Build information injected via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	versionString := fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	cmd.SetVersion(versionString)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
