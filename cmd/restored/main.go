// Command restored drives a firmware restore session against a device in
// restore mode. It is a thin cobra wrapper around pkg/restore and
// pkg/session; see cmd/restored/commands for the command tree.
package main

import (
	"fmt"
	"os"

	"github.com/restoreos/restored/cmd/restored/commands"
	_ "github.com/restoreos/restored/pkg/firmware/families"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
