// Package version implements the `roxid version` command, reporting the
// build's version/commit metadata the way the teacher's root main.go
// wires its own version subcommand.
package version

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/titpetric/cli"
)

// Name is the subcommand's title, shown in the app's command list.
const Name = "Print version information"

// Info carries the build-time version metadata main.go fills in via
// -ldflags, mirroring the teacher's own Version/Commit/CommitTime/Branch
// main.go variables.
type Info struct {
	Version    string
	Commit     string
	CommitTime string
	Branch     string
}

// NewCommand returns the cli.Command that prints info.
func NewCommand(info Info) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Title: Name,
		Bind:  func(fs *pflag.FlagSet) {},
		Run: func(ctx context.Context, args []string) error {
			fmt.Printf("roxid %s\n", orDev(info.Version))
			fmt.Printf("  commit:  %s\n", orUnknown(info.Commit))
			fmt.Printf("  built:   %s\n", orUnknown(info.CommitTime))
			fmt.Printf("  branch:  %s\n", orUnknown(info.Branch))
			return nil
		},
	}
}

func orDev(s string) string {
	if s == "" {
		return "dev"
	}
	return s
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
