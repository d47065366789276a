package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/titpetric/cli"

	"github.com/roxid-ci/roxid/taskcache"
)

// TaskCmd provides the `task` command: list|fetch|clear|path over the
// local task cache (spec.md §6.4/§6.5).
func TaskCmd() *cli.Command {
	return &cli.Command{
		Name:  "task",
		Title: "Manage the task cache",
		Bind:  func(fs *pflag.FlagSet) {},
		Run: func(ctx context.Context, args []string) error {
			return runTaskCmd(args)
		},
	}
}

func runTaskCmd(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("task: usage: task <list|fetch|clear|path> [ref]")
	}
	cache := taskcache.New()

	switch args[0] {
	case "list":
		names, err := cache.List()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	case "fetch":
		if len(args) < 2 {
			return fmt.Errorf("task fetch: usage: task fetch <name>@<major>")
		}
		name, major, ok := splitTaskRefArg(args[1])
		if !ok {
			return fmt.Errorf("task fetch: %q must be NAME@MAJOR", args[1])
		}
		t, err := cache.Fetch(name, major)
		if err != nil {
			return err
		}
		fmt.Printf("%s@%s is cached at %s\n", t.Manifest.Name, t.Manifest.Version, t.Dir)
		return nil
	case "clear":
		return cache.Clear()
	case "path":
		fmt.Println(cache.Path())
		return nil
	default:
		return fmt.Errorf("task: unknown subcommand %q", args[0])
	}
}

func splitTaskRefArg(ref string) (name, major string, ok bool) {
	i := strings.LastIndexByte(ref, '@')
	if i <= 0 || i == len(ref)-1 {
		return "", "", false
	}
	return ref[:i], ref[i+1:], true
}
