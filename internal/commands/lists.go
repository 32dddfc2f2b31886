package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"automator/internal/config"
	"automator/internal/exitcode"
	"automator/internal/output"
	"automator/internal/service"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command.
type ListsCmd struct{}

func (c *ListsCmd) Name() string          { return "lists" }
func (c *ListsCmd) Aliases() []string     { return nil }
func (c *ListsCmd) Synopsis() string      { return "List task lists" }
func (c *ListsCmd) Usage() string         { return "automator lists [common flags]" }
func (c *ListsCmd) Requires() Requirement { return NeedsOwner }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	lists := svc.Lists(ctx, cfg.OwnerID)
	if len(lists) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no lists found")
		}
		return exitcode.Success
	}
	for i, list := range lists {
		output.FormatListName(out, 'a'+rune(i), list)
	}
	return exitcode.Success
}
