package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"automator/internal/config"
	"automator/internal/exitcode"
	"automator/internal/output"
	"automator/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `automator` (no args) and `automator list <list-name>`.
type ListCmd struct {
	open bool
}

// SetOpen restricts the output to open tasks (for testing).
func (c *ListCmd) SetOpen(open bool) {
	c.open = open
}

func (c *ListCmd) Name() string          { return "list" }
func (c *ListCmd) Aliases() []string     { return []string{"ls"} }
func (c *ListCmd) Synopsis() string      { return "List tasks" }
func (c *ListCmd) Usage() string         { return "automator list [--open] [<list-name>]" }
func (c *ListCmd) Requires() Requirement { return NeedsOwner }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.open, "open", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return c.listAll(ctx, cfg, svc, out)
	}
	return c.listOne(ctx, cfg, svc, strings.Join(args, " "), out, errOut)
}

// listAll prints every task of the owner, numbered in creation order.
// --open hides completed tasks but keeps their numbers.
func (c *ListCmd) listAll(ctx context.Context, cfg *config.Config, svc service.Service, out io.Writer) int {
	printed := 0
	for i, task := range svc.Tasks(ctx, cfg.OwnerID, "") {
		if c.open && task.IsCompleted {
			continue
		}
		output.FormatTask(out, i+1, task)
		printed++
	}
	if printed == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}

// listOne prints one list section, numbered as <letter><n> references count.
func (c *ListCmd) listOne(ctx context.Context, cfg *config.Config, svc service.Service, name string, out, errOut io.Writer) int {
	list, code := resolveList(ctx, svc, cfg.OwnerID, name, errOut)
	if code != exitcode.Success {
		return code
	}

	output.FormatListHeader(out, list.Name, list.IsDefault)
	for i, task := range svc.Tasks(ctx, cfg.OwnerID, list.ID) {
		if c.open && task.IsCompleted {
			continue
		}
		output.FormatTaskIndented(out, i+1, task)
	}
	return exitcode.Success
}
