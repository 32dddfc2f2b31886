package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"automator/internal/config"
	"automator/internal/exitcode"
	"automator/internal/service"
)

func init() {
	Register(&RmListCmd{})
}

// RmListCmd implements the rmlist command.
type RmListCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmListCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmListCmd) Name() string          { return "rmlist" }
func (c *RmListCmd) Aliases() []string     { return nil }
func (c *RmListCmd) Synopsis() string      { return "Delete a list and its tasks" }
func (c *RmListCmd) Usage() string         { return "automator rmlist [--force] <list-name>" }
func (c *RmListCmd) Requires() Requirement { return NeedsOwner }

func (c *RmListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *RmListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	list, code := resolveList(ctx, svc, cfg.OwnerID, strings.Join(args, " "), errOut)
	if code != exitcode.Success {
		return code
	}

	if list.IsDefault {
		fmt.Fprintf(errOut, "error: cannot delete default list: %s\n", list.Name)
		return exitcode.UserError
	}

	// Without --force, refuse while open tasks remain
	if !c.force {
		for _, task := range svc.Tasks(ctx, cfg.OwnerID, list.ID) {
			if !task.IsCompleted {
				fmt.Fprintln(errOut, "error: list not empty (use --force)")
				return exitcode.UserError
			}
		}
	}

	if !svc.DeleteList(ctx, list.ID, cfg.OwnerID) {
		fmt.Fprintln(errOut, "error: backend error: list not deleted")
		return exitcode.BackendError
	}

	return printOK(cfg, out)
}
