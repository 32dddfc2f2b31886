package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"automator/internal/config"
	"automator/internal/exitcode"
	"automator/internal/service"
)

func init() {
	Register(&StarCmd{})
}

// StarCmd marks tasks important, which also files them under the "Important" list.
type StarCmd struct {
	off bool
}

// SetOff sets the off flag (for testing).
func (c *StarCmd) SetOff(off bool) {
	c.off = off
}

func (c *StarCmd) Name() string          { return "star" }
func (c *StarCmd) Aliases() []string     { return nil }
func (c *StarCmd) Synopsis() string      { return "Mark tasks important" }
func (c *StarCmd) Usage() string         { return "automator star [--off] <ref...>" }
func (c *StarCmd) Requires() Requirement { return NeedsOwner }

func (c *StarCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.off, "off", false, "")
}

func (c *StarCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	refs, err := ParseTaskRefs(args)
	if err != nil {
		return refError(errOut, err)
	}

	tasks, code := findTasks(ctx, svc, cfg.OwnerID, refs, errOut)
	if code != exitcode.Success {
		return code
	}

	for _, task := range tasks {
		if !svc.SetImportance(ctx, task.ID, cfg.OwnerID, !c.off) {
			fmt.Fprintf(errOut, "error: backend error: could not update task: %s\n", task.Title)
			return exitcode.BackendError
		}
	}

	return printOK(cfg, out)
}
