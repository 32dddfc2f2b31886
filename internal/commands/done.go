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
	Register(&DoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct {
	undo bool
}

// SetUndo sets the undo flag (for testing).
func (c *DoneCmd) SetUndo(undo bool) {
	c.undo = undo
}

func (c *DoneCmd) Name() string          { return "done" }
func (c *DoneCmd) Aliases() []string     { return nil }
func (c *DoneCmd) Synopsis() string      { return "Mark tasks completed" }
func (c *DoneCmd) Usage() string         { return "automator done [--undo] <ref...>" }
func (c *DoneCmd) Requires() Requirement { return NeedsOwner }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.undo, "undo", false, "")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	refs, err := ParseTaskRefs(args)
	if err != nil {
		return refError(errOut, err)
	}

	tasks, code := findTasks(ctx, svc, cfg.OwnerID, refs, errOut)
	if code != exitcode.Success {
		return code
	}

	for _, task := range tasks {
		if task.IsCompleted == !c.undo {
			continue
		}
		if !svc.SetCompleted(ctx, task.ID, cfg.OwnerID, !c.undo) {
			fmt.Fprintf(errOut, "error: backend error: could not update task: %s\n", task.Title)
			return exitcode.BackendError
		}
	}

	return printOK(cfg, out)
}
