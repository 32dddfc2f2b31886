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
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string          { return "rm" }
func (c *RmCmd) Aliases() []string     { return nil }
func (c *RmCmd) Synopsis() string      { return "Delete tasks" }
func (c *RmCmd) Usage() string         { return "automator rm <ref...>" }
func (c *RmCmd) Requires() Requirement { return NeedsOwner }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	refs, err := ParseTaskRefs(args)
	if err != nil {
		return refError(errOut, err)
	}

	tasks, code := findTasks(ctx, svc, cfg.OwnerID, refs, errOut)
	if code != exitcode.Success {
		return code
	}

	if len(tasks) == 1 {
		if !svc.DeleteTask(ctx, tasks[0].ID, cfg.OwnerID) {
			fmt.Fprintf(errOut, "error: backend error: could not delete task: %s\n", tasks[0].Title)
			return exitcode.BackendError
		}
		return printOK(cfg, out)
	}

	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	deleted := svc.DeleteTasks(ctx, ids, cfg.OwnerID)
	if deleted < int64(len(ids)) {
		fmt.Fprintf(errOut, "error: backend error: deleted %d of %d tasks\n", deleted, len(ids))
		return exitcode.BackendError
	}
	return printOK(cfg, out)
}
