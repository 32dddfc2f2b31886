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
	Register(&MoveCmd{})
	Register(&UnlinkCmd{})
}

// MoveCmd files a task under another list. Existing memberships are kept.
type MoveCmd struct{}

func (c *MoveCmd) Name() string          { return "move" }
func (c *MoveCmd) Aliases() []string     { return []string{"mv"} }
func (c *MoveCmd) Synopsis() string      { return "Add a task to a list" }
func (c *MoveCmd) Usage() string         { return "automator move <ref> <list-name>" }
func (c *MoveCmd) Requires() Requirement { return NeedsOwner }

func (c *MoveCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MoveCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	task, list, code := refAndList(ctx, cfg, svc, args, errOut)
	if code != exitcode.Success {
		return code
	}
	if !svc.AddToList(ctx, task.ID, cfg.OwnerID, list.ID) {
		fmt.Fprintf(errOut, "error: backend error: could not add task to list: %s\n", list.Name)
		return exitcode.BackendError
	}
	return printOK(cfg, out)
}

// UnlinkCmd removes a task from one list. A task always keeps at least one list.
type UnlinkCmd struct{}

func (c *UnlinkCmd) Name() string          { return "unlink" }
func (c *UnlinkCmd) Aliases() []string     { return nil }
func (c *UnlinkCmd) Synopsis() string      { return "Remove a task from a list" }
func (c *UnlinkCmd) Usage() string         { return "automator unlink <ref> <list-name>" }
func (c *UnlinkCmd) Requires() Requirement { return NeedsOwner }

func (c *UnlinkCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UnlinkCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	task, list, code := refAndList(ctx, cfg, svc, args, errOut)
	if code != exitcode.Success {
		return code
	}
	if !task.InList(list.ID) {
		fmt.Fprintf(errOut, "error: task is not in list: %s\n", list.Name)
		return exitcode.UserError
	}
	if len(task.ListIDs) < 2 {
		fmt.Fprintf(errOut, "error: cannot remove a task from its only list: %s\n", list.Name)
		return exitcode.UserError
	}
	if !svc.RemoveFromList(ctx, task.ID, cfg.OwnerID, list.ID) {
		// Lost a race with another membership change.
		fmt.Fprintf(errOut, "error: cannot remove a task from its only list: %s\n", list.Name)
		return exitcode.UserError
	}
	return printOK(cfg, out)
}

// refAndList parses "<ref> <list-name...>".
func refAndList(ctx context.Context, cfg *config.Config, svc service.Service, args []string, errOut io.Writer) (service.Task, service.TaskList, int) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return service.Task{}, service.TaskList{}, refError(errOut, err)
	}
	name := strings.Join(args[1:], " ")
	if strings.TrimSpace(name) == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return service.Task{}, service.TaskList{}, exitcode.UserError
	}

	task, code := findTask(ctx, svc, cfg.OwnerID, ref, errOut)
	if code != exitcode.Success {
		return service.Task{}, service.TaskList{}, code
	}
	list, code := resolveList(ctx, svc, cfg.OwnerID, name, errOut)
	if code != exitcode.Success {
		return service.Task{}, service.TaskList{}, code
	}
	return task, list, exitcode.Success
}
