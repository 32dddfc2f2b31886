package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"automator/internal/config"
	"automator/internal/exitcode"
	"automator/internal/extract"
	"automator/internal/service"
)

// now is the clock relative dates are resolved against.
var now = time.Now

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	listName  string
	note      string
	due       string
	important bool
}

// SetListName sets the list name (for testing).
func (c *AddCmd) SetListName(name string) {
	c.listName = name
}

// SetDue sets the due date (for testing).
func (c *AddCmd) SetDue(due string) {
	c.due = due
}

// SetImportant sets the important flag (for testing).
func (c *AddCmd) SetImportant(important bool) {
	c.important = important
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "automator add [--list <list-name>] [--note <text>] [--due <dd-mm-yyyy>] [--important] <title...>"
}
func (c *AddCmd) Requires() Requirement { return NeedsOwner }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.StringVar(&c.note, "note", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.BoolVar(&c.important, "important", false, "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	in := service.NewTask{
		OwnerID: cfg.OwnerID,
		Title:   title,
		Note:    c.note,
	}

	if c.due != "" {
		due, code := parseDue(cfg, c.due, errOut)
		if code != exitcode.Success {
			return code
		}
		in.DueDate = &due
	}

	if c.listName != "" {
		list, code := resolveList(ctx, svc, cfg.OwnerID, c.listName, errOut)
		if code != exitcode.Success {
			return code
		}
		in.ListID = list.ID
	}

	id, created := svc.CreateTask(ctx, in)
	if !created {
		fmt.Fprintln(errOut, "error: backend error: task not created")
		return exitcode.BackendError
	}

	if c.important && !svc.SetImportance(ctx, id, cfg.OwnerID, true) {
		fmt.Fprintln(errOut, "error: backend error: task created but not starred")
		return exitcode.BackendError
	}

	return printOK(cfg, out)
}

// parseDue reads a --due value: dd-mm-yyyy or a relative day such as "tomorrow".
func parseDue(cfg *config.Config, s string, errOut io.Writer) (time.Time, int) {
	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintf(errOut, "error: config error: %v\n", err)
		return time.Time{}, exitcode.AuthError
	}
	day, err := extract.ResolveDate(s, extract.Day(now(), loc))
	if err != nil {
		fmt.Fprintf(errOut, "error: invalid due date: %s (want dd-mm-yyyy)\n", s)
		return time.Time{}, exitcode.UserError
	}
	return service.Day(day), exitcode.Success
}
