package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"automator/internal/config"
	"automator/internal/exitcode"
	"automator/internal/service"
)

func init() {
	Register(&CreateListCmd{})
	Register(&RenameListCmd{})
}

// CreateListCmd implements the createlist command.
type CreateListCmd struct {
	icon  string
	color string
}

func (c *CreateListCmd) Name() string      { return "createlist" }
func (c *CreateListCmd) Aliases() []string { return []string{"addlist"} }
func (c *CreateListCmd) Synopsis() string  { return "Create a new list" }
func (c *CreateListCmd) Usage() string {
	return "automator createlist [--icon <name>] [--color <argb-hex>] <list-name>"
}
func (c *CreateListCmd) Requires() Requirement { return NeedsOwner }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.icon, "icon", "", "")
	fs.StringVar(&c.color, "color", "", "")
}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	in := service.NewList{OwnerID: cfg.OwnerID, Name: name, Icon: c.icon}
	if c.color != "" {
		color, err := parseColor(c.color)
		if err != nil {
			fmt.Fprintf(errOut, "error: invalid color: %s\n", c.color)
			return exitcode.UserError
		}
		in.IconColor = color
	}

	if listExists(ctx, svc, cfg.OwnerID, name) {
		fmt.Fprintf(errOut, "error: list already exists: %s\n", name)
		return exitcode.UserError
	}

	if _, created := svc.CreateList(ctx, in); !created {
		fmt.Fprintln(errOut, "error: backend error: list not created")
		return exitcode.BackendError
	}

	return printOK(cfg, out)
}

// RenameListCmd implements the renamelist command.
type RenameListCmd struct{}

func (c *RenameListCmd) Name() string          { return "renamelist" }
func (c *RenameListCmd) Aliases() []string     { return nil }
func (c *RenameListCmd) Synopsis() string      { return "Rename a list" }
func (c *RenameListCmd) Usage() string         { return "automator renamelist <list-name> <new-name>" }
func (c *RenameListCmd) Requires() Requirement { return NeedsOwner }

func (c *RenameListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RenameListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(errOut, "error: old and new list names required (quote names with spaces)")
		return exitcode.UserError
	}
	list, code := resolveList(ctx, svc, cfg.OwnerID, args[0], errOut)
	if code != exitcode.Success {
		return code
	}
	if list.IsDefault {
		fmt.Fprintf(errOut, "error: cannot rename default list: %s\n", list.Name)
		return exitcode.UserError
	}

	newName := strings.TrimSpace(args[1])
	if newName == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}
	if !strings.EqualFold(newName, list.Name) && listExists(ctx, svc, cfg.OwnerID, newName) {
		fmt.Fprintf(errOut, "error: list already exists: %s\n", newName)
		return exitcode.UserError
	}

	if !svc.UpdateList(ctx, list.ID, cfg.OwnerID, service.ListPatch{Name: &newName}) {
		fmt.Fprintln(errOut, "error: backend error: list not renamed")
		return exitcode.BackendError
	}
	return printOK(cfg, out)
}

// listExists reports whether name already matches one or more of the owner's lists.
func listExists(ctx context.Context, svc service.Service, owner, name string) bool {
	_, err := svc.ResolveList(ctx, owner, name)
	return err == nil || errors.Is(err, service.ErrAmbiguousList)
}

// parseColor reads an ARGB color such as "#FF0078D4" or "0xFF0078D4".
func parseColor(s string) (int64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	if len(s) != 6 && len(s) != 8 {
		return 0, fmt.Errorf("want 6 or 8 hex digits")
	}
	v, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0, err
	}
	if len(s) == 6 {
		v |= 0xFF000000
	}
	return v, nil
}
