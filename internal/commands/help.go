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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string          { return "help" }
func (c *HelpCmd) Aliases() []string     { return nil }
func (c *HelpCmd) Synopsis() string      { return "Print usage" }
func (c *HelpCmd) Usage() string         { return "automator help" }
func (c *HelpCmd) Requires() Requirement { return NeedsNothing }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  automator                                       List all tasks
  automator register --password <pw> [--name <name>] <email>
  automator list [--open] [<list-name>]           List tasks, or the tasks of one list
  automator add [--list <list-name>] [--note <text>] [--due <dd-mm-yyyy>] [--important] <title...>
  automator create ...                            Alias for add
  automator done [--undo] <ref...>
  automator star [--off] <ref...>
  automator rm <ref...>
  automator move <ref> <list-name>                Also file a task under a list
  automator unlink <ref> <list-name>              Remove a task from a list
  automator search <term...>
  automator important
  automator completed
  automator lists
  automator createlist [--icon <name>] [--color <argb-hex>] <list-name>
  automator addlist ...                           Alias for createlist
  automator renamelist <list-name> <new-name>
  automator rmlist [--force] <list-name>          Delete a list and every task in it
  automator stats [--json] <list-name>
  automator extract [--json] [--publish] [--google <list-name>] [--telegram] [<message...>]
                                                  Extract dated activities (stdin when no message)
  automator login
  automator logout
  automator help
  automator version

Task references:
  <n>           n-th task as numbered by 'automator list'
  <letter><n>   n-th task of a list, lettered as by 'automator lists' (a1, b3)

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
