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
	Register(&StatsCmd{})
}

// StatsCmd prints a list's task counters.
type StatsCmd struct {
	json bool
}

func (c *StatsCmd) Name() string          { return "stats" }
func (c *StatsCmd) Aliases() []string     { return nil }
func (c *StatsCmd) Synopsis() string      { return "Count a list's tasks" }
func (c *StatsCmd) Usage() string         { return "automator stats [--json] <list-name>" }
func (c *StatsCmd) Requires() Requirement { return NeedsOwner }

func (c *StatsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.json, "json", false, "")
}

func (c *StatsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	list, code := resolveList(ctx, svc, cfg.OwnerID, strings.Join(args, " "), errOut)
	if code != exitcode.Success {
		return code
	}

	st, found := svc.ListStats(ctx, list.ID, cfg.OwnerID)
	if !found {
		fmt.Fprintf(errOut, "error: list not found: %s\n", list.Name)
		return exitcode.UserError
	}

	if c.json {
		if err := output.FormatStatsJSON(out, st); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
		return exitcode.Success
	}
	output.FormatStats(out, list.Name, st)
	return exitcode.Success
}
