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
	Register(&SearchCmd{})
	Register(&ImportantCmd{})
	Register(&CompletedCmd{})
}

// SearchCmd implements the search command.
type SearchCmd struct{}

func (c *SearchCmd) Name() string          { return "search" }
func (c *SearchCmd) Aliases() []string     { return []string{"find"} }
func (c *SearchCmd) Synopsis() string      { return "Find tasks by title" }
func (c *SearchCmd) Usage() string         { return "automator search <term...>" }
func (c *SearchCmd) Requires() Requirement { return NeedsOwner }

func (c *SearchCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SearchCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	term := strings.TrimSpace(strings.Join(args, " "))
	if term == "" {
		fmt.Fprintln(errOut, "error: search term required")
		return exitcode.UserError
	}
	return printMatches(ctx, cfg, svc, svc.SearchTasks(ctx, cfg.OwnerID, term), out)
}

// ImportantCmd implements the important command.
type ImportantCmd struct{}

func (c *ImportantCmd) Name() string          { return "important" }
func (c *ImportantCmd) Aliases() []string     { return nil }
func (c *ImportantCmd) Synopsis() string      { return "List important tasks" }
func (c *ImportantCmd) Usage() string         { return "automator important" }
func (c *ImportantCmd) Requires() Requirement { return NeedsOwner }

func (c *ImportantCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ImportantCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return printMatches(ctx, cfg, svc, svc.ImportantTasks(ctx, cfg.OwnerID), out)
}

// CompletedCmd implements the completed command.
type CompletedCmd struct{}

func (c *CompletedCmd) Name() string          { return "completed" }
func (c *CompletedCmd) Aliases() []string     { return nil }
func (c *CompletedCmd) Synopsis() string      { return "List completed tasks" }
func (c *CompletedCmd) Usage() string         { return "automator completed" }
func (c *CompletedCmd) Requires() Requirement { return NeedsOwner }

func (c *CompletedCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CompletedCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return printMatches(ctx, cfg, svc, svc.CompletedTasks(ctx, cfg.OwnerID), out)
}

// printMatches prints tasks under the numbers the list command gives them,
// so the output can be fed back as task references.
func printMatches(ctx context.Context, cfg *config.Config, svc service.Service, matches []service.Task, out io.Writer) int {
	if len(matches) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	numbers := make(map[string]int)
	for i, task := range svc.Tasks(ctx, cfg.OwnerID, "") {
		numbers[task.ID] = i + 1
	}
	for _, task := range matches {
		output.FormatTask(out, numbers[task.ID], task)
	}
	return exitcode.Success
}
