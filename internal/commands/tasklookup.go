package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"automator/internal/config"
	"automator/internal/exitcode"
	"automator/internal/service"
)

// findTask resolves ref against the listings the list and lists commands print.
// On failure it reports to errOut and returns the exit code.
func findTask(ctx context.Context, svc service.Service, owner string, ref TaskRef, errOut io.Writer) (service.Task, int) {
	if ref.TaskNum < 1 {
		fmt.Fprintf(errOut, "error: task number out of range: %s\n", ref)
		return service.Task{}, exitcode.UserError
	}

	listID := ""
	if ref.HasLetter {
		list, err := ResolveListByLetter(ctx, svc, owner, ref.Letter)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return service.Task{}, exitcode.UserError
		}
		listID = list.ID
	}

	tasks := svc.Tasks(ctx, owner, listID)
	if ref.TaskNum > len(tasks) {
		fmt.Fprintf(errOut, "error: task number out of range: %s\n", ref)
		return service.Task{}, exitcode.UserError
	}
	return tasks[ref.TaskNum-1], exitcode.Success
}

// findTasks resolves several references against one snapshot per list,
// so numbering does not shift between them.
func findTasks(ctx context.Context, svc service.Service, owner string, refs []TaskRef, errOut io.Writer) ([]service.Task, int) {
	snapshot := make(map[rune][]service.Task)
	seen := make(map[string]bool)
	var out []service.Task

	for _, ref := range refs {
		if ref.TaskNum < 1 {
			fmt.Fprintf(errOut, "error: task number out of range: %s\n", ref)
			return nil, exitcode.UserError
		}
		tasks, ok := snapshot[ref.Letter]
		if !ok {
			listID := ""
			if ref.HasLetter {
				list, err := ResolveListByLetter(ctx, svc, owner, ref.Letter)
				if err != nil {
					fmt.Fprintf(errOut, "error: %v\n", err)
					return nil, exitcode.UserError
				}
				listID = list.ID
			}
			tasks = svc.Tasks(ctx, owner, listID)
			snapshot[ref.Letter] = tasks
		}
		if ref.TaskNum > len(tasks) {
			fmt.Fprintf(errOut, "error: task number out of range: %s\n", ref)
			return nil, exitcode.UserError
		}
		task := tasks[ref.TaskNum-1]
		if !seen[task.ID] {
			seen[task.ID] = true
			out = append(out, task)
		}
	}
	return out, exitcode.Success
}

// resolveList finds one of the owner's lists by name.
func resolveList(ctx context.Context, svc service.Service, owner, name string, errOut io.Writer) (service.TaskList, int) {
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return service.TaskList{}, exitcode.UserError
	}
	list, err := svc.ResolveList(ctx, owner, name)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.TaskList{}, exitcode.UserError
	}
	return list, exitcode.Success
}

// refError reports a task reference parse error.
func refError(errOut io.Writer, err error) int {
	if err == ErrTaskRefRequired {
		fmt.Fprintln(errOut, "error: task reference required")
	} else {
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	return exitcode.UserError
}

// printOK prints the success line unless --quiet is set.
func printOK(cfg *config.Config, out io.Writer) int {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
