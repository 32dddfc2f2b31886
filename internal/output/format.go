// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"automator/internal/service"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"
)

// FormatTask formats a task line of the owner-wide listing.
// Format: "{N:>4}  {TITLE}{TAGS}\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s%s\n", num, normalizeTitle(task.Title), tags(task))
}

// FormatTaskIndented formats a task line inside a list section.
// Format: "    {N:>4}  {TITLE}{TAGS}\n"
func FormatTaskIndented(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "    %4d  %s%s\n", num, normalizeTitle(task.Title), tags(task))
}

// FormatTaskWithLetter formats a task line addressed by list letter, e.g. "  b3  Buy milk".
func FormatTaskWithLetter(w io.Writer, letter rune, num int, task service.Task) {
	ref := fmt.Sprintf("%c%d", letter, num)
	fmt.Fprintf(w, "%6s  %s%s\n", ref, normalizeTitle(task.Title), tags(task))
}

// FormatListHeader formats a list section header.
func FormatListHeader(w io.Writer, name string, isDefault bool) {
	displayName := normalizeListName(name)
	if isDefault {
		displayName += " [default]"
	}
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, displayName)
	fmt.Fprintln(w, ListSeparator)
}

// FormatListName formats a line of the lists command. Lists past 'z' get no letter.
func FormatListName(w io.Writer, letter rune, list service.TaskList) {
	name := normalizeListName(list.Name)
	if list.IsDefault {
		name += " [default]"
	}
	if letter < 'a' || letter > 'z' {
		fmt.Fprintf(w, "   %s\n", name)
		return
	}
	fmt.Fprintf(w, "%c  %s\n", letter, name)
}

// FormatStats formats list counters.
func FormatStats(w io.Writer, name string, st service.ListStats) {
	fmt.Fprintln(w, normalizeListName(name))
	fmt.Fprintf(w, "  total:     %d\n", st.Total)
	fmt.Fprintf(w, "  completed: %d\n", st.Completed)
	fmt.Fprintf(w, "  pending:   %d\n", st.Pending)
}

// FormatStatsJSON writes {"totalTasks":..,"completedTasks":..,"pendingTasks":..}.
func FormatStatsJSON(w io.Writer, st service.ListStats) error {
	return json.NewEncoder(w).Encode(st)
}

// FormatActivity formats one extracted activity: "{dd-mm-yyyy}  {NAME}\n".
func FormatActivity(w io.Writer, a service.Activity) {
	fmt.Fprintf(w, "%s  %s\n", a.DateString(), a.Name)
}

// FormatActivitiesJSON writes {"activities": [...]} followed by a newline.
func FormatActivitiesJSON(w io.Writer, activities []service.Activity) error {
	if activities == nil {
		activities = []service.Activity{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Activities []service.Activity `json:"activities"`
	}{activities})
}

// tags renders the state suffix of a task line.
func tags(task service.Task) string {
	var b strings.Builder
	if task.IsCompleted {
		b.WriteString(" [done]")
	}
	if task.IsImportant {
		b.WriteString(" [important]")
	}
	if task.DueDate != nil {
		b.WriteString(" [due ")
		b.WriteString(task.DueDate.UTC().Format(service.DateLayout))
		b.WriteString("]")
	}
	return b.String()
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeListName normalizes a list name for display.
func normalizeListName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(untitled)"
	}
	return name
}
