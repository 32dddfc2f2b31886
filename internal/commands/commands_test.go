package commands_test

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"automator/internal/commands"
	"automator/internal/config"
	"automator/internal/exitcode"
	"automator/internal/service"
	"automator/internal/testutil"
)

// runCommand runs cmd as the fixture owner. A nil fixture runs without a service.
func runCommand(t *testing.T, cmd commands.Command, f *testutil.Fixture, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()
	cfg := &config.Config{Dir: t.TempDir(), Quiet: quiet}
	return runWithConfig(t, cmd, f, cfg, args)
}

func runWithConfig(t *testing.T, cmd commands.Command, f *testutil.Fixture, cfg *config.Config, args []string) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	var svc service.Service
	if f != nil {
		svc = f.App
		if cfg.OwnerID == "" {
			cfg.OwnerID = f.Owner
		}
	}
	code = cmd.Run(context.Background(), cfg, svc, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func expectOK(t *testing.T, stdout, stderr string, code int) {
	t.Helper()
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
}

func expectUserError(t *testing.T, stdout, stderr string, code int, want string) {
	t.Helper()
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != want {
		t.Errorf("expected %q, got %q", want, stderr)
	}
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "automator 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{"Usage:", "automator extract", "Task references:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

func TestHelpMentionsEveryCommand(t *testing.T) {
	stdout, _, _ := runCommand(t, &commands.HelpCmd{}, nil, nil, false)
	for _, cmd := range commands.DefaultRegistry.All() {
		if !strings.Contains(stdout, "automator "+cmd.Name()) {
			t.Errorf("help output does not mention %s", cmd.Name())
		}
	}
}

// Tests for lists command
func TestListsCommand(t *testing.T) {
	f := testutil.NewService(t)
	f.AddList(t, "Groceries")

	stdout, stderr, code := runCommand(t, &commands.ListsCmd{}, f, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "lists", stdout)
}

func TestListsCommand_PastZHasNoLetter(t *testing.T) {
	f := testutil.NewService(t)
	for i := 1; i <= 24; i++ {
		f.AddList(t, fmt.Sprintf("List %02d", i))
	}

	stdout, _, _ := runCommand(t, &commands.ListsCmd{}, f, nil, false)

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	if len(lines) != 27 {
		t.Fatalf("expected 27 lines, got %d", len(lines))
	}
	if lines[25] != "z  List 23" {
		t.Errorf("expected letter z on the 26th list, got %q", lines[25])
	}
	if lines[26] != "   List 24" {
		t.Errorf("expected no letter past z, got %q", lines[26])
	}
}

// Tests for list command
func TestListCommand_AllTasks(t *testing.T) {
	f := testutil.NewService(t)
	f.AddTask(t, "Buy milk")
	done := f.AddTask(t, "Call mom")
	f.App.SetCompleted(context.Background(), done, f.Owner, true)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, f, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "list_all", stdout)
}

func TestListCommand_OpenKeepsNumbers(t *testing.T) {
	f := testutil.NewService(t)
	done := f.AddTask(t, "Call mom")
	f.AddTask(t, "Buy milk")
	f.App.SetCompleted(context.Background(), done, f.Owner, true)

	cmd := &commands.ListCmd{}
	cmd.SetOpen(true)
	stdout, _, _ := runCommand(t, cmd, f, nil, false)

	if stdout != "   2  Buy milk\n" {
		t.Errorf("got %q", stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	f := testutil.NewService(t)

	stdout, _, code := runCommand(t, &commands.ListCmd{}, f, nil, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("expected 'no tasks found\\n', got %q", stdout)
	}

	stdout, _, _ = runCommand(t, &commands.ListCmd{}, f, nil, true)
	if stdout != "" {
		t.Errorf("expected no output in quiet mode, got %q", stdout)
	}
}

func TestListCommand_SpecificList(t *testing.T) {
	f := testutil.NewService(t)
	groceries := f.AddList(t, "Groceries")
	f.AddTask(t, "Elsewhere")
	f.AddTask(t, "Milk", groceries)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, f, []string{"groceries"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	want := "------------\nGroceries\n------------\n       1  Milk\n"
	if stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}
}

func TestListCommand_DefaultListHeader(t *testing.T) {
	f := testutil.NewService(t)

	stdout, _, _ := runCommand(t, &commands.ListCmd{}, f, []string{"My", "Day"}, false)

	want := "------------\nMy Day [default]\n------------\n"
	if stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}
}

func TestListCommand_ListNotFound(t *testing.T) {
	f := testutil.NewService(t)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, f, []string{"Nope"}, false)
	expectUserError(t, stdout, stderr, code, "error: list not found: Nope\n")
}

func TestListCommand_AmbiguousList(t *testing.T) {
	f := testutil.NewService(t)
	f.AddList(t, "Work")
	f.AddList(t, "work")

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, f, []string{"WORK"}, false)
	expectUserError(t, stdout, stderr, code, "error: ambiguous list name: WORK\n")
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	f := testutil.NewService(t)

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, f, []string{"Buy", "milk"}, false)
	expectOK(t, stdout, stderr, code)

	tasks := f.App.Tasks(context.Background(), f.Owner, "")
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Title != "Buy milk" {
		t.Errorf("expected title 'Buy milk', got %q", tasks[0].Title)
	}
	if !tasks[0].InList(service.MyTasksListID) {
		t.Errorf("task without a list should be in %s, got %v", service.MyTasksListID, tasks[0].ListIDs)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	f := testutil.NewService(t)

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, f, []string{"Task"}, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" || stderr != "" {
		t.Errorf("expected no output, got %q / %q", stdout, stderr)
	}
}

func TestAddCommand_NoTitle(t *testing.T) {
	f := testutil.NewService(t)

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, f, []string{"  "}, false)
	expectUserError(t, stdout, stderr, code, "error: title required\n")
}

func TestAddCommand_ToSpecificList(t *testing.T) {
	f := testutil.NewService(t)
	work := f.AddList(t, "Work")

	cmd := &commands.AddCmd{}
	cmd.SetListName("work")
	stdout, stderr, code := runCommand(t, cmd, f, []string{"Write", "report"}, false)
	expectOK(t, stdout, stderr, code)

	tasks := f.App.Tasks(context.Background(), f.Owner, work)
	if len(tasks) != 1 || tasks[0].Title != "Write report" {
		t.Errorf("expected the task in Work, got %+v", tasks)
	}
}

func TestAddCommand_UnknownList(t *testing.T) {
	f := testutil.NewService(t)

	cmd := &commands.AddCmd{}
	cmd.SetListName("Nope")
	stdout, stderr, code := runCommand(t, cmd, f, []string{"x"}, false)
	expectUserError(t, stdout, stderr, code, "error: list not found: Nope\n")

	if n := len(f.App.Tasks(context.Background(), f.Owner, "")); n != 0 {
		t.Errorf("expected no task created, got %d", n)
	}
}

func TestAddCommand_DueAndImportant(t *testing.T) {
	f := testutil.NewService(t)

	cmd := &commands.AddCmd{}
	cmd.SetDue("05-03-2024")
	cmd.SetImportant(true)
	stdout, stderr, code := runCommand(t, cmd, f, []string{"File", "taxes"}, false)
	expectOK(t, stdout, stderr, code)

	tasks := f.App.Tasks(context.Background(), f.Owner, "")
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	task := tasks[0]
	if task.DueDate == nil || !task.DueDate.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected due date %v", task.DueDate)
	}
	if !task.IsImportant {
		t.Error("expected task to be important")
	}
	if !task.InList(f.List(t, service.ImportantList).ID) {
		t.Errorf("important task should be in the Important list, got %v", task.ListIDs)
	}
}

func TestAddCommand_InvalidDue(t *testing.T) {
	f := testutil.NewService(t)

	cmd := &commands.AddCmd{}
	cmd.SetDue("someday")
	stdout, stderr, code := runCommand(t, cmd, f, []string{"x"}, false)
	expectUserError(t, stdout, stderr, code, "error: invalid due date: someday (want dd-mm-yyyy)\n")
}

// Tests for done command
func TestDoneCommand_Success(t *testing.T) {
	f := testutil.NewService(t)
	f.AddTask(t, "Task 1")
	second := f.AddTask(t, "Task 2")

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, f, []string{"2"}, false)
	expectOK(t, stdout, stderr, code)

	if !f.Task(t, second).IsCompleted {
		t.Error("expected task 2 to be completed")
	}
}

func TestDoneCommand_Undo(t *testing.T) {
	f := testutil.NewService(t)
	id := f.AddTask(t, "Task 1")
	f.App.SetCompleted(context.Background(), id, f.Owner, true)

	cmd := &commands.DoneCmd{}
	cmd.SetUndo(true)
	stdout, stderr, code := runCommand(t, cmd, f, []string{"1"}, false)
	expectOK(t, stdout, stderr, code)

	if f.Task(t, id).IsCompleted {
		t.Error("expected task to be open again")
	}
}

func TestDoneCommand_AlreadyDone(t *testing.T) {
	f := testutil.NewService(t)
	id := f.AddTask(t, "Task 1")
	f.App.SetCompleted(context.Background(), id, f.Owner, true)

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, f, []string{"1"}, false)
	expectOK(t, stdout, stderr, code)
}

func TestDoneCommand_ListLetter(t *testing.T) {
	f := testutil.NewService(t)
	tasksList := f.List(t, service.TasksList)
	f.AddTask(t, "Unrelated")
	id := f.AddTask(t, "In Tasks", tasksList.ID)

	// a = My Day, b = Important, c = Tasks
	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, f, []string{"c1"}, false)
	expectOK(t, stdout, stderr, code)

	if !f.Task(t, id).IsCompleted {
		t.Error("expected the Tasks list task to be completed")
	}
}

func TestDoneCommand_NoRef(t *testing.T) {
	f := testutil.NewService(t)

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, f, nil, false)
	expectUserError(t, stdout, stderr, code, "error: task reference required\n")
}

func TestDoneCommand_InvalidRef(t *testing.T) {
	f := testutil.NewService(t)

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, f, []string{"x1y"}, false)
	expectUserError(t, stdout, stderr, code, "error: invalid task reference: x1y\n")
}

func TestDoneCommand_OutOfRange(t *testing.T) {
	f := testutil.NewService(t)
	f.AddTask(t, "Task 1")

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, f, []string{"5"}, false)
	expectUserError(t, stdout, stderr, code, "error: task number out of range: 5\n")

	stdout, stderr, code = runCommand(t, &commands.DoneCmd{}, f, []string{"0"}, false)
	expectUserError(t, stdout, stderr, code, "error: task number out of range: 0\n")
}

func TestDoneCommand_UnknownLetter(t *testing.T) {
	f := testutil.NewService(t)

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, f, []string{"q1"}, false)
	expectUserError(t, stdout, stderr, code, "error: list letter not found: q\n")
}

// Tests for star command
func TestStarCommand(t *testing.T) {
	f := testutil.NewService(t)
	id := f.AddTask(t, "File taxes")
	important := f.List(t, service.ImportantList)

	stdout, stderr, code := runCommand(t, &commands.StarCmd{}, f, []string{"1"}, false)
	expectOK(t, stdout, stderr, code)

	task := f.Task(t, id)
	if !task.IsImportant || !task.InList(important.ID) {
		t.Errorf("expected important task in Important, got %+v", task)
	}

	// Starring twice is harmless
	stdout, stderr, code = runCommand(t, &commands.StarCmd{}, f, []string{"1"}, false)
	expectOK(t, stdout, stderr, code)

	off := &commands.StarCmd{}
	off.SetOff(true)
	stdout, stderr, code = runCommand(t, off, f, []string{"1"}, false)
	expectOK(t, stdout, stderr, code)

	task = f.Task(t, id)
	if task.IsImportant || task.InList(important.ID) {
		t.Errorf("expected task unstarred and out of Important, got %+v", task)
	}
}

// Tests for rm command
func TestRmCommand_Success(t *testing.T) {
	f := testutil.NewService(t)
	f.AddTask(t, "Task 1")
	f.AddTask(t, "Task 2")

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, f, []string{"1"}, false)
	expectOK(t, stdout, stderr, code)

	tasks := f.App.Tasks(context.Background(), f.Owner, "")
	if len(tasks) != 1 || tasks[0].Title != "Task 2" {
		t.Errorf("expected only Task 2 left, got %+v", tasks)
	}
}

func TestRmCommand_Many(t *testing.T) {
	f := testutil.NewService(t)
	groceries := f.AddList(t, "Groceries")
	f.AddTask(t, "Task 1")
	f.AddTask(t, "Task 2")
	f.AddTask(t, "Milk", groceries)

	// d1 is Milk, the 3rd task overall; numbering is taken before deleting
	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, f, []string{"1", "d1", "3"}, false)
	expectOK(t, stdout, stderr, code)

	tasks := f.App.Tasks(context.Background(), f.Owner, "")
	if len(tasks) != 1 || tasks[0].Title != "Task 2" {
		t.Errorf("expected only Task 2 left, got %+v", tasks)
	}
}

func TestRmCommand_NoRef(t *testing.T) {
	f := testutil.NewService(t)

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, f, nil, false)
	expectUserError(t, stdout, stderr, code, "error: task reference required\n")
}

func TestRmCommand_BadRefDeletesNothing(t *testing.T) {
	f := testutil.NewService(t)
	f.AddTask(t, "Task 1")

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, f, []string{"1", "7"}, false)
	expectUserError(t, stdout, stderr, code, "error: task number out of range: 7\n")

	if n := len(f.App.Tasks(context.Background(), f.Owner, "")); n != 1 {
		t.Errorf("expected the task to survive, got %d tasks", n)
	}
}

// Tests for move and unlink commands
func TestMoveAndUnlink(t *testing.T) {
	f := testutil.NewService(t)
	groceries := f.AddList(t, "Groceries")
	id := f.AddTask(t, "Milk")

	stdout, stderr, code := runCommand(t, &commands.MoveCmd{}, f, []string{"1", "Groceries"}, false)
	expectOK(t, stdout, stderr, code)
	task := f.Task(t, id)
	if !task.InList(groceries) || !task.InList(service.MyTasksListID) {
		t.Fatalf("expected both memberships, got %v", task.ListIDs)
	}

	// Moving again is idempotent
	stdout, stderr, code = runCommand(t, &commands.MoveCmd{}, f, []string{"1", "groceries"}, false)
	expectOK(t, stdout, stderr, code)

	stdout, stderr, code = runCommand(t, &commands.UnlinkCmd{}, f, []string{"1", "Groceries"}, false)
	expectOK(t, stdout, stderr, code)
	if f.Task(t, id).InList(groceries) {
		t.Error("expected task removed from Groceries")
	}

	stdout, stderr, code = runCommand(t, &commands.UnlinkCmd{}, f, []string{"1", "Groceries"}, false)
	expectUserError(t, stdout, stderr, code, "error: task is not in list: Groceries\n")
}

func TestUnlinkCommand_LastList(t *testing.T) {
	f := testutil.NewService(t)
	groceries := f.AddList(t, "Groceries")
	id := f.AddTask(t, "Milk", groceries)

	stdout, stderr, code := runCommand(t, &commands.UnlinkCmd{}, f, []string{"1", "Groceries"}, false)
	expectUserError(t, stdout, stderr, code, "error: cannot remove a task from its only list: Groceries\n")

	if !f.Task(t, id).InList(groceries) {
		t.Error("membership should be unchanged")
	}
}

func TestMoveCommand_MissingListName(t *testing.T) {
	f := testutil.NewService(t)
	f.AddTask(t, "Milk")

	stdout, stderr, code := runCommand(t, &commands.MoveCmd{}, f, []string{"1"}, false)
	expectUserError(t, stdout, stderr, code, "error: list name required\n")
}

// Tests for search, important and completed commands
func TestSearchCommand(t *testing.T) {
	f := testutil.NewService(t)
	f.AddTask(t, "Call mom")
	f.AddTask(t, "Buy MILK")
	f.AddTask(t, "Milkshake")

	stdout, stderr, code := runCommand(t, &commands.SearchCmd{}, f, []string{"milk"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	want := "   2  Buy MILK\n   3  Milkshake\n"
	if stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}
}

func TestSearchCommand_NoTerm(t *testing.T) {
	f := testutil.NewService(t)

	stdout, stderr, code := runCommand(t, &commands.SearchCmd{}, f, nil, false)
	expectUserError(t, stdout, stderr, code, "error: search term required\n")
}

func TestImportantAndCompletedCommands(t *testing.T) {
	f := testutil.NewService(t)
	ctx := context.Background()
	f.AddTask(t, "Plain")
	starred := f.AddTask(t, "Starred")
	finished := f.AddTask(t, "Finished")
	f.App.SetImportance(ctx, starred, f.Owner, true)
	f.App.SetCompleted(ctx, finished, f.Owner, true)

	stdout, _, _ := runCommand(t, &commands.ImportantCmd{}, f, nil, false)
	if stdout != "   2  Starred [important]\n" {
		t.Errorf("important: got %q", stdout)
	}

	stdout, _, _ = runCommand(t, &commands.CompletedCmd{}, f, nil, false)
	if stdout != "   3  Finished [done]\n" {
		t.Errorf("completed: got %q", stdout)
	}

	f.App.SetCompleted(ctx, finished, f.Owner, false)
	stdout, _, _ = runCommand(t, &commands.CompletedCmd{}, f, nil, false)
	if stdout != "no tasks found\n" {
		t.Errorf("completed: got %q", stdout)
	}
}

// Tests for createlist and renamelist commands
func TestCreateListCommand_Success(t *testing.T) {
	f := testutil.NewService(t)

	stdout, stderr, code := runCommand(t, &commands.CreateListCmd{}, f, []string{"Shopping", "List"}, false)
	expectOK(t, stdout, stderr, code)

	list := f.List(t, "shopping list")
	if list.Name != "Shopping List" || list.IsDefault {
		t.Errorf("unexpected list %+v", list)
	}
	if list.Icon == "" || list.IconColor == 0 {
		t.Errorf("expected icon defaults, got %q / %#x", list.Icon, list.IconColor)
	}
}

func TestCreateListCommand_Color(t *testing.T) {
	f := testutil.NewService(t)

	cmd := &commands.CreateListCmd{}
	fs := flagSet(cmd)
	if err := fs.Parse([]string{"--icon", "work", "--color", "#00FF00", "Work"}); err != nil {
		t.Fatal(err)
	}
	stdout, stderr, code := runCommand(t, cmd, f, fs.Args(), false)
	expectOK(t, stdout, stderr, code)

	list := f.List(t, "Work")
	if list.Icon != "work" || list.IconColor != 0xFF00FF00 {
		t.Errorf("unexpected icon %q / %#x", list.Icon, list.IconColor)
	}
}

func TestCreateListCommand_Duplicate(t *testing.T) {
	f := testutil.NewService(t)

	stdout, stderr, code := runCommand(t, &commands.CreateListCmd{}, f, []string{"my", "day"}, false)
	expectUserError(t, stdout, stderr, code, "error: list already exists: my day\n")
}

func TestCreateListCommand_NoName(t *testing.T) {
	f := testutil.NewService(t)

	stdout, stderr, code := runCommand(t, &commands.CreateListCmd{}, f, nil, false)
	expectUserError(t, stdout, stderr, code, "error: list name required\n")
}

func TestRenameListCommand(t *testing.T) {
	f := testutil.NewService(t)
	id := f.AddList(t, "Shoping")

	stdout, stderr, code := runCommand(t, &commands.RenameListCmd{}, f, []string{"shoping", "Shopping"}, false)
	expectOK(t, stdout, stderr, code)

	if got := f.List(t, "Shopping"); got.ID != id {
		t.Errorf("expected the same list renamed, got %+v", got)
	}

	stdout, stderr, code = runCommand(t, &commands.RenameListCmd{}, f, []string{"Tasks", "Chores"}, false)
	expectUserError(t, stdout, stderr, code, "error: cannot rename default list: Tasks\n")

	stdout, stderr, code = runCommand(t, &commands.RenameListCmd{}, f, []string{"Shopping", "important"}, false)
	expectUserError(t, stdout, stderr, code, "error: list already exists: important\n")
}

// Tests for rmlist command
func TestRmListCommand_EmptyListSuccess(t *testing.T) {
	f := testutil.NewService(t)
	f.AddList(t, "Empty")

	stdout, stderr, code := runCommand(t, &commands.RmListCmd{}, f, []string{"Empty"}, false)
	expectOK(t, stdout, stderr, code)

	if _, err := f.App.ResolveList(context.Background(), f.Owner, "Empty"); err == nil {
		t.Error("expected the list to be gone")
	}
}

func TestRmListCommand_NonEmptyListNoForce(t *testing.T) {
	f := testutil.NewService(t)
	work := f.AddList(t, "Work")
	f.AddTask(t, "Report", work)

	stdout, stderr, code := runCommand(t, &commands.RmListCmd{}, f, []string{"Work"}, false)
	expectUserError(t, stdout, stderr, code, "error: list not empty (use --force)\n")
}

func TestRmListCommand_NonEmptyListWithForce(t *testing.T) {
	f := testutil.NewService(t)
	work := f.AddList(t, "Work")
	f.AddTask(t, "Report", work)
	f.AddTask(t, "Keep me")

	cmd := &commands.RmListCmd{}
	cmd.SetForce(true)
	stdout, stderr, code := runCommand(t, cmd, f, []string{"Work"}, false)
	expectOK(t, stdout, stderr, code)

	tasks := f.App.Tasks(context.Background(), f.Owner, "")
	if len(tasks) != 1 || tasks[0].Title != "Keep me" {
		t.Errorf("expected the list's task cascaded away, got %+v", tasks)
	}
}

func TestRmListCommand_DefaultList(t *testing.T) {
	f := testutil.NewService(t)

	cmd := &commands.RmListCmd{}
	cmd.SetForce(true)
	stdout, stderr, code := runCommand(t, cmd, f, []string{"important"}, false)
	expectUserError(t, stdout, stderr, code, "error: cannot delete default list: Important\n")
}

func TestRmListCommand_ListNotFound(t *testing.T) {
	f := testutil.NewService(t)

	stdout, stderr, code := runCommand(t, &commands.RmListCmd{}, f, []string{"Nope"}, false)
	expectUserError(t, stdout, stderr, code, "error: list not found: Nope\n")
}

func TestRmListCommand_NoName(t *testing.T) {
	f := testutil.NewService(t)

	stdout, stderr, code := runCommand(t, &commands.RmListCmd{}, f, nil, false)
	expectUserError(t, stdout, stderr, code, "error: list name required\n")
}

// Tests for stats command
func TestStatsCommand(t *testing.T) {
	f := testutil.NewService(t)
	work := f.AddList(t, "Work")
	for i := 0; i < 5; i++ {
		id := f.AddTask(t, "task", work)
		if i < 2 {
			f.App.SetCompleted(context.Background(), id, f.Owner, true)
		}
	}

	stdout, stderr, code := runCommand(t, &commands.StatsCmd{}, f, []string{"Work"}, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	want := "Work\n  total:     5\n  completed: 2\n  pending:   3\n"
	if stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}

	cmd := &commands.StatsCmd{}
	fs := flagSet(cmd)
	fs.Parse([]string{"--json", "Work"})
	stdout, _, _ = runCommand(t, cmd, f, fs.Args(), false)
	if stdout != `{"totalTasks":5,"completedTasks":2,"pendingTasks":3}`+"\n" {
		t.Errorf("unexpected json %q", stdout)
	}
}

// Tests for register command
func TestRegisterCommand(t *testing.T) {
	f := testutil.NewService(t)
	dir := t.TempDir()
	cfg := &config.Config{Dir: dir}

	cmd := &commands.RegisterCmd{}
	cmd.SetPassword("hunter2")

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), cfg, f.App, []string{"Ada@Example.com"}, &outBuf, &errBuf)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, errBuf.String())
	}
	if outBuf.String() != "registered ada@example.com\n" {
		t.Errorf("unexpected output %q", outBuf.String())
	}
	if cfg.OwnerID == "" || cfg.OwnerID == f.Owner {
		t.Fatalf("expected a new owner id, got %q", cfg.OwnerID)
	}

	reloaded, err := config.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.OwnerID != cfg.OwnerID {
		t.Errorf("owner not saved: %q", reloaded.OwnerID)
	}

	if n := len(f.App.Lists(context.Background(), cfg.OwnerID)); n != 3 {
		t.Errorf("expected 3 default lists for the new user, got %d", n)
	}

	errBuf.Reset()
	outBuf.Reset()
	code = cmd.Run(context.Background(), &config.Config{Dir: t.TempDir()}, f.App, []string{"ada@example.com"}, &outBuf, &errBuf)
	if code != exitcode.UserError {
		t.Errorf("expected duplicate registration to fail with %d, got %d", exitcode.UserError, code)
	}
}

func TestRegisterCommand_NoPassword(t *testing.T) {
	t.Setenv("AUTOMATOR_PASSWORD", "")
	f := testutil.NewService(t)

	stdout, stderr, code := runWithConfig(t, &commands.RegisterCmd{}, f, &config.Config{Dir: t.TempDir()}, []string{"a@b.c"})
	expectUserError(t, stdout, stderr, code, "error: password required (--password or AUTOMATOR_PASSWORD)\n")
}

// flagSet registers cmd's flags the way the dispatcher does.
func flagSet(cmd commands.Command) *flag.FlagSet {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	return fs
}
