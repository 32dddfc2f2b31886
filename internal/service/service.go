package service

import (
	"context"
	"errors"
	"time"
)

// ResolveList failures. The returned errors wrap one of these and name the input.
var (
	ErrListNotFound  = errors.New("list not found")
	ErrAmbiguousList = errors.New("ambiguous list name")
)

// Tasks is the task and list API. Every call is scoped to an owner id.
// Results follow a comma-ok convention: store failures are logged and reported as
// false, empty or zero, and a resource owned by someone else looks exactly like a
// missing one.
type Tasks interface {
	// Register creates a user and its default lists. A duplicate email returns false.
	Register(ctx context.Context, u NewUser) (string, bool)

	// CreateTask creates a task. Without list information it lands in MyTasksListID.
	CreateTask(ctx context.Context, t NewTask) (string, bool)

	// Tasks returns the owner's tasks in creation order, restricted to listID when non-empty.
	Tasks(ctx context.Context, owner, listID string) []Task

	// Task returns one task.
	Task(ctx context.Context, id, owner string) (Task, bool)

	// UpdateTask applies a partial update and reports whether anything changed.
	UpdateTask(ctx context.Context, id, owner string, p TaskPatch) bool

	// DeleteTask deletes one task.
	DeleteTask(ctx context.Context, id, owner string) bool

	// DeleteTasks deletes several tasks and returns how many went.
	DeleteTasks(ctx context.Context, ids []string, owner string) int64

	// SetCompleted flips the completion flag.
	SetCompleted(ctx context.Context, id, owner string, completed bool) bool

	// SetImportance flips the importance flag and keeps the "Important" list in sync.
	SetImportance(ctx context.Context, id, owner string, important bool) bool

	// AddToList adds a list membership. Re-adding an existing one succeeds.
	AddToList(ctx context.Context, id, owner, listID string) bool

	// AddToLists adds every task to every list and returns the number of successes.
	AddToLists(ctx context.Context, ids, listIDs []string, owner string) int

	// RemoveFromList drops a membership, refusing to drop the last one.
	RemoveFromList(ctx context.Context, id, owner, listID string) bool

	// SearchTasks matches titles case-insensitively. An empty term matches nothing.
	SearchTasks(ctx context.Context, owner, term string) []Task

	// ImportantTasks returns the owner's important tasks.
	ImportantTasks(ctx context.Context, owner string) []Task

	// CompletedTasks returns the owner's completed tasks.
	CompletedTasks(ctx context.Context, owner string) []Task

	// CreateList creates a list.
	CreateList(ctx context.Context, l NewList) (string, bool)

	// Lists returns the owner's lists in creation order.
	Lists(ctx context.Context, owner string) []TaskList

	// List returns one list.
	List(ctx context.Context, id, owner string) (TaskList, bool)

	// ResolveList matches user input against list names, ignoring case and surrounding
	// space. It is the one lookup that returns an error, since the CLI reports which of
	// ErrListNotFound or ErrAmbiguousList happened.
	ResolveList(ctx context.Context, owner, name string) (TaskList, error)

	// UpdateList applies a partial update.
	UpdateList(ctx context.Context, id, owner string, p ListPatch) bool

	// DeleteList deletes a non-default list and every task filed under it.
	DeleteList(ctx context.Context, id, owner string) bool

	// ListStats counts a list's tasks.
	ListStats(ctx context.Context, id, owner string) (ListStats, bool)

	// PublishActivities files each activity as a task in the owner's "My Day" list
	// and returns how many were created.
	PublishActivities(ctx context.Context, owner string, activities []Activity) int
}

// Service is everything the CLI needs: the task API plus activity extraction.
type Service interface {
	Tasks

	// Extract turns a free-form message into dated activities. It never fails:
	// anything that goes wrong yields an empty slice.
	Extract(ctx context.Context, message string, reference time.Time) []Activity
}
