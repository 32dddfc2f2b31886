// Package todo coordinates the task, list and user repositories so that operations
// spanning more than one of them keep ownership and membership rules intact.
package todo

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"automator/internal/docstore"
	"automator/internal/lists"
	"automator/internal/service"
	"automator/internal/tasks"
	"automator/internal/users"
)

// Manager implements service.Tasks on top of the repositories.
type Manager struct {
	tasks *tasks.Repository
	lists *lists.Repository
	users *users.Repository
	log   *zap.Logger
}

var _ service.Tasks = (*Manager)(nil)

// NewManager wires the repositories over one store. A nil logger discards output.
func NewManager(store docstore.Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		tasks: tasks.New(store, log.Named("tasks")),
		lists: lists.New(store, log.Named("lists")),
		users: users.New(store, log.Named("users")),
		log:   log,
	}
}

// EnsureIndexes creates every index the repositories rely on.
func (m *Manager) EnsureIndexes(ctx context.Context) error {
	for _, ensure := range []func(context.Context) error{
		m.users.EnsureIndexes,
		m.lists.EnsureIndexes,
		m.tasks.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}
	return nil
}

// Register creates the user, then its default lists. Missing default lists are
// logged but do not undo the registration.
func (m *Manager) Register(ctx context.Context, u service.NewUser) (string, bool) {
	id, ok := m.users.Create(ctx, u)
	if !ok {
		return "", false
	}
	if created := m.lists.BootstrapDefaults(ctx, id); len(created) < len(lists.Defaults) {
		m.log.Warn("user registered without all default lists", zap.String("user_id", id), zap.Int("created", len(created)))
	}
	return id, true
}

// User returns a registered user.
func (m *Manager) User(ctx context.Context, id string) (service.User, bool) {
	return m.users.GetByID(ctx, id)
}

// CreateTask implements service.Tasks.
func (m *Manager) CreateTask(ctx context.Context, t service.NewTask) (string, bool) {
	return m.tasks.Create(ctx, t)
}

// Tasks implements service.Tasks.
func (m *Manager) Tasks(ctx context.Context, owner, listID string) []service.Task {
	return m.tasks.Get(ctx, owner, listID)
}

// Task implements service.Tasks.
func (m *Manager) Task(ctx context.Context, id, owner string) (service.Task, bool) {
	return m.tasks.GetByID(ctx, id, owner)
}

// UpdateTask implements service.Tasks.
func (m *Manager) UpdateTask(ctx context.Context, id, owner string, p service.TaskPatch) bool {
	return m.tasks.Update(ctx, id, owner, p)
}

// DeleteTask implements service.Tasks.
func (m *Manager) DeleteTask(ctx context.Context, id, owner string) bool {
	return m.tasks.Delete(ctx, id, owner)
}

// DeleteTasks implements service.Tasks.
func (m *Manager) DeleteTasks(ctx context.Context, ids []string, owner string) int64 {
	return m.tasks.DeleteMany(ctx, ids, owner)
}

// SetCompleted implements service.Tasks.
func (m *Manager) SetCompleted(ctx context.Context, id, owner string, completed bool) bool {
	return m.tasks.Update(ctx, id, owner, service.TaskPatch{IsCompleted: &completed})
}

// SetImportance updates the flag, then mirrors it in the owner's "Important" list.
// The result reports the flag only: it is true when the task ends up with the
// requested value. Removal from "Important" is still subject to the last-membership rule.
func (m *Manager) SetImportance(ctx context.Context, id, owner string, important bool) bool {
	if !m.tasks.Update(ctx, id, owner, service.TaskPatch{IsImportant: &important}) {
		t, ok := m.tasks.GetByID(ctx, id, owner)
		if !ok || t.IsImportant != important {
			return false
		}
	}
	list, ok := m.lists.FindDefault(ctx, owner, service.ImportantList)
	if !ok {
		m.log.Warn("no Important list to sync", zap.String("user_id", owner))
		return true
	}
	if important {
		m.tasks.AddToList(ctx, id, owner, list.ID)
	} else {
		m.tasks.RemoveFromList(ctx, id, owner, list.ID)
	}
	return true
}

// AddToList implements service.Tasks.
func (m *Manager) AddToList(ctx context.Context, id, owner, listID string) bool {
	return m.tasks.AddToList(ctx, id, owner, listID)
}

// AddToLists adds every task to every list, one membership at a time.
func (m *Manager) AddToLists(ctx context.Context, ids, listIDs []string, owner string) int {
	n := 0
	for _, id := range ids {
		for _, listID := range listIDs {
			if m.tasks.AddToList(ctx, id, owner, listID) {
				n++
			}
		}
	}
	return n
}

// RemoveFromList implements service.Tasks.
func (m *Manager) RemoveFromList(ctx context.Context, id, owner, listID string) bool {
	return m.tasks.RemoveFromList(ctx, id, owner, listID)
}

// SearchTasks implements service.Tasks.
func (m *Manager) SearchTasks(ctx context.Context, owner, term string) []service.Task {
	return m.tasks.Search(ctx, owner, term)
}

// ImportantTasks implements service.Tasks.
func (m *Manager) ImportantTasks(ctx context.Context, owner string) []service.Task {
	return m.tasks.Important(ctx, owner)
}

// CompletedTasks implements service.Tasks.
func (m *Manager) CompletedTasks(ctx context.Context, owner string) []service.Task {
	return m.tasks.Completed(ctx, owner)
}

// CreateList implements service.Tasks.
func (m *Manager) CreateList(ctx context.Context, l service.NewList) (string, bool) {
	return m.lists.Create(ctx, l)
}

// Lists implements service.Tasks.
func (m *Manager) Lists(ctx context.Context, owner string) []service.TaskList {
	return m.lists.Get(ctx, owner, false)
}

// List implements service.Tasks.
func (m *Manager) List(ctx context.Context, id, owner string) (service.TaskList, bool) {
	return m.lists.GetByID(ctx, id, owner)
}

// ResolveList implements service.Tasks.
func (m *Manager) ResolveList(ctx context.Context, owner, name string) (service.TaskList, error) {
	name = strings.TrimSpace(name)
	nameLower := strings.ToLower(name)

	var matches []service.TaskList
	for _, l := range m.lists.Get(ctx, owner, false) {
		if strings.ToLower(strings.TrimSpace(l.Name)) == nameLower {
			matches = append(matches, l)
		}
	}

	switch len(matches) {
	case 0:
		return service.TaskList{}, fmt.Errorf("%w: %s", service.ErrListNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return service.TaskList{}, fmt.Errorf("%w: %s", service.ErrAmbiguousList, name)
	}
}

// UpdateList implements service.Tasks.
func (m *Manager) UpdateList(ctx context.Context, id, owner string, p service.ListPatch) bool {
	return m.lists.Update(ctx, id, owner, p)
}

// DeleteList removes a non-default list, then every owner task filed under it.
// The two steps are not atomic: if the cascade fails the list is gone and its tasks remain.
func (m *Manager) DeleteList(ctx context.Context, id, owner string) bool {
	list, ok := m.lists.GetByID(ctx, id, owner)
	if !ok || list.IsDefault {
		return false
	}
	if !m.lists.Delete(ctx, id, owner) {
		return false
	}
	n := m.tasks.DeleteByList(ctx, id, owner)
	m.log.Debug("deleted list", zap.String("list_id", id), zap.Int64("tasks_deleted", n))
	return true
}

// ListStats counts the tasks of a list. An unknown list is not found rather than empty.
func (m *Manager) ListStats(ctx context.Context, id, owner string) (service.ListStats, bool) {
	if _, ok := m.lists.GetByID(ctx, id, owner); !ok {
		return service.ListStats{}, false
	}
	var st service.ListStats
	for _, t := range m.tasks.Get(ctx, owner, id) {
		st.Total++
		if t.IsCompleted {
			st.Completed++
		}
	}
	st.Pending = st.Total - st.Completed
	return st, true
}

// PublishActivities files each activity as a task due on its date, in the owner's
// "My Day" list, falling back to my-tasks when that list is missing.
func (m *Manager) PublishActivities(ctx context.Context, owner string, activities []service.Activity) int {
	listID := service.MyTasksListID
	if l, ok := m.lists.FindDefault(ctx, owner, service.MyDayList); ok {
		listID = l.ID
	}
	n := 0
	for _, a := range activities {
		due := service.Day(a.Date)
		if _, ok := m.tasks.Create(ctx, service.NewTask{
			OwnerID: owner,
			Title:   a.Name,
			DueDate: &due,
			ListID:  listID,
		}); ok {
			n++
		}
	}
	return n
}
