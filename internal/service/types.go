// Package service defines the domain types and the interface the CLI drives.
package service

import (
	"encoding/json"
	"time"
)

// MyTasksListID is the membership given to a task created without any list.
// It names no stored list.
const MyTasksListID = "my-tasks"

// Default list names, created for every user at registration.
const (
	MyDayList     = "My Day"
	ImportantList = "Important"
	TasksList     = "Tasks"
)

// DateLayout is the calendar-day format used for activity dates and --due.
const DateLayout = "02-01-2006"

// Day returns the calendar day of t as midnight UTC, the form due dates are stored in.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// User is a registered account. The password hash never leaves the users package.
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser carries registration input.
type NewUser struct {
	Email    string
	Password string
	Name     string
}

// Task is a to-do item. ListIDs is never empty; ListID is its first entry.
type Task struct {
	ID          string
	OwnerID     string
	Title       string
	Note        string
	IsCompleted bool
	IsImportant bool
	DueDate     *time.Time
	ListIDs     []string
	ListID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InList reports whether the task is a member of listID.
func (t Task) InList(listID string) bool {
	for _, id := range t.ListIDs {
		if id == listID {
			return true
		}
	}
	return false
}

// NewTask carries task creation input. ListIDs wins over ListID when both are set.
type NewTask struct {
	OwnerID     string
	Title       string
	Note        string
	IsCompleted bool
	IsImportant bool
	DueDate     *time.Time
	ListID      string
	ListIDs     []string
}

// TaskPatch is a partial task update; nil fields are left untouched.
// A non-nil empty ListIDs is rejected.
type TaskPatch struct {
	Title       *string
	Note        *string
	IsCompleted *bool
	IsImportant *bool
	DueDate     *time.Time
	ListID      *string
	ListIDs     []string
}

// TaskList is a named collection of tasks.
type TaskList struct {
	ID        string
	OwnerID   string
	Name      string
	Icon      string
	IconColor int64
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewList carries list creation input. Empty icon metadata gets defaults.
type NewList struct {
	OwnerID   string
	Name      string
	Icon      string
	IconColor int64
	IsDefault bool
}

// ListPatch is a partial list update. Default status cannot be patched.
type ListPatch struct {
	Name      *string
	Icon      *string
	IconColor *int64
}

// ListStats counts the tasks of one list.
type ListStats struct {
	Total     int `json:"totalTasks"`
	Completed int `json:"completedTasks"`
	Pending   int `json:"pendingTasks"`
}

// Activity is one extracted actionable item: a short noun-form label and a calendar day.
type Activity struct {
	Name string
	Date time.Time
}

// DateString formats the activity date as dd-mm-yyyy.
func (a Activity) DateString() string {
	return a.Date.Format(DateLayout)
}

// MarshalJSON encodes the activity as {"activity": ..., "date": "dd-mm-yyyy"}.
func (a Activity) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Activity string `json:"activity"`
		Date     string `json:"date"`
	}{a.Name, a.DateString()})
}
