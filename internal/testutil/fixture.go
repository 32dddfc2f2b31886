// Package testutil provides fixtures shared by the CLI tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"automator/internal/backend/memstore"
	"automator/internal/extract"
	"automator/internal/service"
	"automator/internal/todo"
)

// Owner credentials registered by NewService.
const (
	OwnerEmail    = "owner@example.com"
	OwnerPassword = "correct horse"
)

// FakeGenerator is a canned extract.Generator that records every prompt.
type FakeGenerator struct {
	mu       sync.Mutex
	Response string
	Err      error
	Prompts  []string
}

var _ extract.Generator = (*FakeGenerator)(nil)

// Generate returns Response or Err.
func (g *FakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Prompts = append(g.Prompts, prompt)
	return g.Response, g.Err
}

// Calls returns how many prompts the generator has seen.
func (g *FakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Prompts)
}

// Fixture is a fully wired service over an in-memory store with one registered owner.
type Fixture struct {
	App       *todo.App
	Store     *memstore.Store
	Generator *FakeGenerator
	Owner     string
}

// NewService builds a Fixture. Extraction runs in UTC with a short timeout.
func NewService(t *testing.T) *Fixture {
	t.Helper()

	store := memstore.New()
	m := todo.NewManager(store, nil)
	if err := m.EnsureIndexes(context.Background()); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}
	gen := &FakeGenerator{}
	engine := extract.New(gen, extract.WithLocation(time.UTC), extract.WithTimeout(2*time.Second))
	app := todo.NewApp(m, engine)

	owner, ok := app.Register(context.Background(), service.NewUser{Email: OwnerEmail, Password: OwnerPassword})
	if !ok {
		t.Fatal("failed to register fixture owner")
	}
	return &Fixture{App: app, Store: store, Generator: gen, Owner: owner}
}

// AddTask creates a task for the owner and fails the test when it cannot.
func (f *Fixture) AddTask(t *testing.T, title string, listIDs ...string) string {
	t.Helper()
	id, ok := f.App.CreateTask(context.Background(), service.NewTask{OwnerID: f.Owner, Title: title, ListIDs: listIDs})
	if !ok {
		t.Fatalf("failed to create task %q", title)
	}
	return id
}

// AddList creates a list for the owner and fails the test when it cannot.
func (f *Fixture) AddList(t *testing.T, name string) string {
	t.Helper()
	id, ok := f.App.CreateList(context.Background(), service.NewList{OwnerID: f.Owner, Name: name})
	if !ok {
		t.Fatalf("failed to create list %q", name)
	}
	return id
}

// List resolves one of the owner's lists by name.
func (f *Fixture) List(t *testing.T, name string) service.TaskList {
	t.Helper()
	l, err := f.App.ResolveList(context.Background(), f.Owner, name)
	if err != nil {
		t.Fatalf("ResolveList(%q): %v", name, err)
	}
	return l
}

// Task fetches one of the owner's tasks.
func (f *Fixture) Task(t *testing.T, id string) service.Task {
	t.Helper()
	task, ok := f.App.Task(context.Background(), id, f.Owner)
	if !ok {
		t.Fatalf("task %s not found", id)
	}
	return task
}
