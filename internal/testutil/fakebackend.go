// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"tasklist/internal/tasklist"
)

// ErrNotFound is returned when a task is not found.
var ErrNotFound = errors.New("not found")

// FakeBackend is an in-memory implementation of tasklist.Backend for testing.
type FakeBackend struct {
	mu     sync.Mutex
	tasks  []tasklist.Task
	nextID int
	calls  map[string]int

	// Error injection for testing
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
}

// NewFakeBackend creates an empty FakeBackend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		nextID: 1,
		calls:  make(map[string]int),
	}
}

// AddTask seeds a task and returns it.
func (f *FakeBackend) AddTask(title string, status bool) tasklist.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := tasklist.Task{ID: f.allocID(), Title: title, Status: status}
	f.tasks = append(f.tasks, t)
	return t
}

// Calls returns how many times op was invoked.
func (f *FakeBackend) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// TotalCalls returns the number of backend calls of any kind.
func (f *FakeBackend) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// Tasks returns a copy of the stored tasks.
func (f *FakeBackend) Tasks() []tasklist.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tasklist.Task(nil), f.tasks...)
}

// List implements tasklist.Backend.
func (f *FakeBackend) List(ctx context.Context) ([]tasklist.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["list"]++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]tasklist.Task(nil), f.tasks...), nil
}

// Create implements tasklist.Backend.
func (f *FakeBackend) Create(ctx context.Context, title string) (tasklist.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create"]++
	if f.CreateErr != nil {
		return tasklist.Task{}, f.CreateErr
	}
	t := tasklist.Task{ID: f.allocID(), Title: title}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// Update implements tasklist.Backend.
func (f *FakeBackend) Update(ctx context.Context, t tasklist.Task) (tasklist.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update"]++
	if f.UpdateErr != nil {
		return tasklist.Task{}, f.UpdateErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == t.ID {
			f.tasks[i] = t
			return t, nil
		}
	}
	return tasklist.Task{}, ErrNotFound
}

// Delete implements tasklist.Backend.
func (f *FakeBackend) Delete(ctx context.Context, id tasklist.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *FakeBackend) allocID() tasklist.ID {
	id := tasklist.ID(strconv.Itoa(f.nextID))
	f.nextID++
	return id
}
