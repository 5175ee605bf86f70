package tasklist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultNotificationTTL is how long a notification stays visible.
const DefaultNotificationTTL = 3 * time.Second

// User-facing messages. Failures surface one fixed message per operation.
const (
	MsgLoadFailed   = "Error loading tasks"
	MsgCreateFailed = "Error creating task"
	MsgUpdateFailed = "Error updating task"
	MsgDeleteFailed = "Error deleting task"

	MsgCreated = "Task added successfully!"
	MsgEdited  = "Task updated successfully!"
	MsgDeleted = "Task deleted successfully!"
)

var (
	ErrEmptyTitle   = errors.New("title is empty")
	ErrNotEditing   = errors.New("no task is being edited")
	ErrTaskNotFound = errors.New("task not in list")
)

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindDanger  Kind = "danger"
)

// Notification is a short-lived message raised by a successful mutation.
type Notification struct {
	Kind    Kind
	Message string
	Expires time.Time
}

// Mode is the input mode of the client.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// State is a point-in-time copy of everything the client holds.
type State struct {
	Tasks        []Task
	Draft        string
	Editing      *Task
	Notification *Notification
	Loading      bool
	Err          string
	Invalid      bool
}

// Mode reports whether the draft is bound to an existing task.
func (s State) Mode() Mode {
	if s.Editing != nil {
		return ModeEdit
	}
	return ModeCreate
}

// Option configures a Client.
type Option func(*Client)

// WithClock replaces time.Now for notification expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithNotificationTTL sets how long notifications stay visible.
func WithNotificationTTL(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithLogger sets the diagnostic logger failures are reported to.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client is the task list client. It is safe for concurrent use; the
// lock is never held across a backend call, so overlapping operations
// apply their results in the order the responses arrive.
type Client struct {
	backend Backend
	logger  *log.Logger
	now     func() time.Time
	ttl     time.Duration

	mu      sync.Mutex
	tasks   []Task
	draft   string
	editing *Task
	note    *Notification
	loading bool
	errMsg  string
	invalid bool
}

// New returns a client with an empty list.
func New(backend Backend, opts ...Option) *Client {
	c := &Client{
		backend: backend,
		logger:  log.New(io.Discard),
		now:     time.Now,
		ttl:     DefaultNotificationTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the local list with the server's collection.
func (c *Client) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	tasks, err := c.backend.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.fail("load", MsgLoadFailed, err)
		return fmt.Errorf("load tasks: %w", err)
	}
	c.tasks = append(make([]Task, 0, len(tasks)), tasks...)
	c.errMsg = ""
	return nil
}

// Create asks the server to store a new task and appends the result.
// A blank title marks the input invalid and never reaches the server.
func (c *Client) Create(ctx context.Context, title string) error {
	if !c.validate(title) {
		return ErrEmptyTitle
	}

	task, err := c.backend.Create(ctx, title)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail("create", MsgCreateFailed, err)
		return fmt.Errorf("create task: %w", err)
	}
	c.tasks = append(c.tasks, task)
	c.draft = ""
	c.errMsg = ""
	c.notify(KindSuccess, MsgCreated)
	return nil
}

// ToggleStatus flips the completion flag of the task with the given id.
func (c *Client) ToggleStatus(ctx context.Context, id ID) error {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		c.logger.Warn("toggle on unknown task", "id", id.String())
		return fmt.Errorf("toggle %s: %w", id, ErrTaskNotFound)
	}
	t := c.tasks[i]
	c.mu.Unlock()

	t.Status = !t.Status
	updated, err := c.backend.Update(ctx, t)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail("toggle", MsgUpdateFailed, err)
		return fmt.Errorf("toggle %s: %w", id, err)
	}
	c.replace(id, updated)
	c.errMsg = ""
	return nil
}

// BeginEdit binds the draft to t. The record is snapshotted so a later
// SaveEdit sends back the fields as they were when editing started.
func (c *Client) BeginEdit(t Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := t
	c.editing = &snapshot
	c.draft = t.Title
}

// SaveEdit sends the edited task with only its title replaced.
func (c *Client) SaveEdit(ctx context.Context, title string) error {
	c.mu.Lock()
	if c.editing == nil {
		c.mu.Unlock()
		return ErrNotEditing
	}
	t := *c.editing
	c.mu.Unlock()

	if !c.validate(title) {
		return ErrEmptyTitle
	}

	t.Title = title
	updated, err := c.backend.Update(ctx, t)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail("edit", MsgUpdateFailed, err)
		return fmt.Errorf("edit %s: %w", t.ID, err)
	}
	c.replace(t.ID, updated)
	c.draft = ""
	c.editing = nil
	c.errMsg = ""
	c.notify(KindInfo, MsgEdited)
	return nil
}

// CancelEdit leaves edit mode and clears the draft.
func (c *Client) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = nil
	c.draft = ""
	c.invalid = false
}

// Delete removes the task on the server, then from the local list.
func (c *Client) Delete(ctx context.Context, id ID) error {
	err := c.backend.Delete(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail("delete", MsgDeleteFailed, err)
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if i := c.indexOf(id); i >= 0 {
		c.tasks = append(c.tasks[:i:i], c.tasks[i+1:]...)
	}
	c.errMsg = ""
	c.notify(KindDanger, MsgDeleted)
	return nil
}

// SetDraft records a keystroke in the input.
func (c *Client) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
	c.invalid = false
}

// DismissNotification hides the current notification early.
func (c *Client) DismissNotification() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.note = nil
}

// Snapshot returns a copy of the current state. An expired notification
// is dropped here.
func (c *Client) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.note != nil && !c.now().Before(c.note.Expires) {
		c.note = nil
	}
	s := State{
		Tasks:   append([]Task(nil), c.tasks...),
		Draft:   c.draft,
		Loading: c.loading,
		Err:     c.errMsg,
		Invalid: c.invalid,
	}
	if c.editing != nil {
		t := *c.editing
		s.Editing = &t
	}
	if c.note != nil {
		n := *c.note
		s.Notification = &n
	}
	return s
}

func (c *Client) validate(title string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalid = strings.TrimSpace(title) == ""
	return !c.invalid
}

func (c *Client) indexOf(id ID) int {
	for i, t := range c.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// replace swaps the record matching id for t. A record deleted while the
// request was in flight stays deleted.
func (c *Client) replace(id ID, t Task) {
	if i := c.indexOf(id); i >= 0 {
		c.tasks[i] = t
	}
}

func (c *Client) notify(kind Kind, msg string) {
	c.note = &Notification{
		Kind:    kind,
		Message: msg,
		Expires: c.now().Add(c.ttl),
	}
}

func (c *Client) fail(op, msg string, err error) {
	c.errMsg = msg
	c.logger.Error(msg, "op", op, "err", err)
}
