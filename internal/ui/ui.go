package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"tasklist/internal/config"
	"tasklist/internal/tasklist"
)

const (
	placeholderCreate = "Add a new task..."
	placeholderEdit   = "Edit the task..."
	invalidHint       = "Please enter a task before submitting."
	emptyHint         = "No tasks yet. Press '%s' to add one!"
)

const (
	opLoad   = "load"
	opCreate = "create"
	opToggle = "toggle"
	opEdit   = "edit"
	opDelete = "delete"
)

// opDoneMsg reports that a client operation finished.
type opDoneMsg struct {
	op  string
	err error
}

// expiredMsg asks for a redraw once a notification has timed out.
type expiredMsg struct{}

type Model struct {
	ctx         context.Context
	client      *tasklist.Client
	cfg         config.Config
	keys        keyMap
	help        help.Model
	input       textinput.Model
	spinner     spinner.Model
	logger      *log.Logger
	cursor      int
	typing      bool
	pendingLoad bool
	confirmDel  bool
	pendingDel  *tasklist.Task
	status      string
}

func Run(ctx context.Context, client *tasklist.Client, cfg config.Config, logger *log.Logger, configPath string, firstLaunch bool) error {
	m := NewModel(ctx, client, cfg, logger)
	if firstLaunch {
		m.status = "Created config at " + configPath
	}
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// NewModel builds the UI around client. The first load starts in Init.
func NewModel(ctx context.Context, client *tasklist.Client, cfg config.Config, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ti := textinput.New()
	ti.Placeholder = placeholderCreate
	ti.CharLimit = 200
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		ctx:         ctx,
		client:      client,
		cfg:         cfg,
		keys:        newKeyMap(cfg.Keys),
		help:        help.New(),
		input:       ti,
		spinner:     sp,
		logger:      logger,
		pendingLoad: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case opDoneMsg:
		return m.handleDone(msg)
	case expiredMsg:
		return m, nil
	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 16
		m.help.Width = msg.Width
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		if m.typing {
			return m.updateInputMode(msg)
		}
		return m.updateListMode(msg)
	}
	return m, nil
}

func (m Model) updateInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.typing = false
		m.input.Blur()
		if m.client.Snapshot().Mode() == tasklist.ModeEdit {
			m.client.CancelEdit()
			m.input.SetValue("")
			m.input.Placeholder = placeholderCreate
			m.status = "Edit cancelled"
		} else {
			m.client.SetDraft(m.input.Value())
		}
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		title := m.input.Value()
		if m.client.Snapshot().Mode() == tasklist.ModeEdit {
			return m, m.run(opEdit, func(ctx context.Context) error {
				return m.client.SaveEdit(ctx, title)
			})
		}
		return m, m.run(opCreate, func(ctx context.Context) error {
			return m.client.Create(ctx, title)
		})
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.client.SetDraft(m.input.Value())
		return m, cmd
	}
}

func (m Model) updateListMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.client.Snapshot()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		m.cursor = clampCursor(m.cursor+1, len(snap.Tasks))
	case key.Matches(msg, m.keys.Up):
		m.cursor = clampCursor(m.cursor-1, len(snap.Tasks))
	case key.Matches(msg, m.keys.Add):
		m.typing = true
		m.input.Placeholder = placeholderCreate
		m.input.SetValue(snap.Draft)
		m.status = ""
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Toggle):
		if len(snap.Tasks) == 0 {
			return m, nil
		}
		id := snap.Tasks[clampCursor(m.cursor, len(snap.Tasks))].ID
		return m, m.run(opToggle, func(ctx context.Context) error {
			return m.client.ToggleStatus(ctx, id)
		})
	case key.Matches(msg, m.keys.Edit):
		if len(snap.Tasks) == 0 {
			m.status = "No tasks to edit"
			return m, nil
		}
		t := snap.Tasks[clampCursor(m.cursor, len(snap.Tasks))]
		m.client.BeginEdit(t)
		m.typing = true
		m.input.Placeholder = placeholderEdit
		m.input.SetValue(t.Title)
		m.input.CursorEnd()
		m.status = ""
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Delete):
		if len(snap.Tasks) == 0 {
			return m, nil
		}
		t := snap.Tasks[clampCursor(m.cursor, len(snap.Tasks))]
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
	case key.Matches(msg, m.keys.Reload):
		m.pendingLoad = true
		return m, tea.Batch(m.load(), m.spinner.Tick)
	case key.Matches(msg, m.keys.Dismiss):
		m.client.DismissNotification()
	}
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		m.confirmDel = false
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			return m, nil
		}
		id := m.pendingDel.ID
		m.pendingDel = nil
		m.status = ""
		return m, m.run(opDelete, func(ctx context.Context) error {
			return m.client.Delete(ctx, id)
		})
	default:
		return m, nil
	}
}

func (m Model) handleDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	if msg.op == opLoad {
		m.pendingLoad = false
	}
	snap := m.client.Snapshot()
	m.cursor = clampCursor(m.cursor, len(snap.Tasks))

	switch {
	case msg.err == nil && (msg.op == opCreate || msg.op == opEdit):
		if msg.op == opCreate {
			m.cursor = clampCursor(len(snap.Tasks)-1, len(snap.Tasks))
		}
		m.input.SetValue(snap.Draft)
		m.input.Placeholder = placeholderCreate
		m.input.Blur()
		m.typing = false
	case errors.Is(msg.err, tasklist.ErrEmptyTitle):
	case errors.Is(msg.err, tasklist.ErrTaskNotFound):
		m.status = "Task is no longer in the list"
	case msg.err != nil:
		m.logger.Debug("operation failed", "op", msg.op, "err", msg.err)
	}
	return m, expireCmd(snap.Notification)
}

func (m Model) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) load() tea.Cmd {
	return m.run(opLoad, m.client.Load)
}

func (m Model) loading() bool {
	return m.pendingLoad || m.client.Snapshot().Loading
}

func expireCmd(n *tasklist.Notification) tea.Cmd {
	if n == nil {
		return nil
	}
	return tea.Tick(time.Until(n.Expires), func(time.Time) tea.Msg {
		return expiredMsg{}
	})
}

func (m Model) View() string {
	snap := m.client.Snapshot()
	var b strings.Builder

	b.WriteString(titleStyle.Render("My Todo List"))
	b.WriteString("\n\n")

	if n := snap.Notification; n != nil {
		b.WriteString(renderNotification(n))
		b.WriteString("\n")
	}
	if snap.Err != "" {
		b.WriteString(errorStyle.Render(snap.Err))
		b.WriteString("\n")
	}

	if m.typing || snap.Mode() == tasklist.ModeEdit {
		label := "Add: "
		if snap.Mode() == tasklist.ModeEdit {
			label = "Edit: "
		}
		b.WriteString(label)
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if snap.Invalid {
			b.WriteString(invalidStyle.Render(invalidHint))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	switch {
	case m.loading():
		b.WriteString(m.spinner.View())
		b.WriteString(" Loading...\n")
	case len(snap.Tasks) == 0:
		b.WriteString(mutedStyle.Render(fmt.Sprintf(emptyHint, keyName(m.cfg.Keys.Add))))
		b.WriteString("\n")
	default:
		b.WriteString(m.renderTaskList(snap.Tasks))
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.typing {
		b.WriteString(m.help.View(inputKeys(m.keys)))
	} else {
		b.WriteString(m.help.View(listKeys(m.keys)))
	}
	return b.String()
}

func (m Model) renderTaskList(tasks []tasklist.Task) string {
	var b strings.Builder
	for i, t := range tasks {
		cursor := " "
		if m.cursor == i && !m.typing {
			cursor = ">"
		}

		checkbox := "[ ]"
		title := t.Title
		if t.Status {
			checkbox = "[x]"
			title = doneStyle.Render(title)
		}

		b.WriteString(fmt.Sprintf("%s %s %s", cursor, checkbox, title))
		b.WriteString("\n")
	}
	return b.String()
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
