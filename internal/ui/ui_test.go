package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tasklist/internal/config"
	"tasklist/internal/tasklist"
	"tasklist/internal/testutil"
)

func newTestModel(t *testing.T, fb *testutil.FakeBackend) Model {
	t.Helper()
	// A clock in the past makes notification expiry ticks fire at once.
	clock := testutil.NewClock(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	client := tasklist.New(fb, tasklist.WithClock(clock.Now))
	m := NewModel(context.Background(), client, config.Default(), nil)
	return exec(t, m, m.Init())
}

// exec runs cmd and feeds any operation results back into the model.
// Other messages (spinner ticks, cursor blinks, redraw ticks) are dropped.
func exec(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		done, ok := msg.(opDoneMsg)
		if !ok {
			continue
		}
		next, _ := m.Update(done)
		m = next.(Model)
	}
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if isOpKey(m, msg) {
		m = exec(t, m, cmd)
	}
	return m
}

// isOpKey reports whether msg triggers a client operation whose command
// must run, as opposed to focus commands that only blink the cursor.
func isOpKey(m Model, msg tea.KeyMsg) bool {
	switch msg.String() {
	case m.cfg.Keys.Add, m.cfg.Keys.Edit:
		return m.confirmDel
	}
	return true
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		next, _ := m.Update(runes(string(r)))
		m = next.(Model)
	}
	return m
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
)

func TestInit_LoadsTasks(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.AddTask("Buy milk", false)
	fb.AddTask("Walk dog", true)

	m := newTestModel(t, fb)
	if m.pendingLoad {
		t.Fatal("expected load to have finished")
	}
	view := m.View()
	for _, want := range []string{"Buy milk", "[ ]", "Walk dog", "[x]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestInit_EmptyListHint(t *testing.T) {
	m := newTestModel(t, testutil.NewFakeBackend())
	if !strings.Contains(m.View(), "No tasks yet") {
		t.Errorf("expected empty hint, got:\n%s", m.View())
	}
}

func TestView_LoadingSpinner(t *testing.T) {
	client := tasklist.New(testutil.NewFakeBackend())
	m := NewModel(context.Background(), client, config.Default(), nil)
	if !strings.Contains(m.View(), "Loading...") {
		t.Errorf("expected loading indicator before first load, got:\n%s", m.View())
	}
}

func TestInit_LoadFailureShowsError(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.ListErr = errors.New("connection refused")

	m := newTestModel(t, fb)
	view := m.View()
	if !strings.Contains(view, tasklist.MsgLoadFailed) {
		t.Errorf("expected %q in view:\n%s", tasklist.MsgLoadFailed, view)
	}
	if !strings.Contains(view, "No tasks yet") {
		t.Errorf("expected empty list after failed first load:\n%s", view)
	}
}

func TestAddTask(t *testing.T) {
	fb := testutil.NewFakeBackend()
	m := newTestModel(t, fb)

	m = press(t, m, runes("a"))
	if !m.typing {
		t.Fatal("expected input focused")
	}
	m = typeText(t, m, "Buy milk")
	m = press(t, m, enter)

	if fb.Calls("create") != 1 {
		t.Fatalf("expected one create call, got %d", fb.Calls("create"))
	}
	if m.typing {
		t.Error("expected input blurred after create")
	}
	view := m.View()
	if !strings.Contains(view, "Buy milk") || !strings.Contains(view, tasklist.MsgCreated) {
		t.Errorf("unexpected view:\n%s", view)
	}
	if m.input.Value() != "" {
		t.Errorf("expected input cleared, got %q", m.input.Value())
	}
}

func TestAddTask_BlankIsInvalid(t *testing.T) {
	fb := testutil.NewFakeBackend()
	m := newTestModel(t, fb)

	m = press(t, m, runes("a"))
	m = typeText(t, m, "   ")
	m = press(t, m, enter)

	if fb.Calls("create") != 0 {
		t.Fatalf("expected no create call, got %d", fb.Calls("create"))
	}
	if !m.typing {
		t.Error("expected input to stay focused")
	}
	view := m.View()
	if !strings.Contains(view, invalidHint) {
		t.Errorf("expected invalid hint:\n%s", view)
	}
	if strings.Contains(view, tasklist.MsgCreateFailed) {
		t.Errorf("expected no error banner:\n%s", view)
	}

	m = typeText(t, m, "x")
	if strings.Contains(m.View(), invalidHint) {
		t.Error("expected invalid hint cleared by typing")
	}
}

func TestAddTask_CancelClearsInvalid(t *testing.T) {
	fb := testutil.NewFakeBackend()
	m := newTestModel(t, fb)

	m = press(t, m, runes("a"))
	m = press(t, m, enter)
	if !m.client.Snapshot().Invalid {
		t.Fatal("expected empty submit to mark input invalid")
	}
	m = press(t, m, esc)
	if m.client.Snapshot().Invalid {
		t.Error("expected cancel to clear invalid flag")
	}
	m = press(t, m, runes("a"))
	if strings.Contains(m.View(), invalidHint) {
		t.Errorf("expected no hint on reopened input:\n%s", m.View())
	}
}

func TestToggleTask(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.AddTask("Buy milk", false)
	m := newTestModel(t, fb)

	m = press(t, m, space)
	if !fb.Tasks()[0].Status {
		t.Fatal("expected backend task completed")
	}
	if !strings.Contains(m.View(), "[x]") {
		t.Errorf("expected checked box:\n%s", m.View())
	}
}

func TestEditTask(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.AddTask("Buy milk", true)
	m := newTestModel(t, fb)

	m = press(t, m, runes("e"))
	if m.input.Value() != "Buy milk" {
		t.Fatalf("expected input seeded with title, got %q", m.input.Value())
	}
	if !strings.Contains(m.View(), "Edit: ") {
		t.Errorf("expected edit label:\n%s", m.View())
	}
	m = typeText(t, m, " 2")
	m = press(t, m, enter)

	got := fb.Tasks()[0]
	if got.Title != "Buy milk 2" || !got.Status {
		t.Errorf("unexpected edited task: %+v", got)
	}
	if m.client.Snapshot().Mode() != tasklist.ModeCreate {
		t.Error("expected create mode after save")
	}
	if !strings.Contains(m.View(), tasklist.MsgEdited) {
		t.Errorf("expected edit notification:\n%s", m.View())
	}
}

func TestEditTask_Cancel(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.AddTask("Buy milk", false)
	m := newTestModel(t, fb)

	m = press(t, m, runes("e"))
	m = press(t, m, esc)

	if m.typing {
		t.Error("expected input blurred")
	}
	s := m.client.Snapshot()
	if s.Mode() != tasklist.ModeCreate || s.Draft != "" {
		t.Errorf("unexpected state after cancel: %+v", s)
	}
	if fb.Calls("update") != 0 {
		t.Errorf("expected no update call")
	}
}

func TestDeleteTask(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.AddTask("Buy milk", false)
	m := newTestModel(t, fb)

	m = press(t, m, runes("d"))
	if !m.confirmDel {
		t.Fatal("expected delete confirmation")
	}
	m = press(t, m, runes("y"))

	if len(fb.Tasks()) != 0 {
		t.Fatal("expected task deleted on backend")
	}
	view := m.View()
	if !strings.Contains(view, tasklist.MsgDeleted) || !strings.Contains(view, "No tasks yet") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestDeleteTask_Declined(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.AddTask("Buy milk", false)
	m := newTestModel(t, fb)

	m = press(t, m, runes("d"))
	m = press(t, m, runes("n"))
	if fb.Calls("delete") != 0 {
		t.Error("expected no delete call")
	}
	if len(m.client.Snapshot().Tasks) != 1 {
		t.Error("expected task kept")
	}
}

func TestCursorMovement(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.AddTask("a", false)
	fb.AddTask("b", false)
	m := newTestModel(t, fb)

	m = press(t, m, runes("j"))
	m = press(t, m, runes("j"))
	if m.cursor != 1 {
		t.Fatalf("expected cursor clamped at 1, got %d", m.cursor)
	}
	m = press(t, m, space)
	if tasks := fb.Tasks(); tasks[0].Status || !tasks[1].Status {
		t.Errorf("expected only second task toggled: %+v", tasks)
	}
	m = press(t, m, runes("k"))
	if m.cursor != 0 {
		t.Errorf("expected cursor 0, got %d", m.cursor)
	}
}

func TestClampCursor(t *testing.T) {
	tests := []struct {
		cur, n, want int
	}{
		{0, 0, 0},
		{-1, 3, 0},
		{5, 3, 2},
		{1, 3, 1},
	}
	for _, tt := range tests {
		if got := clampCursor(tt.cur, tt.n); got != tt.want {
			t.Errorf("clampCursor(%d, %d) = %d, want %d", tt.cur, tt.n, got, tt.want)
		}
	}
}
