// Package ui implements the interactive task browser.
//
// The TUI fetches the user's tasks through the sync engine and renders them
// as a scrollable list with due dates and completion markers. Refreshing
// re-runs the fetch with the same filter.
package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ffx/internal/firefly"
	"github.com/desertthunder/ffx/internal/models"
	"github.com/desertthunder/ffx/internal/tasks"
)

var _ list.Item = taskItem{}

// taskItem wraps [models.Task] to implement [list.Item].
type taskItem struct {
	task models.Task
}

func (i taskItem) FilterValue() string { return i.task.Title }

func (i taskItem) Title() string {
	marker := "○"
	if i.task.IsDone {
		marker = "✓"
	}
	return fmt.Sprintf("%s %s", marker, i.task.Title)
}

func (i taskItem) Description() string {
	return fmt.Sprintf("due %s • set %s", i.task.DueDate, i.task.SetDate)
}

type tasksFetchedMsg struct {
	report *tasks.FetchReport
	err    error
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	refresh key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.refresh, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down},
		{k.refresh, k.quit},
	}
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	engine   tasks.Engine
	session  *firefly.Session
	filter   models.TaskFilter
	width    int
	height   int
	taskList list.Model
	report   *tasks.FetchReport
	loading  bool
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine tasks.Engine, session *firefly.Session, filter models.TaskFilter) *Model {
	return &Model{
		ctx:     ctx,
		engine:  engine,
		session: session,
		filter:  filter,
		loading: true,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init kicks off the first fetch.
func (m *Model) Init() tea.Cmd {
	return m.fetchTasks()
}

func (m *Model) fetchTasks() tea.Cmd {
	return func() tea.Msg {
		report, err := m.engine.Fetch(m.ctx, nil, m.session, m.filter)
		return tasksFetchedMsg{report: report, err: err}
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.taskList.Width() != 0 {
			m.taskList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if !m.loading {
				m.loading = true
				return m, m.fetchTasks()
			}
			return m, nil
		}

	case tasksFetchedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.report = msg.report
		items := make([]list.Item, len(msg.report.Tasks))
		for i, task := range msg.report.Tasks {
			items[i] = taskItem{task: task}
		}
		m.taskList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.taskList.Title = fmt.Sprintf("Tasks for %s", m.session.Email)
		m.taskList.SetSize(m.width-4, m.height-8)
		return m, nil
	}

	if m.taskList.Width() != 0 {
		var cmd tea.Cmd
		m.taskList, cmd = m.taskList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress r to retry, q to quit", m.err))
	}
	if m.loading || m.report == nil {
		return styles.title.Render("Fetching tasks...")
	}

	view := m.taskList.View()
	if m.report.Dropped > 0 || len(m.report.FailedPages) > 0 {
		view += "\n" + styles.warn.Render(
			fmt.Sprintf("%d records dropped, %d pages failed", m.report.Dropped, len(m.report.FailedPages)),
		)
	}
	return view + "\n" + m.help.View(m.keys)
}
