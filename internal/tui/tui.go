// Package tui provides an interactive terminal browser for the tracker
// using Bubble Tea.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/baiirun/tracker/internal/manager"
	"github.com/baiirun/tracker/internal/model"
	"github.com/baiirun/tracker/internal/render"
)

// ViewMode represents the current view state.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// InputMode represents what kind of text input is active.
type InputMode int

const (
	InputNone   InputMode = iota
	InputSearch           // Entering search text
	InputCreate           // Entering new task name
)

// kindCycle is the order tab steps through; "" shows every kind.
var kindCycle = []model.Kind{"", model.KindTask, model.KindEpic, model.KindSubtask}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	filterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// Model is the Bubble Tea model. It reads and writes through the manager,
// so every change is visible to the rest of the process.
type Model struct {
	mgr *manager.Manager

	items    []model.Item
	filtered []model.Item
	cursor   int
	detail   model.Item

	viewMode     ViewMode
	kindIdx      int
	filterSearch string

	inputMode InputMode
	inputText string

	message string
	err     error
	width   int
	height  int
}

// New creates a new TUI model over mgr.
func New(mgr *manager.Manager) Model {
	return Model{mgr: mgr, viewMode: ViewList}
}

// Run starts the program and blocks until the user quits.
func Run(mgr *manager.Manager) error {
	_, err := tea.NewProgram(New(mgr), tea.WithAltScreen()).Run()
	return err
}

// Messages
type itemsMsg struct {
	items []model.Item
}

type actionMsg struct {
	message string
	err     error
}

func (m Model) loadItems() tea.Cmd {
	return func() tea.Msg {
		return itemsMsg{items: m.mgr.GetAll()}
	}
}

// applyFilters filters items based on current filter state.
func (m *Model) applyFilters() {
	m.filtered = nil
	kind := kindCycle[m.kindIdx]
	search := strings.ToLower(m.filterSearch)
	for _, item := range m.items {
		if kind != "" && item.Kind != kind {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(item.Name), search) &&
			!strings.Contains(strings.ToLower(item.Description), search) {
			continue
		}
		m.filtered = append(m.filtered, item)
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
}

func (m Model) selected() (model.Item, bool) {
	if len(m.filtered) == 0 || m.cursor >= len(m.filtered) {
		return model.Item{}, false
	}
	return m.filtered[m.cursor], true
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.loadItems()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Clear message on any key
		m.message = ""
		m.err = nil
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case itemsMsg:
		m.items = msg.items
		m.applyFilters()
		if m.viewMode == ViewDetail {
			// Follow edits to the open item; leave the view if it is gone.
			m.viewMode = ViewList
			for _, item := range m.items {
				if item.ID == m.detail.ID {
					m.detail, m.viewMode = item, ViewDetail
				}
			}
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.message = msg.message
		}
		return m, m.loadItems()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.inputMode != InputNone {
		return m.handleInputKey(msg)
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKey(msg)
	case ViewDetail:
		return m.handleDetailKey(msg)
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.inputMode == InputSearch {
			m.filterSearch = ""
			m.applyFilters()
		}
		m.inputMode = InputNone
		m.inputText = ""
		return m, nil

	case "enter":
		return m.submitInput()

	case "backspace":
		if len(m.inputText) > 0 {
			m.inputText = m.inputText[:len(m.inputText)-1]
		}

	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.inputText += string(msg.Runes)
		}
	}
	if m.inputMode == InputSearch {
		m.filterSearch = m.inputText
		m.applyFilters()
	}
	return m, nil
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.inputText)
	mode := m.inputMode
	m.inputMode = InputNone
	m.inputText = ""

	switch mode {
	case InputSearch:
		m.filterSearch = text
		m.applyFilters()
		return m, nil

	case InputCreate:
		if text == "" {
			return m, nil
		}
		return m, func() tea.Msg {
			item, err := m.mgr.AddTask(model.Draft{Name: text})
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{message: fmt.Sprintf("Created task %d", item.ID)}
		}
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case "tab":
		m.kindIdx = (m.kindIdx + 1) % len(kindCycle)
		m.applyFilters()

	case "/":
		m.inputMode = InputSearch
		m.inputText = m.filterSearch

	case "n":
		m.inputMode = InputCreate

	case "enter":
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		// Opening an item counts as a read for the history.
		got, err := m.mgr.Get(item.ID)
		if err != nil {
			m.err = err
			return m, m.loadItems()
		}
		m.detail = got
		m.viewMode = ViewDetail

	case "s":
		if item, ok := m.selected(); ok {
			return m, m.cycleStatus(item)
		}

	case "x":
		if item, ok := m.selected(); ok {
			return m, m.deleteItem(item)
		}
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q", "backspace":
		m.viewMode = ViewList
	case "s":
		return m, m.cycleStatus(m.detail)
	}
	return m, nil
}

// nextStatus steps NEW -> IN_PROGRESS -> DONE -> NEW.
func nextStatus(s model.Status) model.Status {
	switch s {
	case model.StatusNew:
		return model.StatusInProgress
	case model.StatusInProgress:
		return model.StatusDone
	default:
		return model.StatusNew
	}
}

func (m Model) cycleStatus(item model.Item) tea.Cmd {
	return func() tea.Msg {
		if item.Kind == model.KindEpic {
			return actionMsg{err: fmt.Errorf("epic %d status follows its subtasks", item.ID)}
		}
		st := nextStatus(item.Status)
		if _, err := m.mgr.Update(model.Patch{ID: item.ID, Status: &st}); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{message: fmt.Sprintf("%d is now %s", item.ID, st)}
	}
}

func (m Model) deleteItem(item model.Item) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.mgr.Delete(item.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{message: fmt.Sprintf("Deleted %s %d", item.Kind, item.ID)}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	if m.viewMode == ViewDetail {
		b.WriteString(render.Detail(m.detail))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("s: cycle status  esc: back  ctrl+c: quit"))
		b.WriteString(m.footer())
		return b.String()
	}

	b.WriteString(titleStyle.Render("Tracker"))
	if kind := kindCycle[m.kindIdx]; kind != "" {
		b.WriteString("  " + filterStyle.Render("kind:"+strings.ToLower(string(kind))))
	}
	if m.filterSearch != "" {
		b.WriteString("  " + filterStyle.Render("search:"+m.filterSearch))
	}
	b.WriteString("\n\n")

	if len(m.filtered) == 0 {
		b.WriteString(helpStyle.Render("No items."))
		b.WriteString("\n")
	}
	for i, item := range m.filtered {
		line := render.Line(item)
		if i == m.cursor {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch m.inputMode {
	case InputSearch:
		b.WriteString(inputStyle.Render("Search: " + m.inputText))
	case InputCreate:
		b.WriteString(inputStyle.Render("New task: " + m.inputText))
	default:
		b.WriteString(helpStyle.Render("j/k: move  enter: open  tab: kind  /: search  n: new task  s: status  x: delete  q: quit"))
	}
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) footer() string {
	switch {
	case m.err != nil:
		return "\n" + errorStyle.Render("Error: "+m.err.Error())
	case m.message != "":
		return "\n" + messageStyle.Render(m.message)
	}
	return ""
}
