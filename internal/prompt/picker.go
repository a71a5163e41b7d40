// Package prompt implements the interactive component picker shown by
// `zoo add` when no names are given.
package prompt

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user quits without confirming.
var ErrCancelled = errors.New("selection cancelled")

// Item is one selectable entry.
type Item struct {
	Name        string
	Group       string
	Description string
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	groupStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).MarginTop(1)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	descStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

// Model is the bubbletea model of the multi-select picker.
type Model struct {
	title    string
	items    []Item
	cursor   int
	selected map[int]bool
	keys     KeyMap
	help     help.Model

	done      bool
	cancelled bool
}

// New creates a picker over items. Items are shown in the given order with
// a header whenever Group changes.
func New(title string, items []Item) Model {
	return Model{
		title:    title,
		items:    items,
		selected: make(map[int]bool),
		keys:     DefaultKeyMap(),
		help:     help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancelled = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Confirm):
			m.done = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}

		case key.Matches(msg, m.keys.Toggle):
			if len(m.items) > 0 {
				m.selected[m.cursor] = !m.selected[m.cursor]
			}

		case key.Matches(msg, m.keys.All):
			all := len(m.Selected()) < len(m.items)
			for i := range m.items {
				m.selected[i] = all
			}
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	group := ""
	for i, it := range m.items {
		if it.Group != group {
			group = it.Group
			b.WriteString(groupStyle.Render(group))
			b.WriteString("\n")
		}

		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		box := "[ ]"
		name := it.Name
		if m.selected[i] {
			box = selectedStyle.Render("[x]")
			name = selectedStyle.Render(name)
		}
		b.WriteString(cursor + box + " " + name)
		if it.Description != "" {
			b.WriteString("  " + descStyle.Render(it.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the names of the selected items in display order.
func (m Model) Selected() []string {
	var names []string
	for i, it := range m.items {
		if m.selected[i] {
			names = append(names, it.Name)
		}
	}
	return names
}

// Cancelled reports whether the user quit without confirming.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Run shows the picker on the given terminal streams and returns the
// confirmed selection.
func Run(title string, items []Item, in io.Reader, out io.Writer) ([]string, error) {
	p := tea.NewProgram(New(title, items), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	m := final.(Model)
	if m.Cancelled() {
		return nil, ErrCancelled
	}
	return m.Selected(), nil
}
