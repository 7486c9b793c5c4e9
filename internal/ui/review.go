// Package ui implements the interactive review screen for the planned
// dispositions of a run.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tclaudel/downkeep/internal/dispose"
	"github.com/tclaudel/downkeep/internal/reconcile"
	"github.com/tclaudel/downkeep/pkg/utils"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7C3AED")).
			Bold(true)

	archiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	trashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	skippedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Strikethrough(true)

	sizeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF")).
			Italic(true)
)

// Candidate is one stale entry with its planned action and the user's
// decision to keep or skip it.
type Candidate struct {
	Entry  reconcile.Entry
	Action dispose.Action
	Skip   bool
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Confirm, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Toggle, k.Confirm, k.Quit}}
}

var defaultKeys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "skip/unskip"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "cancel"),
	),
}

// Model is the review screen state.
type Model struct {
	candidates []Candidate
	cursor     int
	confirmed  bool
	keys       keyMap
	help       help.Model
	width      int
	height     int
}

// NewModel creates a review model over the planned dispositions.
func NewModel(candidates []Candidate) Model {
	return Model{
		candidates: candidates,
		keys:       defaultKeys,
		help:       help.New(),
	}
}

// Confirmed reports whether the user applied the plan (rather than cancelled).
func (m Model) Confirmed() bool { return m.confirmed }

// Approved returns the candidates that were not skipped.
func (m Model) Approved() []Candidate {
	var approved []Candidate
	for _, c := range m.candidates {
		if !c.Skip {
			approved = append(approved, c)
		}
	}
	return approved
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.candidates)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			if len(m.candidates) > 0 {
				m.candidates[m.cursor].Skip = !m.candidates[m.cursor].Skip
			}
		case key.Matches(msg, m.keys.Confirm):
			m.confirmed = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the review screen
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Review planned dispositions"))
	b.WriteString("\n")

	if len(m.candidates) == 0 {
		b.WriteString("Nothing is stale. Press q to exit.\n")
		return b.String()
	}

	kept := 0
	for i, c := range m.candidates {
		cursor := "  "
		if i == m.cursor {
			cursor = selectedStyle.Render("> ")
		}

		unusedDays := int(time.Since(c.Entry.Record.LastUsedAt).Hours() / 24)
		line := fmt.Sprintf("%-50s %-8s uses:%d unused:%s %s",
			truncate(c.Entry.Record.Path, 50),
			c.Action,
			c.Entry.Record.UseCount,
			utils.FormatAge(unusedDays),
			sizeStyle.Render(utils.FormatBytes(c.Entry.Size)))

		switch {
		case c.Skip:
			line = skippedStyle.Render(line)
		case c.Action == dispose.ActionArchive:
			line = archiveStyle.Render(line)
		default:
			line = trashStyle.Render(line)
		}
		if !c.Skip {
			kept++
		}

		b.WriteString(cursor + line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("%d of %d will be applied", kept, len(m.candidates))))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func truncate(path string, max int) string {
	if len(path) <= max {
		return path
	}
	return "..." + path[len(path)-max+3:]
}

// Review runs the interactive screen and returns the approved candidates.
// The second return is false when the user cancelled.
func Review(candidates []Candidate) ([]Candidate, bool, error) {
	program := tea.NewProgram(NewModel(candidates))
	final, err := program.Run()
	if err != nil {
		return nil, false, fmt.Errorf("review screen failed: %w", err)
	}

	model := final.(Model)
	if !model.Confirmed() {
		return nil, false, nil
	}
	return model.Approved(), true, nil
}
