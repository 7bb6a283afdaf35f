package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hostbridge/script-value/bridge"
	"github.com/hostbridge/script-value/variant"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).MarginBottom(1)
	litStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	typeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF7F"))
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).MarginTop(1)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).MarginTop(1)
)

// entry is one inspected literal. The insertion number keeps duplicates
// distinguishable after the ordering view sorts them.
type entry struct {
	n       int
	literal string
	value   variant.Value
}

type inspectModel struct {
	input    textinput.Model
	history  []entry
	selected int
	err      error
}

func newInspectModel() *inspectModel {
	ti := textinput.New()
	ti.Placeholder = `42, "text", [1, 2], {"k": 1}, true, null`
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Width = 56
	ti.Focus()

	return &inspectModel{input: ti, selected: -1}
}

func (m *inspectModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			v, err := bridge.FromJSON([]byte(text))
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.history = append(m.history, entry{n: len(m.history), literal: text, value: v})
			m.selected = len(m.history) - 1
			m.input.SetValue("")
			return m, nil

		case "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.selected < len(m.history)-1 {
				m.selected++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *inspectModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Script Value Inspector"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	if len(m.history) == 0 {
		b.WriteString(helpStyle.Render("Type a JSON literal and press enter • esc quits"))
		return b.String()
	}

	cur := m.history[m.selected]
	b.WriteString("\n")
	b.WriteString(litStyle.Render(cur.literal))
	b.WriteString(" stores ")
	b.WriteString(typeStyle.Render(describe(cur.value)))
	b.WriteString("\n\n")

	for _, r := range matrixRows(cur.value) {
		b.WriteString("  ")
		b.WriteString(typeStyle.Render(fmt.Sprintf("%-12s", r.dest)))
		b.WriteString(" ")
		if r.failed {
			b.WriteString(failStyle.Render(r.result))
		} else {
			b.WriteString(okStyle.Render(r.result))
		}
		b.WriteString("\n")
	}

	if len(m.history) > 1 {
		b.WriteString("\nOrdering (ascending):\n")
		sorted := make([]entry, len(m.history))
		copy(sorted, m.history)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].value.Less(sorted[j].value)
		})
		for i, e := range sorted {
			line := fmt.Sprintf("%2d. %s (%s)", i+1, e.literal, describe(e.value))
			b.WriteString("  ")
			if e.n == cur.n {
				b.WriteString(selectedStyle.Render(line))
			} else {
				b.WriteString(line)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render("enter inspect • ↑/↓ previous values • esc quit"))
	return b.String()
}

func runInteractive() error {
	p := tea.NewProgram(newInspectModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
