package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// errPickCancelled is returned when the picker is closed without confirming.
var errPickCancelled = errors.New("group selection cancelled")

// =============================================================================
// GroupPickerModel - Interactive group selection
// =============================================================================

// GroupPickerModel is the bubbletea model for selecting groups to mirror.
type GroupPickerModel struct {
	Groups    []string
	Marked    []bool
	Cursor    int
	Height    int
	Offset    int
	Confirmed bool
}

// NewGroupPickerModel creates a picker over groups. Groups for which
// preselect returns true start marked.
func NewGroupPickerModel(groups []string, preselect func(string) bool) GroupPickerModel {
	marked := make([]bool, len(groups))
	if preselect != nil {
		for i, g := range groups {
			marked[i] = preselect(g)
		}
	}
	return GroupPickerModel{
		Groups: groups,
		Marked: marked,
		Height: 15,
	}
}

// Selected returns the marked groups in their original order.
func (m GroupPickerModel) Selected() []string {
	var out []string
	for i, g := range m.Groups {
		if m.Marked[i] {
			out = append(out, g)
		}
	}
	return out
}

func (m GroupPickerModel) count() int {
	n := 0
	for _, marked := range m.Marked {
		if marked {
			n++
		}
	}
	return n
}

func (m GroupPickerModel) Init() tea.Cmd {
	return nil
}

func (m GroupPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Groups)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Groups) > 0 {
				m.Marked = append([]bool(nil), m.Marked...)
				m.Marked[m.Cursor] = !m.Marked[m.Cursor]
			}
		case "a":
			all := m.count() < len(m.Groups)
			m.Marked = make([]bool, len(m.Groups))
			for i := range m.Marked {
				m.Marked[i] = all
			}
		case "enter":
			if m.count() == 0 {
				return m, nil
			}
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m GroupPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Groups"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ mirror  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Groups))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "○"
		if m.Marked[i] {
			mark = "●"
		}
		rows = append(rows, []string{cursor, mark, m.Groups[i]})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Group").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Groups) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if m.Marked[idx] {
				base = base.Foreground(colorGreen)
			} else {
				base = base.Foreground(colorDim)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %d selected", m.Cursor+1, len(m.Groups), m.count())))

	return b.String()
}

// pickGroups runs the picker and returns the confirmed selection.
func pickGroups(ctx context.Context, groups []string, preselect func(string) bool) ([]string, error) {
	if len(groups) == 0 {
		return nil, errors.New("repository lists no groups")
	}
	final, err := tea.NewProgram(NewGroupPickerModel(groups, preselect), tea.WithContext(ctx)).Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("group picker: %w", err)
	}
	m, ok := final.(GroupPickerModel)
	if !ok || !m.Confirmed {
		return nil, errPickCancelled
	}
	return m.Selected(), nil
}
