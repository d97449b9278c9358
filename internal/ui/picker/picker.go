// Package picker provides the candidate list shown above the composer while
// a mention, file-reference, or command query is being typed. It renders and
// navigates; deciding what the selection means is the caller's job.
package picker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"roster/internal/ui/styles"
)

// Item is one selectable candidate.
type Item struct {
	Label  string // Display text
	Value  string // Identifier handed back to the caller on selection
	Detail string // Optional dim annotation after the label
}

// ChosenMsg is emitted when an item is picked with the mouse.
type ChosenMsg struct {
	Item Item
}

// zoneItemPrefix is the prefix for per-row click zones.
const zoneItemPrefix = "picker-item:"

func itemZoneID(index int) string {
	return fmt.Sprintf("%s%d", zoneItemPrefix, index)
}

// Model holds the picker list state.
type Model struct {
	title    string
	items    []Item
	selected int
	boxWidth int
	maxRows  int
}

// New creates an empty picker with the given title.
func New(title string) Model {
	return Model{title: title, maxRows: 8}
}

// SetItems replaces the candidate list and resets the selection.
func (m Model) SetItems(items []Item) Model {
	m.items = items
	m.selected = 0
	return m
}

// SetBoxWidth sets the width of the picker box.
func (m Model) SetBoxWidth(width int) Model {
	m.boxWidth = width
	return m
}

// SetMaxRows bounds how many candidates are visible at once.
func (m Model) SetMaxRows(n int) Model {
	if n > 0 {
		m.maxRows = n
	}
	return m
}

// Len returns the number of candidates.
func (m Model) Len() int { return len(m.items) }

// Selected returns the currently selected item.
func (m Model) Selected() (Item, bool) {
	if m.selected >= 0 && m.selected < len(m.items) {
		return m.items[m.selected], true
	}
	return Item{}, false
}

// MoveUp moves the selection toward the first item.
func (m Model) MoveUp() Model {
	if m.selected > 0 {
		m.selected--
	}
	return m
}

// MoveDown moves the selection toward the last item.
func (m Model) MoveDown() Model {
	if m.selected < len(m.items)-1 {
		m.selected++
	}
	return m
}

// Update handles navigation keys and row clicks.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "down", "ctrl+n":
			m = m.MoveDown()
		case "up", "ctrl+p":
			m = m.MoveUp()
		}
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		for i := range m.items {
			if z := zone.Get(itemZoneID(i)); z != nil && z.InBounds(msg) {
				m.selected = i
				item := m.items[i]
				return m, func() tea.Msg { return ChosenMsg{Item: item} }
			}
		}
	}
	return m, nil
}

// View renders the picker box. Empty candidate lists render nothing.
func (m Model) View() string {
	if len(m.items) == 0 {
		return ""
	}

	width := m.boxWidth
	if width == 0 {
		width = 40
	}

	// Window the items so the selection stays visible.
	first := 0
	if m.selected >= m.maxRows {
		first = m.selected - m.maxRows + 1
	}
	last := first + m.maxRows
	if last > len(m.items) {
		last = len(m.items)
	}

	detailStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)

	var rows strings.Builder
	for i := first; i < last; i++ {
		item := m.items[i]
		label := item.Label
		if item.Detail != "" {
			label += " " + detailStyle.Render(item.Detail)
		}
		var line string
		if i == m.selected {
			line = styles.SelectionIndicatorStyle.Render(">") +
				lipgloss.NewStyle().Bold(true).Render(" "+item.Label)
			if item.Detail != "" {
				line += " " + detailStyle.Render(item.Detail)
			}
		} else {
			line = "  " + label
		}
		line = ansi.Truncate(line, width, "…")
		rows.WriteString(zone.Mark(itemZoneID(i), line))
		if i < last-1 {
			rows.WriteString("\n")
		}
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1)
	dividerStyle := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor)
	divider := dividerStyle.Render(strings.Repeat("─", width))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(width)

	content := titleStyle.Render(m.title) + "\n" +
		divider + "\n" +
		rows.String()

	return boxStyle.Render(content)
}
