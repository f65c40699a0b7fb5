package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/newsmonitor/internal/news/filter"
	"github.com/zappabad/newsmonitor/tui/styles"
)

// EventsPanel lists the event filters with their item counts.
type EventsPanel struct {
	selections    []filter.Selection
	counts        map[filter.Selection]int
	selectedIndex int
	focused       bool
	width         int
	height        int
}

// NewEventsPanel creates a new events panel with All selected.
func NewEventsPanel() *EventsPanel {
	return &EventsPanel{
		selections: filter.Selections(),
		counts:     make(map[filter.Selection]int),
	}
}

// Init initializes the panel.
func (p *EventsPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *EventsPanel) Update(msg tea.Msg) (*EventsPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.selectedIndex > 0 {
				p.selectedIndex--
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if p.selectedIndex < len(p.selections)-1 {
				p.selectedIndex++
			}
		}
	}
	return p, nil
}

// View renders the panel.
func (p *EventsPanel) View() string {
	var content strings.Builder

	labelWidth := p.width - 12
	if labelWidth < 8 {
		labelWidth = 8
	}

	for i, sel := range p.selections {
		marker := "  "
		if i == p.selectedIndex {
			marker = "▸ "
		}
		row := fmt.Sprintf("%s%-*s %4d", marker, labelWidth, sel.String(), p.counts[sel])

		style := styles.RowStyle
		if i == p.selectedIndex {
			style = styles.SelectedRowStyle
		}
		content.WriteString(style.Render(row))
		if i < len(p.selections)-1 {
			content.WriteString("\n")
		}
	}

	// Apply panel styling
	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("🏷  Events", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *EventsPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *EventsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetCounts sets the per-selection counts.
func (p *EventsPanel) SetCounts(counts map[filter.Selection]int) {
	p.counts = counts
}

// Selected returns the highlighted selection.
func (p *EventsPanel) Selected() filter.Selection {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.selections) {
		return p.selections[p.selectedIndex]
	}
	return filter.All
}
