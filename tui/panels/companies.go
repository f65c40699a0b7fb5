package panels

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/newsmonitor/internal/monitor"
	"github.com/zappabad/newsmonitor/tui/styles"
)

// CompaniesField represents the currently focused field of the bar.
type CompaniesField int

const (
	FieldCompanies CompaniesField = iota
	FieldRefresh
)

// CompaniesPanel edits the comma separated watchlist.
type CompaniesPanel struct {
	input        textinput.Model
	currentField CompaniesField

	focused bool
	width   int
	height  int
}

// NewCompaniesPanel creates the bar pre-filled with companies.
func NewCompaniesPanel(companies []string) *CompaniesPanel {
	input := textinput.New()
	input.Placeholder = "Nubank, Totvs, Stone"
	input.Prompt = ""
	input.CharLimit = 512
	input.SetValue(strings.Join(companies, ", "))

	return &CompaniesPanel{
		input:        input,
		currentField: FieldCompanies,
	}
}

// Init initializes the panel.
func (p *CompaniesPanel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the panel.
func (p *CompaniesPanel) Update(msg tea.Msg) (*CompaniesPanel, tea.Cmd) {
	if !p.focused {
		return p, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "up"))):
			p.toggleField()
			return p, nil

		// Enter submits from either field
		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			return p, p.submit()
		}
	}

	if p.currentField != FieldCompanies {
		return p, nil
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// View renders the panel.
func (p *CompaniesPanel) View() string {
	inputStyle := styles.InputStyle
	if p.currentField == FieldCompanies && p.focused {
		inputStyle = styles.FocusedInputStyle
	}

	buttonStyle := styles.InputStyle
	if p.currentField == FieldRefresh && p.focused {
		buttonStyle = styles.FocusedInputStyle.Bold(true).Foreground(styles.PrimaryColor)
	}
	button := buttonStyle.Render(" Refresh ")

	// leave room for label, button and borders
	inputWidth := p.width - lipgloss.Width(button) - 16
	if inputWidth < 10 {
		inputWidth = 10
	}
	p.input.Width = inputWidth

	label := styles.LabelStyle.Render("Companies ")
	if p.focused {
		label = styles.LabelStyle.Foreground(styles.PrimaryColor).Render("Companies ")
	}

	row := lipgloss.JoinHorizontal(lipgloss.Center,
		label,
		inputStyle.Render(p.input.View()),
		" ",
		button,
	)

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("🏢 Watchlist (comma separated)", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, row)

	return panelStyle.Width(p.width - 2).Render(panel)
}

// Value returns the raw input text.
func (p *CompaniesPanel) Value() string {
	return p.input.Value()
}

// Companies returns the parsed watchlist.
func (p *CompaniesPanel) Companies() []string {
	return monitor.ParseCompanies(p.input.Value())
}

// Editing reports whether key presses are going into the text input.
func (p *CompaniesPanel) Editing() bool {
	return p.focused && p.currentField == FieldCompanies
}

// SetFocus sets the focus state of the panel.
func (p *CompaniesPanel) SetFocus(focused bool) {
	p.focused = focused
	if focused && p.currentField == FieldCompanies {
		p.input.Focus()
	} else {
		p.input.Blur()
	}
}

// SetSize sets the panel dimensions.
func (p *CompaniesPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

func (p *CompaniesPanel) toggleField() {
	if p.currentField == FieldCompanies {
		p.currentField = FieldRefresh
		p.input.Blur()
		return
	}
	p.currentField = FieldCompanies
	p.input.Focus()
}

func (p *CompaniesPanel) submit() tea.Cmd {
	companies := p.Companies()
	return func() tea.Msg {
		return CompaniesSubmitMsg{Companies: companies}
	}
}

// CompaniesSubmitMsg is sent when the watchlist is submitted.
type CompaniesSubmitMsg struct {
	Companies []string
}
