package panels

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/zappabad/newsmonitor/internal/news"
	"github.com/zappabad/newsmonitor/tui/styles"
)

// cardHeight is the rendered height of one card including its spacer line.
const cardHeight = 6

// NoLinkLabel replaces links that are missing or malformed.
const NoLinkLabel = "link unavailable"

// NewsPanel displays news items as cards.
type NewsPanel struct {
	news          []news.Item
	selectedIndex int
	scrollOffset  int
	loading       bool
	errMsg        string
	spinner       spinner.Model
	now           func() time.Time
	focused       bool
	width         int
	height        int
}

// NewNewsPanel creates a new news panel.
func NewNewsPanel() *NewsPanel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	return &NewsPanel{
		spinner: s,
		now:     time.Now,
	}
}

// Init initializes the panel.
func (p *NewsPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *NewsPanel) Update(msg tea.Msg) (*NewsPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		// Stop ticking once the load is over
		if !p.loading {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.selectedIndex > 0 {
				p.selectedIndex--
				// Adjust scroll to keep selection in view
				if p.selectedIndex < p.scrollOffset {
					p.scrollOffset = p.selectedIndex
				}
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if p.selectedIndex < len(p.news)-1 {
				p.selectedIndex++
				// Adjust scroll to keep selection in view
				visible := p.visibleCards()
				if p.selectedIndex >= p.scrollOffset+visible {
					p.scrollOffset = p.selectedIndex - visible + 1
				}
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("y"))):
			if item := p.SelectedNews(); item != nil {
				url := item.SourceURL
				return p, func() tea.Msg { return CopyLinkMsg{URL: url} }
			}
		}
	}
	return p, nil
}

// View renders the panel.
func (p *NewsPanel) View() string {
	var sections []string

	if p.loading {
		sections = append(sections, p.spinner.View()+styles.MutedStyle.Render(" Loading…"))
	}
	if p.errMsg != "" {
		sections = append(sections, styles.ErrorStyle.Render(p.errMsg))
	}

	if len(p.news) == 0 {
		if !p.loading {
			sections = append(sections, styles.MutedStyle.Render("No news found for the current filters."))
		}
	} else {
		sections = append(sections, p.renderCards())
	}

	// Apply panel styling
	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle(fmt.Sprintf("📰 News (%d)", len(p.news)), p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, sections...)...)

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *NewsPanel) renderCards() string {
	var content strings.Builder

	visible := p.visibleCards()
	start := p.scrollOffset
	end := start + visible
	if end > len(p.news) {
		end = len(p.news)
	}

	now := p.now()
	for i := start; i < end; i++ {
		selected := i == p.selectedIndex && p.focused
		content.WriteString(renderCard(p.news[i], p.contentWidth(), selected, now))
		if i < end-1 {
			content.WriteString("\n\n")
		}
	}

	// Scroll indicator
	if len(p.news) > visible {
		content.WriteString("\n")
		content.WriteString(styles.MutedStyle.Render(fmt.Sprintf(" (%d/%d)", p.selectedIndex+1, len(p.news))))
	}

	return content.String()
}

// renderCard draws one item: header, title, two description lines and a
// footer with age, event and link. Text fields are cleaned again here since
// items need not come from the client.
func renderCard(item news.Item, width int, selected bool, now time.Time) string {
	inner := width - 2 // card border and padding
	if inner < 10 {
		inner = 10
	}

	badge := styles.BadgeStyle(item.SourceType).Render(item.SourceType.String())
	company := news.CleanText(item.Company)
	if company == "" {
		company = "—"
	}
	companyWidth := inner - lipgloss.Width(badge) - 1
	if companyWidth < 1 {
		companyWidth = 1
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.CompanyStyle.Width(companyWidth).Render(ansi.Truncate(company, companyWidth, "…")),
		" ",
		badge,
	)

	title := styles.CardTitleStyle.Render(ansi.Truncate(news.CleanText(item.Title), inner, "…"))

	desc := descriptionLines(news.CleanText(item.Description), inner)
	description := styles.DescriptionStyle.Render(strings.Join(desc, "\n"))

	var footer []string
	if label := news.CleanText(item.PublishedLabel(now)); label != "" {
		footer = append(footer, styles.TimeStyle.Render("🕒 "+label))
	}
	footer = append(footer, styles.EventStyle.Render(item.EventType.String()))
	if news.IsWebURL(item.SourceURL) {
		footer = append(footer, styles.LinkStyle.Render(ansi.Truncate(item.SourceURL, inner/2, "…")))
	} else {
		footer = append(footer, styles.MutedStyle.Render(NoLinkLabel))
	}

	card := lipgloss.JoinVertical(lipgloss.Left,
		header,
		title,
		description,
		strings.Join(footer, styles.MutedStyle.Render(" · ")),
	)

	style := styles.CardStyle
	if selected {
		style = styles.SelectedCardStyle
	}
	return style.Render(card)
}

// descriptionLines wraps text to width and clamps it to exactly two lines.
func descriptionLines(text string, width int) []string {
	lines := []string{"", ""}
	if text == "" {
		return lines
	}

	wrapped := strings.Split(ansi.Wrap(text, width, ""), "\n")
	copy(lines, wrapped)
	if len(wrapped) > 2 {
		lines[1] = ansi.Truncate(lines[1], width-1, "") + "…"
	}
	return lines
}

func (p *NewsPanel) contentWidth() int {
	return p.width - 4
}

func (p *NewsPanel) visibleCards() int {
	reserved := 4 // border, title and status line
	if p.loading || p.errMsg != "" {
		reserved++
	}
	n := (p.height - reserved) / cardHeight
	if n < 1 {
		n = 1
	}
	return n
}

// SetFocus sets the focus state of the panel.
func (p *NewsPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *NewsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetNews sets the news items.
func (p *NewsPanel) SetNews(items []news.Item) {
	p.news = items
	// Reset selection if out of bounds
	if p.selectedIndex >= len(p.news) {
		p.selectedIndex = len(p.news) - 1
		if p.selectedIndex < 0 {
			p.selectedIndex = 0
		}
	}
	if p.scrollOffset > p.selectedIndex {
		p.scrollOffset = p.selectedIndex
	}
}

// SetLoading toggles the loading indicator. Turning it on returns the
// command that starts the spinner.
func (p *NewsPanel) SetLoading(loading bool) tea.Cmd {
	started := loading && !p.loading
	p.loading = loading
	if started {
		return p.spinner.Tick
	}
	return nil
}

// Loading reports whether the loading indicator is shown.
func (p *NewsPanel) Loading() bool {
	return p.loading
}

// SetError sets the error message; empty hides it.
func (p *NewsPanel) SetError(msg string) {
	p.errMsg = msg
}

// SelectedNews returns the currently selected news item.
func (p *NewsPanel) SelectedNews() *news.Item {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.news) {
		return &p.news[p.selectedIndex]
	}
	return nil
}

// CopyLinkMsg asks for the selected item's link to be copied.
type CopyLinkMsg struct {
	URL string
}
