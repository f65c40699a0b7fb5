package tui

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/newsmonitor/internal/logger"
	"github.com/zappabad/newsmonitor/internal/monitor"
	"github.com/zappabad/newsmonitor/internal/news"
	"github.com/zappabad/newsmonitor/tui/panels"
	"github.com/zappabad/newsmonitor/tui/styles"
)

// PanelFocus represents which panel is currently focused.
type PanelFocus int

const (
	FocusCompanies PanelFocus = 0
	FocusEvents    PanelFocus = 1
	FocusNews      PanelFocus = 2

	panelCount = 3
)

// companiesHeight is the height of the watchlist bar.
const companiesHeight = 6

// Model is the main TUI application model.
type Model struct {
	controller *monitor.Controller

	// Panels
	companiesPanel *panels.CompaniesPanel
	eventsPanel    *panels.EventsPanel
	newsPanel      *panels.NewsPanel

	// Focus management
	focusedPanel PanelFocus

	// In-flight load
	ctx        context.Context
	cancelLoad context.CancelFunc

	// Clipboard writer, swapped in tests
	copyText func(string) error

	// Window dimensions
	width  int
	height int

	// Status
	statusMsg string
	ready     bool
}

// NewModel creates a new TUI model around controller. Loads are bound to ctx.
func NewModel(ctx context.Context, controller *monitor.Controller) *Model {
	m := &Model{
		controller:     controller,
		companiesPanel: panels.NewCompaniesPanel(controller.State().Companies),
		eventsPanel:    panels.NewEventsPanel(),
		newsPanel:      panels.NewNewsPanel(),
		focusedPanel:   FocusCompanies,
		ctx:            ctx,
		copyText:       clipboard.WriteAll,
	}
	m.syncFocus()
	return m
}

// Init initializes the model and starts the first load.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.companiesPanel.Init(),
		m.eventsPanel.Init(),
		m.newsPanel.Init(),
		m.startLoad(),
	)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updatePanelSizes()
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.newsPanel, cmd = m.newsPanel.Update(msg)
		return m, cmd

	case loadResultMsg:
		if !m.controller.Complete(msg.result) {
			return m, nil
		}
		return m, m.syncPanels()

	case panels.CompaniesSubmitMsg:
		m.statusMsg = ""
		return m, m.startLoad()

	case panels.CopyLinkMsg:
		return m, m.copyLink(msg.URL)

	case statusMsg:
		m.statusMsg = string(msg)
		return m, nil
	}

	// Update focused panel
	m.updateFocusedPanel(msg, &cmds)

	return m, tea.Batch(cmds...)
}

// handleKey processes global bindings. Letters only count as bindings
// while the watchlist input is not being edited.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	editing := m.companiesPanel.Editing()

	switch msg.String() {
	case "ctrl+c":
		return m.quit(), true
	case "q":
		if !editing {
			return m.quit(), true
		}

	// Cycle focus with tab
	case "tab":
		m.setFocus((m.focusedPanel + 1) % panelCount)
		return nil, true

	// Reverse cycle focus with shift+tab
	case "shift+tab":
		m.setFocus((m.focusedPanel + panelCount - 1) % panelCount)
		return nil, true

	case "ctrl+r":
		return m.startLoad(), true
	case "r":
		if !editing {
			return m.startLoad(), true
		}
	}
	return nil, false
}

func (m *Model) updateFocusedPanel(msg tea.Msg, cmds *[]tea.Cmd) {
	var cmd tea.Cmd

	switch m.focusedPanel {
	case FocusCompanies:
		m.companiesPanel, cmd = m.companiesPanel.Update(msg)
	case FocusEvents:
		m.eventsPanel, cmd = m.eventsPanel.Update(msg)
		// Check if selection changed
		selected := m.eventsPanel.Selected()
		if selected != m.controller.State().EventFilter {
			m.controller.SetFilter(selected)
			if c := m.syncPanels(); c != nil {
				*cmds = append(*cmds, c)
			}
		}
	case FocusNews:
		m.newsPanel, cmd = m.newsPanel.Update(msg)
	}

	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	// Layout:
	// ┌──────────────────────────────────────┐
	// │          Watchlist   [Refresh]       │
	// ├──────────┬───────────────────────────┤
	// │  Events  │          News             │
	// │          │                           │
	// └──────────┴───────────────────────────┘

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.eventsPanel.View(),
		m.newsPanel.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.companiesPanel.View(),
		body,
		m.renderStatusBar(),
	)
}

func (m *Model) renderStatusBar() string {
	// Help text
	help := []string{
		styles.StatusBarKeyStyle.Render("Tab") + styles.StatusBarDescStyle.Render(" panels"),
		styles.StatusBarKeyStyle.Render("Enter/r") + styles.StatusBarDescStyle.Render(" refresh"),
		styles.StatusBarKeyStyle.Render("↑↓") + styles.StatusBarDescStyle.Render(" select"),
		styles.StatusBarKeyStyle.Render("y") + styles.StatusBarDescStyle.Render(" copy link"),
		styles.StatusBarKeyStyle.Render("q") + styles.StatusBarDescStyle.Render(" quit"),
	}

	helpStr := lipgloss.JoinHorizontal(lipgloss.Center,
		help[0], " │ ", help[1], " │ ", help[2], " │ ", help[3], " │ ", help[4])

	return styles.StatusBarStyle.Width(m.width).Render(helpStr + " │ " + m.statusLine())
}

// statusLine summarises the controller state.
func (m *Model) statusLine() string {
	st := m.controller.State()

	status := st.Phase.String()
	switch st.Phase {
	case monitor.PhaseLoaded:
		status = fmt.Sprintf("%d of %d items · updated %s",
			len(m.controller.Visible()), len(st.Items), st.LastLoadedAt.Format("15:04:05"))
	case monitor.PhaseFailed:
		status = "last load failed"
	}

	if m.statusMsg != "" {
		status += " │ " + m.statusMsg
	}
	return status
}

// startLoad begins a new load for the watchlist currently in the input,
// cancelling any load still in flight.
func (m *Model) startLoad() tea.Cmd {
	if m.cancelLoad != nil {
		m.cancelLoad()
	}
	m.controller.SetCompanies(m.companiesPanel.Companies())
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelLoad = cancel

	req := m.controller.BeginLoad()
	controller := m.controller
	load := func() tea.Msg {
		return loadResultMsg{result: controller.Load(ctx, req)}
	}
	return tea.Batch(m.syncPanels(), load)
}

// syncPanels copies the controller state into the panels.
func (m *Model) syncPanels() tea.Cmd {
	st := m.controller.State()
	m.eventsPanel.SetCounts(m.controller.Counts())
	m.newsPanel.SetNews(m.controller.Visible())
	m.newsPanel.SetError(st.ErrorMessage)
	return m.newsPanel.SetLoading(st.Loading)
}

func (m *Model) copyLink(url string) tea.Cmd {
	if !news.IsWebURL(url) {
		return func() tea.Msg { return statusMsg("No link to copy") }
	}
	copyText := m.copyText
	return func() tea.Msg {
		if err := copyText(url); err != nil {
			logger.Log.WithError(err).Warn("Clipboard write failed")
			return statusMsg("❌ Copy failed: " + err.Error())
		}
		return statusMsg("✓ Link copied")
	}
}

func (m *Model) quit() tea.Cmd {
	if m.cancelLoad != nil {
		m.cancelLoad()
	}
	return tea.Quit
}

func (m *Model) setFocus(panel PanelFocus) {
	m.focusedPanel = panel
	m.syncFocus()
}

func (m *Model) syncFocus() {
	m.companiesPanel.SetFocus(m.focusedPanel == FocusCompanies)
	m.eventsPanel.SetFocus(m.focusedPanel == FocusEvents)
	m.newsPanel.SetFocus(m.focusedPanel == FocusNews)
}

func (m *Model) updatePanelSizes() {
	eventsWidth := m.width / 4
	if eventsWidth < 24 {
		eventsWidth = 24
	}
	bodyHeight := m.height - companiesHeight - 1 // status bar

	m.companiesPanel.SetSize(m.width, companiesHeight)
	m.eventsPanel.SetSize(eventsWidth, bodyHeight)
	m.newsPanel.SetSize(m.width-eventsWidth, bodyHeight)
}

// loadResultMsg carries a finished load back to the UI loop.
type loadResultMsg struct {
	result monitor.Result
}

// statusMsg replaces the transient status text.
type statusMsg string
