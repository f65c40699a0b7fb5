package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zappabad/newsmonitor/internal/monitor"
	"github.com/zappabad/newsmonitor/internal/news"
	"github.com/zappabad/newsmonitor/internal/news/client"
	"github.com/zappabad/newsmonitor/internal/news/filter"
)

type fakeFetcher struct {
	mu    sync.Mutex
	items []news.Item
	err   error
	calls [][]string
}

func (f *fakeFetcher) Fetch(_ context.Context, companies []string) ([]news.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, companies)
	return f.items, f.err
}

func (f *fakeFetcher) set(items []news.Item, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items, f.err = items, err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func sampleItems() []news.Item {
	return []news.Item{
		{Company: "Nubank", Title: "Nubank buys fintech", EventType: news.EventAcquisition, SourceType: news.SourceGoogle, SourceURL: "https://example.com/a"},
		{Company: "Nubank", Title: "Nubank gets ISO badge", EventType: news.EventCertification, SourceType: news.SourceLinkedIn},
		{Company: "Nubank", Title: "Nubank acquires startup", EventType: news.EventAcquisition, SourceType: news.SourceGoogle, SourceURL: "https://example.com/c"},
	}
}

func newTestModel(t *testing.T, f *fakeFetcher) *Model {
	t.Helper()
	m := NewModel(context.Background(), monitor.NewController(f, []string{"Nubank"}))
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 48})
	return m
}

// drain runs cmd and feeds every resulting message back into the model
// until no commands remain. Spinner ticks are not followed.
func drain(m *Model, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func press(m *Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func typeRunes(m *Model, s string) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return cmd
}

func TestModel_InitialLoadShowsItems(t *testing.T) {
	f := &fakeFetcher{items: sampleItems()}
	m := newTestModel(t, f)

	drain(m, m.startLoad())

	st := m.controller.State()
	assert.Equal(t, monitor.PhaseLoaded, st.Phase)
	assert.Equal(t, [][]string{{"Nubank"}}, f.calls)
	assert.False(t, m.newsPanel.Loading())

	view := m.View()
	assert.Contains(t, view, "Nubank buys fintech")
	assert.Contains(t, view, "3 of 3 items")
}

func TestModel_LoadingStateShowsSpinnerText(t *testing.T) {
	m := newTestModel(t, &fakeFetcher{})

	cmd := m.startLoad()
	require.NotNil(t, cmd)
	assert.True(t, m.newsPanel.Loading())
	assert.Contains(t, m.View(), "Loading…")
}

func TestModel_SubmitCompaniesRefetches(t *testing.T) {
	f := &fakeFetcher{items: sampleItems()}
	m := newTestModel(t, f)
	require.True(t, m.companiesPanel.Editing())

	typeRunes(m, ", Stone,  ")
	drain(m, press(m, tea.KeyEnter))

	require.Equal(t, 1, f.callCount())
	assert.Equal(t, []string{"Nubank", "Stone"}, f.calls[0])
	assert.Equal(t, []string{"Nubank", "Stone"}, m.controller.State().Companies)
}

func TestModel_RefreshUsesEditedWatchlist(t *testing.T) {
	f := &fakeFetcher{items: sampleItems()}
	m := newTestModel(t, f)

	typeRunes(m, ", Stone")
	press(m, tea.KeyTab)
	require.False(t, m.companiesPanel.Editing())
	drain(m, typeRunes(m, "r"))

	require.Equal(t, 1, f.callCount())
	assert.Equal(t, []string{"Nubank", "Stone"}, f.calls[0])
	assert.Equal(t, []string{"Nubank", "Stone"}, m.controller.State().Companies)
}

func TestModel_FailureShowsMessageAndClearsItems(t *testing.T) {
	f := &fakeFetcher{items: sampleItems()}
	m := newTestModel(t, f)
	drain(m, m.startLoad())

	f.set(nil, &client.HTTPStatusError{Code: 500})
	drain(m, m.startLoad())

	st := m.controller.State()
	assert.Equal(t, monitor.PhaseFailed, st.Phase)
	assert.Empty(t, st.Items)
	assert.Nil(t, m.newsPanel.SelectedNews())
	assert.Contains(t, m.View(), "HTTP 500")
}

func TestModel_EmptyResultShowsPlaceholder(t *testing.T) {
	m := newTestModel(t, &fakeFetcher{items: []news.Item{}})
	drain(m, m.startLoad())

	assert.Contains(t, m.View(), "No news found for the current filters.")
}

func TestModel_FilterDoesNotFetch(t *testing.T) {
	f := &fakeFetcher{items: sampleItems()}
	m := newTestModel(t, f)
	drain(m, m.startLoad())

	press(m, tea.KeyTab)
	require.Equal(t, FocusEvents, m.focusedPanel)
	drain(m, press(m, tea.KeyDown))

	assert.Equal(t, filter.Event(news.EventAcquisition), m.controller.State().EventFilter)
	assert.Equal(t, 1, f.callCount())
	assert.Len(t, m.controller.Visible(), 2)
	assert.Contains(t, m.View(), "2 of 3 items")
}

func TestModel_StaleResultIgnored(t *testing.T) {
	f := &fakeFetcher{}
	m := newTestModel(t, f)

	first := m.startLoad()
	second := m.startLoad()

	f.set([]news.Item{{Title: "fresh"}}, nil)
	drain(m, second)
	f.set([]news.Item{{Title: "stale"}}, nil)
	drain(m, first)

	items := m.controller.State().Items
	require.Len(t, items, 1)
	assert.Equal(t, "fresh", items[0].Title)
}

func TestModel_ViewDropsEscapeSequences(t *testing.T) {
	m := newTestModel(t, &fakeFetcher{items: []news.Item{{
		Company: "Nubank",
		Title:   "hi \x1b]52;c;ZXZpbA==\x07there \x1b[2J",
	}}})
	drain(m, m.startLoad())

	view := m.View()
	assert.Contains(t, view, "hi there")
	assert.NotContains(t, view, "\x1b[2J")
	assert.NotContains(t, view, "\x1b]52")
}

func TestModel_RefreshKey(t *testing.T) {
	f := &fakeFetcher{items: sampleItems()}
	m := newTestModel(t, f)
	drain(m, m.startLoad())

	press(m, tea.KeyTab)
	drain(m, typeRunes(m, "r"))
	assert.Equal(t, 2, f.callCount())

	drain(m, press(m, tea.KeyCtrlR))
	assert.Equal(t, 3, f.callCount())
}

func TestModel_QuitKeys(t *testing.T) {
	m := newTestModel(t, &fakeFetcher{})

	// q is text while the watchlist is being edited
	typeRunes(m, "q")
	assert.Contains(t, m.companiesPanel.Value(), "q")

	press(m, tea.KeyShiftTab)
	require.Equal(t, FocusNews, m.focusedPanel)
	cmd := typeRunes(m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	cmd = press(m, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_CopyLink(t *testing.T) {
	f := &fakeFetcher{items: sampleItems()}
	m := newTestModel(t, f)
	var copied []string
	m.copyText = func(s string) error {
		copied = append(copied, s)
		return nil
	}
	drain(m, m.startLoad())

	press(m, tea.KeyShiftTab)
	drain(m, typeRunes(m, "y"))
	assert.Equal(t, []string{"https://example.com/a"}, copied)
	assert.Equal(t, "✓ Link copied", m.statusMsg)

	// second item has no link
	press(m, tea.KeyDown)
	drain(m, typeRunes(m, "y"))
	assert.Len(t, copied, 1)
	assert.Equal(t, "No link to copy", m.statusMsg)
}

func TestModel_StatusShowsUpdateTime(t *testing.T) {
	m := newTestModel(t, &fakeFetcher{items: sampleItems()})
	drain(m, m.startLoad())

	updated := m.controller.State().LastLoadedAt
	require.WithinDuration(t, time.Now(), updated, time.Minute)
	assert.Contains(t, m.statusLine(), updated.Format("15:04:05"))
}
