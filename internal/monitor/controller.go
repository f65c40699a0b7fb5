package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zappabad/newsmonitor/internal/logger"
	"github.com/zappabad/newsmonitor/internal/news"
	"github.com/zappabad/newsmonitor/internal/news/client"
	"github.com/zappabad/newsmonitor/internal/news/filter"
)

// Fetcher retrieves news for a list of companies.
type Fetcher interface {
	Fetch(ctx context.Context, companies []string) ([]news.Item, error)
}

// Request identifies one load. Companies is the list as it was when the
// load began.
type Request struct {
	ID        uint64
	Companies []string
}

// Result is the outcome of a Request.
type Result struct {
	ID    uint64
	Items []news.Item
	Err   error
}

// Controller owns the application state. All mutation goes through its
// methods; the mutex serialises callers that are not on the UI loop.
type Controller struct {
	mu      sync.Mutex
	fetcher Fetcher
	state   State
	now     func() time.Time
}

// NewController creates a Controller in the Idle phase watching companies.
func NewController(fetcher Fetcher, companies []string) *Controller {
	if companies == nil {
		companies = DefaultCompanies
	}
	return &Controller{
		fetcher: fetcher,
		state: State{
			Companies:   append([]string(nil), companies...),
			EventFilter: filter.All,
			Phase:       PhaseIdle,
		},
		now: time.Now,
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Companies = append([]string(nil), c.state.Companies...)
	return s
}

// SetCompanies replaces the watchlist. It takes effect on the next load.
func (c *Controller) SetCompanies(companies []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Companies = append([]string(nil), companies...)
}

// ParseCompanies splits comma separated input, trimming entries and
// dropping empty ones. Duplicates and order are kept.
func ParseCompanies(input string) []string {
	companies := []string{}
	for _, part := range strings.Split(input, ",") {
		if name := strings.TrimSpace(part); name != "" {
			companies = append(companies, name)
		}
	}
	return companies
}

// BeginLoad moves the controller to Loading and returns the request to
// run. Any earlier request still in flight becomes stale.
func (c *Controller) BeginLoad() Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.RequestID++
	c.state.Phase = PhaseLoading
	c.state.Loading = true
	c.state.ErrorMessage = ""

	logger.Log.WithFields(map[string]interface{}{
		"request":   c.state.RequestID,
		"companies": c.state.Companies,
	}).Debug("Load started")

	return Request{
		ID:        c.state.RequestID,
		Companies: append([]string(nil), c.state.Companies...),
	}
}

// Load runs req against the fetcher. It does not touch the state, so it
// may run off the UI loop.
func (c *Controller) Load(ctx context.Context, req Request) Result {
	items, err := c.fetcher.Fetch(ctx, req.Companies)
	return Result{ID: req.ID, Items: items, Err: err}
}

// Complete applies a finished load. Results of superseded requests are
// dropped and Complete returns false.
func (c *Controller) Complete(res Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := logger.Log.WithField("request", res.ID)
	if res.ID != c.state.RequestID || c.state.Phase != PhaseLoading {
		log.WithField("latest", c.state.RequestID).Debug("Dropping stale result")
		return false
	}

	c.state.Loading = false
	if res.Err != nil {
		c.state.Phase = PhaseFailed
		c.state.Items = nil
		c.state.ErrorMessage = UserMessage(res.Err)
		log.Warnf("Load failed: %v", res.Err)
		return true
	}

	items := res.Items
	if items == nil {
		items = []news.Item{}
	}
	c.state.Phase = PhaseLoaded
	c.state.Items = items
	c.state.ErrorMessage = ""
	c.state.LastLoadedAt = c.now()
	log.WithField("count", len(items)).Info("Load finished")
	return true
}

// Refresh runs a complete load synchronously.
func (c *Controller) Refresh(ctx context.Context) State {
	req := c.BeginLoad()
	c.Complete(c.Load(ctx, req))
	return c.State()
}

// SetFilter changes the event filter. It never triggers a fetch.
func (c *Controller) SetFilter(sel filter.Selection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.EventFilter = sel
}

// Visible returns the items that pass the current filter.
func (c *Controller) Visible() []news.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return filter.Apply(c.state.Items, c.state.EventFilter)
}

// Counts returns the per-selection item counts of the current items.
func (c *Controller) Counts() map[filter.Selection]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return filter.Counts(c.state.Items)
}

// UserMessage turns a fetch error into the text shown to the user.
func UserMessage(err error) string {
	var (
		netErr     *client.NetworkError
		statusErr  *client.HTTPStatusError
		invalidErr *client.InvalidResponseError
	)
	switch {
	case errors.As(err, &netErr):
		return "Could not reach the news service. Check your connection and try again."
	case errors.As(err, &statusErr):
		return fmt.Sprintf("The news service returned an error (HTTP %d).", statusErr.Code)
	case errors.As(err, &invalidErr):
		return "The news service sent a response that could not be read."
	default:
		return "Failed to fetch news."
	}
}
