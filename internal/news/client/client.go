package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zappabad/newsmonitor/internal/logger"
	"github.com/zappabad/newsmonitor/internal/metrics"
	"github.com/zappabad/newsmonitor/internal/news"
)

// Observer receives the outcome of every fetch.
type Observer interface {
	ObserveFetch(outcome string, d time.Duration)
}

// Client fetches news items from the backend API. It keeps no state
// between calls: every Fetch goes to the network.
type Client struct {
	cfg        Config
	httpClient *http.Client
	observer   Observer
}

// NewClient creates a Client. observer may be nil.
func NewClient(cfg Config, observer Observer) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Location == nil {
		cfg.Location = def.Location
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		observer:   observer,
	}
}

// RequestURL builds the /news URL with one companies parameter per entry,
// in the order given.
func (c *Client) RequestURL(companies []string) string {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/news"
	if len(companies) == 0 {
		return endpoint
	}
	params := url.Values{}
	for _, company := range companies {
		params.Add("companies", company)
	}
	return endpoint + "?" + params.Encode()
}

// Fetch requests the news for companies. Errors are always one of
// *NetworkError, *HTTPStatusError or *InvalidResponseError.
func (c *Client) Fetch(ctx context.Context, companies []string) (items []news.Item, err error) {
	reqURL := c.RequestURL(companies)
	log := logger.Log.WithFields(map[string]interface{}{
		"companies": len(companies),
		"url":       reqURL,
	})

	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		result := outcome(err)
		if err != nil && errors.Is(ctx.Err(), context.Canceled) {
			result = metrics.OutcomeCanceled
		}
		if c.observer != nil {
			c.observer.ObserveFetch(result, elapsed)
		}
		switch {
		case result == metrics.OutcomeCanceled:
			log.WithField("duration", elapsed.String()).Debug("News fetch canceled")
			return
		case err != nil:
			log.WithField("duration", elapsed.String()).Warnf("News fetch failed: %v", err)
			return
		}
		log.WithFields(map[string]interface{}{
			"count":    len(items),
			"duration": elapsed.String(),
		}).Info("News fetched")
	}()

	log.Debug("Fetching news")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: reqURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &HTTPStatusError{Code: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isJSON(contentType) {
		return nil, &InvalidResponseError{ContentType: contentType}
	}

	var records []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		if isTransportError(ctx, err) {
			return nil, &NetworkError{URL: reqURL, Err: err}
		}
		return nil, &InvalidResponseError{ContentType: contentType, Err: err}
	}

	items = make([]news.Item, 0, len(records))
	for i, record := range records {
		var raw rawItem
		if err := json.Unmarshal(record, &raw); err != nil {
			log.WithField("index", i).Warnf("Skipping malformed news record: %v", err)
			continue
		}
		items = append(items, raw.toItem(c.cfg.Location))
	}
	return items, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// isTransportError tells a body read that died on the wire apart from a
// body that is simply not JSON.
func isTransportError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func outcome(err error) string {
	var (
		netErr     *NetworkError
		statusErr  *HTTPStatusError
		invalidErr *InvalidResponseError
	)
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &netErr):
		return metrics.OutcomeNetwork
	case errors.As(err, &statusErr):
		return metrics.OutcomeStatus
	case errors.As(err, &invalidErr):
		return metrics.OutcomeInvalid
	default:
		return "other"
	}
}
