package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/newsmonitor/internal/metrics"
	"github.com/zappabad/newsmonitor/internal/news"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *metrics.Metrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m := metrics.New()
	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Timeout = 2 * time.Second
	cfg.Location = time.UTC
	return NewClient(cfg, m), m
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write([]byte(body))
}

func TestRequestURL(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://localhost:8000/"}, nil)

	assert.Equal(t, "http://localhost:8000/news", c.RequestURL(nil))
	assert.Equal(t,
		"http://localhost:8000/news?companies=Nubank&companies=Totvs&companies=Stone",
		c.RequestURL([]string{"Nubank", "Totvs", "Stone"}))
	assert.Equal(t,
		"http://localhost:8000/news?companies=Banco+Inter&companies=Nubank&companies=Banco+Inter",
		c.RequestURL([]string{"Banco Inter", "Nubank", "Banco Inter"}))
}

func TestFetchSendsOneParamPerCompanyInOrder(t *testing.T) {
	var got []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		got = r.URL.Query()["companies"]
		writeJSON(w, `[]`)
	})

	companies := []string{"Stone", "Nubank", "Totvs", "Stone"}
	items, err := c.Fetch(context.Background(), companies)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, companies, got)
}

func TestFetchDecodesItems(t *testing.T) {
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[
			{
				"company": "Nubank",
				"title": "Nubank acquires startup",
				"description": "<p>Deal <b>closed</b> &amp; signed</p>",
				"event_type": "Acquisition",
				"source_type": "google",
				"source_url": "https://example.com/nubank",
				"published_at": "05/03/2025 14:30"
			},
			{
				"empresa": "Stone",
				"resumo": "<a href=\"https://publisher.example/stone\">Stone</a> news",
				"evento": "Outro",
				"fonte": "not a url",
				"fonte_type": "linkedin",
				"published_at": "not-a-date"
			}
		]`)
	})

	items, err := c.Fetch(context.Background(), []string{"Nubank", "Stone"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	nubank := items[0]
	assert.Equal(t, "Nubank", nubank.Company)
	assert.Equal(t, "Nubank acquires startup", nubank.Title)
	assert.Equal(t, "Deal closed & signed", nubank.Description)
	assert.Equal(t, news.EventAcquisition, nubank.EventType)
	assert.Equal(t, news.SourceGoogle, nubank.SourceType)
	assert.Equal(t, "https://example.com/nubank", nubank.SourceURL)
	require.NotNil(t, nubank.PublishedAt)
	assert.Equal(t, time.Date(2025, time.March, 5, 14, 30, 0, 0, time.UTC), *nubank.PublishedAt)

	stone := items[1]
	assert.Equal(t, "Stone", stone.Company)
	assert.Equal(t, "Stone news", stone.Description)
	assert.Equal(t, news.EventOther, stone.EventType)
	assert.Equal(t, news.SourceLinkedIn, stone.SourceType)
	assert.Equal(t, "https://publisher.example/stone", stone.SourceURL)
	assert.Nil(t, stone.PublishedAt)
	assert.Equal(t, "not-a-date", stone.PublishedRaw)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchCount(metrics.OutcomeOK)))
}

func TestFetchStripsTerminalEscapes(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[{
			"company": "Nubank\u001b[2J",
			"title": "hi \u001b]52;c;ZXZpbA==\u0007there",
			"description": "<p>\u001b[31mred\u001b[0m</p>",
			"published_at": "05/03/2025\u0007 14:30"
		}]`)
	})

	items, err := c.Fetch(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "Nubank", item.Company)
	assert.Equal(t, "hi there", item.Title)
	assert.Equal(t, "red", item.Description)
	assert.Equal(t, "05/03/2025 14:30", item.PublishedRaw)
	assert.NotNil(t, item.PublishedAt)
}

func TestFetchDegradesOddFields(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[1, {"company": 42, "title": null, "event_type": ["x"], "source_type": {}}]`)
	})

	items, err := c.Fetch(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "42", items[0].Company)
	assert.Equal(t, "", items[0].Title)
	assert.Equal(t, news.EventOther, items[0].EventType)
	assert.Equal(t, news.SourceUnknown, items[0].SourceType)
	assert.Equal(t, "", items[0].SourceURL)
}

func TestFetchHTTPStatusError(t *testing.T) {
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
	})

	items, err := c.Fetch(context.Background(), []string{"Nubank"})
	assert.Nil(t, items)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr), "got %v", err)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchCount(metrics.OutcomeStatus)))
}

func TestFetchRejectsNonJSONContentType(t *testing.T) {
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		// A valid JSON body must still be rejected without parsing.
		w.Write([]byte(`[{"company":"Nubank"}]`))
	})

	_, err := c.Fetch(context.Background(), []string{"Nubank"})

	var invalidErr *InvalidResponseError
	require.True(t, errors.As(err, &invalidErr), "got %v", err)
	assert.Equal(t, "text/html; charset=utf-8", invalidErr.ContentType)
	assert.Nil(t, invalidErr.Err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchCount(metrics.OutcomeInvalid)))
}

func TestFetchInvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"object", `{"items": []}`},
		{"truncated", `[{"company": "Nubank"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.body)
			})

			_, err := c.Fetch(context.Background(), nil)

			var invalidErr *InvalidResponseError
			require.True(t, errors.As(err, &invalidErr), "got %v", err)
			assert.Error(t, invalidErr.Err)
		})
	}
}

func TestFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	c := NewClient(Config{BaseURL: baseURL, Timeout: time.Second}, nil)
	_, err := c.Fetch(context.Background(), []string{"Nubank"})

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr), "got %v", err)
}

func TestFetchTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	m := metrics.New()
	c := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, m)

	_, err := c.Fetch(context.Background(), []string{"Nubank"})

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr), "got %v", err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchCount(metrics.OutcomeNetwork)))
}

func TestFetchCancelledContext(t *testing.T) {
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[]`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx, nil)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr), "got %v", err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchCount(metrics.OutcomeCanceled)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FetchCount(metrics.OutcomeNetwork)))
}

func TestFetchCancelledInFlight(t *testing.T) {
	started := make(chan struct{})
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := c.Fetch(ctx, []string{"Nubank"})
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchCount(metrics.OutcomeCanceled)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FetchCount(metrics.OutcomeNetwork)))
}
