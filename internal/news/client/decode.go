package client

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/zappabad/newsmonitor/internal/news"
)

// flexString accepts any JSON scalar. Objects, arrays and null decode to
// the empty string so a single odd field never rejects a record.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*s = flexString(t)
	case float64:
		*s = flexString(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		*s = flexString(strconv.FormatBool(t))
	default:
		*s = ""
	}
	return nil
}

func (s flexString) String() string { return strings.TrimSpace(string(s)) }

// rawItem is one record of the /news response. The snake_case names are
// the canonical contract; the remaining tags are aliases emitted by older
// backend revisions.
type rawItem struct {
	Company     flexString `json:"company"`
	Title       flexString `json:"title"`
	Description flexString `json:"description"`
	EventType   flexString `json:"event_type"`
	SourceType  flexString `json:"source_type"`
	SourceURL   flexString `json:"source_url"`
	PublishedAt flexString `json:"published_at"`

	EventTypeCamel   flexString `json:"eventType"`
	SourceTypeCamel  flexString `json:"sourceType"`
	SourceURLCamel   flexString `json:"sourceUrl"`
	PublishedAtCamel flexString `json:"publishedAt"`

	Empresa   flexString `json:"empresa"`
	Resumo    flexString `json:"resumo"`
	Evento    flexString `json:"evento"`
	Fonte     flexString `json:"fonte"`
	FonteType flexString `json:"fonte_type"`
	URL       flexString `json:"url"`
}

// toItem maps a raw record onto news.Item, defaulting whatever is missing.
func (r rawItem) toItem(loc *time.Location) news.Item {
	rawDescription := firstNonEmpty(r.Description, r.Resumo)

	sourceURL := firstWebURL(r.SourceURL, r.SourceURLCamel, r.URL, r.Fonte)
	if sourceURL == "" {
		sourceURL = news.FirstLink(rawDescription)
	}

	published := news.CleanText(firstNonEmpty(r.PublishedAt, r.PublishedAtCamel))

	return news.Item{
		Company:      news.CleanText(firstNonEmpty(r.Company, r.Empresa)),
		Title:        news.StripMarkup(r.Title.String()),
		Description:  news.StripMarkup(rawDescription),
		EventType:    news.ParseEventType(firstNonEmpty(r.EventType, r.EventTypeCamel, r.Evento)),
		SourceType:   news.ParseSourceType(firstNonEmpty(r.SourceType, r.SourceTypeCamel, r.FonteType)),
		SourceURL:    sourceURL,
		PublishedRaw: published,
		PublishedAt:  news.ParsePublished(published, loc),
	}
}

func firstNonEmpty(values ...flexString) string {
	for _, v := range values {
		if s := v.String(); s != "" {
			return s
		}
	}
	return ""
}

func firstWebURL(values ...flexString) string {
	for _, v := range values {
		if s := v.String(); news.IsWebURL(s) {
			return s
		}
	}
	return ""
}
