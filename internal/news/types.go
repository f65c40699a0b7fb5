package news

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// EventType categorises a news item. The zero value is EventOther so a
// missing or unknown label always lands in the catch-all bucket.
type EventType uint8

const (
	EventOther EventType = iota
	EventAcquisition
	EventCertification
	EventProductLaunch
)

func (e EventType) String() string {
	switch e {
	case EventAcquisition:
		return "Acquisition"
	case EventCertification:
		return "Certification"
	case EventProductLaunch:
		return "Product Launch"
	default:
		return "Other"
	}
}

// eventLabels maps folded labels to event types. Portuguese labels are
// what the first backend revisions emitted.
var eventLabels = map[string]EventType{
	"acquisition":         EventAcquisition,
	"aquisicao":           EventAcquisition,
	"certification":       EventCertification,
	"certificacao":        EventCertification,
	"productlaunch":       EventProductLaunch,
	"lancamentodeproduto": EventProductLaunch,
	"other":               EventOther,
	"outro":               EventOther,
}

// ParseEventType decodes a backend label. Unrecognised labels map to EventOther.
func ParseEventType(label string) EventType {
	if e, ok := eventLabels[foldLabel(label)]; ok {
		return e
	}
	return EventOther
}

// SourceType is the provenance of a news item.
type SourceType uint8

const (
	SourceUnknown SourceType = iota
	SourceGoogle
	SourceLinkedIn
)

func (s SourceType) String() string {
	switch s {
	case SourceGoogle:
		return "Google News"
	case SourceLinkedIn:
		return "LinkedIn"
	default:
		return "Unknown source"
	}
}

// ParseSourceType decodes a backend provenance tag.
func ParseSourceType(tag string) SourceType {
	switch foldLabel(tag) {
	case "google", "googlenews":
		return SourceGoogle
	case "linkedin":
		return SourceLinkedIn
	default:
		return SourceUnknown
	}
}

// Item is one monitored event record. Items are built once from the API
// response and never modified afterwards.
type Item struct {
	Company     string
	Title       string
	Description string // markup already stripped
	EventType   EventType
	SourceType  SourceType
	SourceURL   string // empty when the backend sent nothing usable

	// PublishedRaw is the timestamp exactly as received. PublishedAt is nil
	// when PublishedRaw does not match PublishedLayout.
	PublishedRaw string
	PublishedAt  *time.Time
}

// foldLabel lowercases s, removes diacritics and drops separators so that
// "Lançamento de Produto", "product_launch" and "ProductLaunch" compare equal.
func foldLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
