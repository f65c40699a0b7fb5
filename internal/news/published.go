package news

import (
	"fmt"
	"strings"
	"time"
)

// PublishedLayout is the backend's timestamp format (dd/mm/yyyy HH:MM).
const PublishedLayout = "02/01/2006 15:04"

// ParsePublished parses a backend timestamp in loc. It returns nil when raw
// is empty or does not match PublishedLayout.
func ParsePublished(raw string, loc *time.Location) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(PublishedLayout, raw, loc)
	if err != nil {
		return nil
	}
	return &t
}

// PublishedLabel is the text shown for the item's publication time: a
// relative age when the timestamp parsed, the raw string otherwise.
func (it Item) PublishedLabel(now time.Time) string {
	if it.PublishedAt == nil {
		return it.PublishedRaw
	}
	return RelativeTime(*it.PublishedAt, now)
}

// RelativeTime formats the age of t as seen from now. Ages of a week or
// more fall back to an absolute date.
func RelativeTime(t, now time.Time) string {
	age := now.Sub(t)
	if age < 0 {
		age = 0
	}

	minutes := int(age / time.Minute)
	hours := minutes / 60
	days := hours / 24

	switch {
	case minutes < 60:
		return fmt.Sprintf("%d min ago", minutes)
	case hours < 24:
		return fmt.Sprintf("%d h ago", hours)
	case days == 1:
		return "1 day ago"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("02 Jan 2006")
	}
}
