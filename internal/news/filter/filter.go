package filter

import "github.com/zappabad/newsmonitor/internal/news"

// Selection is the event filter: All, or a single event type.
type Selection struct {
	all   bool
	event news.EventType
}

// All matches every item.
var All = Selection{all: true}

// Event matches items of the given event type only.
func Event(e news.EventType) Selection {
	return Selection{event: e}
}

// IsAll reports whether s is the All selection.
func (s Selection) IsAll() bool { return s.all }

// EventType returns the selected event type; meaningless when IsAll.
func (s Selection) EventType() news.EventType { return s.event }

func (s Selection) String() string {
	if s.all {
		return "All"
	}
	return s.event.String()
}

// Selections lists the selectable values in display order.
func Selections() []Selection {
	return []Selection{
		All,
		Event(news.EventAcquisition),
		Event(news.EventCertification),
		Event(news.EventProductLaunch),
		Event(news.EventOther),
	}
}

// Apply returns the items matching sel, preserving their relative order.
// With All the input slice itself is returned. items is never modified.
func Apply(items []news.Item, sel Selection) []news.Item {
	if sel.all {
		return items
	}

	filtered := make([]news.Item, 0, len(items))
	for _, item := range items {
		if item.EventType == sel.event {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Counts returns how many items each selection would yield.
func Counts(items []news.Item) map[Selection]int {
	counts := make(map[Selection]int, len(Selections()))
	for _, sel := range Selections() {
		counts[sel] = 0
	}
	counts[All] = len(items)
	for _, item := range items {
		counts[Event(item.EventType)]++
	}
	return counts
}
