package monitor

import (
	"time"

	"github.com/zappabad/newsmonitor/internal/news"
	"github.com/zappabad/newsmonitor/internal/news/filter"
)

// Phase is the fetch state of the controller.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of the application state.
type State struct {
	Companies    []string
	Items        []news.Item // last successful result, replaced wholesale
	EventFilter  filter.Selection
	Loading      bool
	ErrorMessage string

	Phase        Phase
	RequestID    uint64 // id of the latest load
	LastLoadedAt time.Time
}

// DefaultCompanies is the watchlist used when nothing else is configured.
var DefaultCompanies = []string{"Nubank", "Totvs", "Stone"}
