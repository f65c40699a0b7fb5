package client

import "time"

// Config holds configuration for the news API client.
type Config struct {
	// BaseURL is the API root; requests go to BaseURL + "/news".
	BaseURL string
	// Timeout bounds the whole request, body included.
	Timeout time.Duration
	// UserAgent is sent with every request.
	UserAgent string
	// Location is used to interpret published_at timestamps, which carry no zone.
	Location *time.Location
}

// DefaultConfig returns a Config pointing at a local development backend.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "http://localhost:8000",
		Timeout:   10 * time.Second,
		UserAgent: "newsmonitor/1.0",
		Location:  time.Local,
	}
}
