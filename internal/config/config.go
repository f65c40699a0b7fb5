package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/zappabad/newsmonitor/internal/monitor"
	"github.com/zappabad/newsmonitor/internal/news/client"
)

// DefaultAPIURL is used when neither flags, environment nor the watchlist
// name an API address.
const DefaultAPIURL = "http://localhost:8000"

// AppConfig holds all application configuration. Every option can be set
// from the command line or the environment.
type AppConfig struct {
	APIURL    string   `long:"api-url" env:"NEWS_API_URL" description:"Base address of the news API (default http://localhost:8000)"`
	Companies []string `long:"company" env:"NEWS_COMPANIES" env-delim:"," description:"Company to monitor; repeat for several"`
	Watchlist string   `long:"watchlist" env:"NEWS_WATCHLIST" description:"YAML file with api_url and companies"`

	Timeout   time.Duration `long:"timeout" env:"NEWS_TIMEOUT" default:"10s" description:"Timeout for a news request"`
	UserAgent string        `long:"user-agent" env:"NEWS_USER_AGENT" default:"newsmonitor/1.0" description:"User agent sent to the API"`

	LogFile     string `long:"log-file" env:"NEWS_LOG_FILE" description:"Write JSON logs to this file"`
	Debug       bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	MetricsAddr string `long:"metrics-addr" env:"NEWS_METRICS_ADDR" description:"Serve Prometheus metrics on this address, e.g. :9090"`
}

// Watchlist is the optional YAML file format.
type Watchlist struct {
	APIURL    string   `yaml:"api_url"`
	Companies []string `yaml:"companies"`
}

// Load parses args and the environment, merges the watchlist file and
// fills defaults. Precedence is flags/env, then watchlist, then
// VITE_API_URL for the API address, then built-in defaults.
func Load(args []string) (*AppConfig, error) {
	var cfg AppConfig

	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "newsmonitor"
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	cfg.Companies = cleanCompanies(cfg.Companies)

	if cfg.Watchlist != "" {
		wl, err := LoadWatchlist(cfg.Watchlist)
		if err != nil {
			return nil, err
		}
		if cfg.APIURL == "" {
			cfg.APIURL = wl.APIURL
		}
		if len(cfg.Companies) == 0 {
			cfg.Companies = cleanCompanies(wl.Companies)
		}
	}

	if cfg.APIURL == "" {
		cfg.APIURL = os.Getenv("VITE_API_URL")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if len(cfg.Companies) == 0 {
		cfg.Companies = append([]string(nil), monitor.DefaultCompanies...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsHelp reports whether err is go-flags' request to show usage.
func IsHelp(err error) bool {
	var flagsErr *flags.Error
	return errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp
}

// LoadWatchlist reads a watchlist YAML file.
func LoadWatchlist(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist: %w", err)
	}

	var wl Watchlist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist %s: %w", path, err)
	}
	return &wl, nil
}

// Validate checks that the API address is an absolute http(s) URL and
// that the timeout is positive.
func (c *AppConfig) Validate() error {
	u, err := url.ParseRequestURI(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL: %q", c.APIURL)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}

// ClientConfig returns the news client configuration.
func (c *AppConfig) ClientConfig() client.Config {
	cfg := client.DefaultConfig()
	cfg.BaseURL = c.APIURL
	cfg.Timeout = c.Timeout
	cfg.UserAgent = c.UserAgent
	return cfg
}

func cleanCompanies(in []string) []string {
	var out []string
	for _, c := range in {
		if name := strings.TrimSpace(c); name != "" {
			out = append(out, name)
		}
	}
	return out
}
