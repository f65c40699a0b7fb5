package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zappabad/newsmonitor/internal/config"
	"github.com/zappabad/newsmonitor/internal/logger"
	"github.com/zappabad/newsmonitor/internal/metrics"
	"github.com/zappabad/newsmonitor/internal/monitor"
	"github.com/zappabad/newsmonitor/internal/news/client"
	"github.com/zappabad/newsmonitor/tui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run starts the monitor and returns the process exit code. Deferred
// cleanup runs before main exits.
func run(args []string) int {
	cfg, err := config.Load(args)
	if err != nil {
		if config.IsHelp(err) {
			fmt.Println(err)
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	logs, err := logger.Init(cfg.LogFile, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		return 1
	}
	defer logs.Close()

	logger.Log.WithFields(map[string]interface{}{
		"api_url":   cfg.APIURL,
		"companies": cfg.Companies,
	}).Info("Starting news monitor")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, m)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// Create news client and controller
	newsClient := client.NewClient(cfg.ClientConfig(), m)
	controller := monitor.NewController(newsClient, cfg.Companies)

	// Create and run TUI
	model := tui.NewModel(ctx, controller)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Log.WithError(err).Error("TUI exited with error")
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return 1
	}
	logger.Log.Info("News monitor stopped")
	return 0
}

// serveMetrics exposes the metrics registry on addr in the background.
func serveMetrics(addr string, m *metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Error("Metrics server stopped")
		}
	}()
	logger.Log.WithField("addr", addr).Info("Serving metrics")
	return srv
}
