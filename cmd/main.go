package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/auth"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

func main() {
	logger := shared.NewLogger(nil)
	if os.Getenv("SPOTX_DEBUG") != "" {
		shared.SetLogLevel(logger, log.DebugLevel)
	}

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			logger.Fatalf("failed to load %s: %v", configPath, err)
		}
		config = loaded
	}

	manager, err := auth.NewManager(config, nil)
	if err != nil {
		logger.Fatalf("failed to initialize credential manager: %v", err)
	}

	var limiter *rate.Limiter
	if config.API.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.API.RateLimit), 1)
	}

	var client *http.Client
	if config.API.TimeoutSeconds > 0 {
		client = &http.Client{Timeout: time.Duration(config.API.TimeoutSeconds) * time.Second}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Manager:    manager,
		Spotify:    services.NewSpotifyService(manager, &services.SpotifyOpts{Client: client, Limiter: limiter}),
		API:        services.NewAPIService(manager, "", client),
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "spotx",
		Usage:    "Spotify from the terminal and over MCP",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
