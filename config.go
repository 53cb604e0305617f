package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every environment knob. A .env file in the working
// directory is loaded first by godotenv's autoload import in main.go.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	DBPath       string `env:"DB_PATH" envDefault:"data/celestiguard.db"`

	// Dashboard. An empty DASHBOARD_TOKEN disables the gated views;
	// health/version stay up. DASHBOARD_PUBLIC_URL is what /sharelink
	// prints, usually the reverse-proxied address.
	DashboardAddr      string `env:"DASHBOARD_ADDR" envDefault:"127.0.0.1:5500"`
	DashboardToken     string `env:"DASHBOARD_TOKEN"`
	DashboardPublicURL string `env:"DASHBOARD_PUBLIC_URL" envDefault:"http://127.0.0.1:5500"`

	Version string `env:"CELESTIGUARD_VERSION" envDefault:"dev"`

	// /request files issues here when a token is set.
	GithubToken string `env:"GITHUB_TOKEN"`
	GithubRepo  string `env:"GITHUB_REPO" envDefault:"celestiguard/celestiguard"`

	// How many messages a history rescan may walk.
	BackfillLimit int `env:"BACKFILL_LIMIT" envDefault:"5000"`
}

func loadConfig() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
