package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"MarketAnalytics/internal/collector"
	"MarketAnalytics/internal/config"
	"MarketAnalytics/internal/logger"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&analyzeCmd{out: os.Stdout}, "")
	commander.Register(&serveCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// configPath returns the config file location, honouring CONFIG_PATH.
func configPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

// setup loads and validates the configuration and builds the logger.
func setup(cfgPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath(cfgPath))
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	if err := cfg.Validate(); err != nil {
		return nil, log, fmt.Errorf("config validation: %w", err)
	}
	return cfg, log, nil
}

// newFetcher picks the price source: an explicit source name wins, otherwise a
// configured base URL selects the REST service and Yahoo is the fallback.
func newFetcher(cfg *config.Config, source string) (collector.Fetcher, error) {
	switch source {
	case "":
		if cfg.DataSource.BaseURL != "" {
			return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy), nil
		}
		return collector.NewYahooFetcher(cfg.Proxy), nil
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy), nil
	case "rest":
		if cfg.DataSource.BaseURL == "" {
			return nil, fmt.Errorf("source rest needs data_source.base_url")
		}
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy), nil
	case "mock":
		return &collector.MockFetcher{Price: 100, Days: 250}, nil
	default:
		return nil, fmt.Errorf("unknown source %q (yahoo, rest, mock)", source)
	}
}
