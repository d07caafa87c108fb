package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"MarketAnalytics/internal/analytics"
	"MarketAnalytics/internal/collector"
	"MarketAnalytics/internal/notifier"

	"github.com/google/subcommands"
)

type analyzeCmd struct {
	configFile string
	source     string
	asJSON     bool
	out        io.Writer
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "fetch prices and print one analysis report" }
func (*analyzeCmd) Usage() string {
	return `analyzer analyze [-c <config>] [-source yahoo|rest|mock] [-json]

  Fetches daily closes for the configured assets, computes returns, indicators,
  risk statistics and correlations, and prints the result.
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configFile, "c", "", "Config file (defaults to $CONFIG_PATH or configs/config.yaml)")
	f.StringVar(&c.source, "source", "", "Price source; defaults to rest when data_source.base_url is set, else yahoo")
	f.BoolVar(&c.asJSON, "json", false, "Print the full result as JSON")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, log, err := setup(c.configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	fetcher, err := newFetcher(cfg, c.source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	ac, err := cfg.AnalysisConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	col := collector.NewCollector(fetcher, log)
	prices, err := col.CollectAll(ctx, cfg.Symbols(), ac.DateRange.Start, ac.DateRange.End)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	res, err := analytics.Analyze(prices, ac)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	fmt.Fprintln(c.out, notifier.FormatReport(res, time.Now()))
	return subcommands.ExitSuccess
}
