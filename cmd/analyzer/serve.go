package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MarketAnalytics/internal/collector"
	"MarketAnalytics/internal/notifier"
	"MarketAnalytics/internal/recorder"
	"MarketAnalytics/internal/scheduler"
	"MarketAnalytics/internal/server"

	"github.com/google/subcommands"
)

type serveCmd struct {
	configFile string
	source     string
	runNow     bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run scheduled analyses, HTTP API and Telegram bot" }
func (*serveCmd) Usage() string {
	return `analyzer serve [-c <config>] [-source yahoo|rest|mock] [-run-now]

  Runs until SIGINT or SIGTERM.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configFile, "c", "", "Config file (defaults to $CONFIG_PATH or configs/config.yaml)")
	f.StringVar(&c.source, "source", "", "Price source; defaults to rest when data_source.base_url is set, else yahoo")
	f.BoolVar(&c.runNow, "run-now", os.Getenv("RUN_ON_START") == "true", "Run one analysis immediately on start")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, log, err := setup(c.configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	log.Info().Msg("MarketAnalytics starting...")

	fetcher, err := newFetcher(cfg, c.source)
	if err != nil {
		log.Error().Err(err).Msg("init fetcher")
		return subcommands.ExitUsageError
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source")
	col := collector.NewCollector(fetcher, log)

	ac, err := cfg.AnalysisConfig()
	if err != nil {
		log.Error().Err(err).Msg("analysis config")
		return subcommands.ExitUsageError
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		if err != nil {
			log.Warn().Err(err).Msg("telegram disabled")
			tn = nil
		}
	}

	var n scheduler.Notifier
	if tn != nil {
		n = tn
	}
	sched := scheduler.NewScheduler(ctx, col, n, rec, scheduler.Options{
		Symbols:   cfg.Symbols(),
		Benchmark: cfg.Benchmark,
		Analysis:  ac,
	}, log)
	if err := sched.Register(cfg.Schedule.AnalysisCron); err != nil {
		log.Error().Err(err).Msg("register cron tasks")
		return subcommands.ExitFailure
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("Telegram polling started")
	}

	srv := server.New(server.Config{
		Addr:     cfg.Server.Addr,
		Log:      log,
		Recorder: rec,
		Runner:   sched,
		Defaults: ac,
	})
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server")
			cancel()
		}
	}()

	if c.runNow {
		log.Info().Msg("run-now enabled, executing analysis task")
		go sched.RunNow()
	}

	log.Info().Msg("MarketAnalytics is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	log.Info().Msg("MarketAnalytics stopped")
	return subcommands.ExitSuccess
}
