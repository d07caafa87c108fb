package scheduler

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"MarketAnalytics/internal/analytics"
	"MarketAnalytics/internal/collector"
	"MarketAnalytics/internal/metrics"
	"MarketAnalytics/internal/model"
	"MarketAnalytics/internal/notifier"
	"MarketAnalytics/internal/recorder"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Notifier delivers formatted reports.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Options selects what a run analyzes.
type Options struct {
	Symbols   []string
	Benchmark string
	Analysis  analytics.Config
}

// Scheduler manages the cron-driven analysis runs.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  Notifier // nil disables notifications
	Recorder  recorder.Recorder
	Options   Options
	Ctx       context.Context

	log  zerolog.Logger
	mu   sync.Mutex
	last *model.AnalyticsResult
	now  func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, n Notifier, rec recorder.Recorder, opts Options, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		Options:   opts,
		Ctx:       ctx,
		log:       log.With().Str("component", "scheduler").Logger(),
		now:       time.Now,
	}
}

// Register adds the analysis task on the given cron spec (with seconds field).
func (s *Scheduler) Register(analysisCron string) error {
	if _, err := s.Cron.AddFunc(analysisCron, s.analysisTask); err != nil {
		return fmt.Errorf("register analysis task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes the analysis task immediately (manual trigger / run on start).
func (s *Scheduler) RunNow() {
	s.analysisTask()
}

// LastResult returns the result of the latest successful run, or nil.
func (s *Scheduler) LastResult() *model.AnalyticsResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// RunAnalysis collects prices, analyzes them and records the run.
func (s *Scheduler) RunAnalysis(ctx context.Context) (*model.AnalyticsResult, error) {
	started := s.now()
	res, err := s.runAnalysis(ctx)
	assets := 0
	if res != nil {
		assets = len(res.PerAsset)
	}
	metrics.ObserveRun(err, s.now().Sub(started), assets)
	return res, err
}

func (s *Scheduler) runAnalysis(ctx context.Context) (*model.AnalyticsResult, error) {
	cfg := s.Options.Analysis
	prices, err := s.Collector.CollectAll(ctx, s.Options.Symbols, cfg.DateRange.Start, cfg.DateRange.End)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	res, err := analytics.Analyze(prices, cfg)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	for id, a := range res.PerAsset {
		metrics.AddAssetIssues(id, len(a.Risk.Issues))
		if len(a.Risk.Issues) > 0 {
			s.log.Warn().Str("asset", id).Strs("issues", a.Risk.Issues).Msg("incomplete statistics")
		}
	}

	run := &recorder.RunRecord{Timestamp: s.now(), Assets: s.Options.Symbols, Result: res}
	if err := s.Recorder.RecordRun(run); err != nil {
		s.log.Error().Err(err).Msg("record run")
	}

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()

	s.log.Info().
		Str("run_id", run.ID).
		Int("assets", len(res.PerAsset)).
		Str("best", res.Highlights.BestPerformer).
		Msg("analysis complete")
	return res, nil
}

func (s *Scheduler) analysisTask() {
	s.log.Info().Strs("symbols", s.Options.Symbols).Msg("running analysis task")
	res, err := s.RunAnalysis(s.Ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("analysis task")
		s.trySend(fmt.Sprintf("❌ Analysis failed: %s", html.EscapeString(err.Error())))
		return
	}
	s.trySend(notifier.FormatReport(res, s.now()))
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/report":
		res := s.LastResult()
		if res == nil {
			var err error
			if res, err = s.RunAnalysis(s.Ctx); err != nil {
				return fmt.Sprintf("❌ Analysis failed: %s", html.EscapeString(err.Error()))
			}
		}
		return notifier.FormatReport(res, s.now())
	case "/assets":
		return notifier.FormatAssets(s.Options.Symbols, s.Options.Benchmark)
	case "/history":
		runs, err := s.Recorder.RecentRuns(10)
		if err != nil {
			s.log.Error().Err(err).Msg("load history")
			return "❌ Could not load run history."
		}
		return notifier.FormatHistory(runs)
	default:
		return "Available commands:\n• /report\n• /assets\n• /history"
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
