package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"MarketAnalytics/internal/analytics"
	"MarketAnalytics/internal/model"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	Assets    []string `yaml:"assets"`
	Benchmark string   `yaml:"benchmark"`
	Analysis  struct {
		Windows        analytics.Windows `yaml:"windows"`
		PeriodsPerYear int               `yaml:"periods_per_year"`
		DateRange      struct {
			Start string `yaml:"start"`
			End   string `yaml:"end"`
		} `yaml:"date_range"`
		Indicators          []string `yaml:"indicators"`
		Alignment           string   `yaml:"alignment"`
		HighSharpeThreshold float64  `yaml:"high_sharpe_threshold"`
	} `yaml:"analysis"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"data_source"`
	Schedule struct {
		AnalysisCron string `yaml:"analysis_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
// A missing file is not an error; defaults fill the gaps.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	_ = godotenv.Load()

	if v := os.Getenv("ASSETS"); v != "" {
		cfg.Assets = splitList(v)
	}
	if v := os.Getenv("BENCHMARK"); v != "" {
		cfg.Benchmark = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_ANALYSIS"); v != "" {
		cfg.Schedule.AnalysisCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.Telegram.ChatID = id
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		cfg.Log.Pretty = v == "true" || v == "1"
	}
	if v := os.Getenv("PERIODS_PER_YEAR"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse PERIODS_PER_YEAR: %w", err)
		}
		cfg.Analysis.PeriodsPerYear = n
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills unset fields. Explicit values, even invalid ones, are kept
// so Validate can report them.
func (c *Config) applyDefaults() {
	if len(c.Assets) == 0 {
		c.Assets = []string{"AAPL", "MSFT"}
	}
	if c.Benchmark == "" {
		c.Benchmark = "SPY"
	}
	def := analytics.DefaultConfig()
	w := &c.Analysis.Windows
	setInt(&w.SMAShort, def.Windows.SMAShort)
	setInt(&w.SMALong, def.Windows.SMALong)
	setInt(&w.EMAFast, def.Windows.EMAFast)
	setInt(&w.EMASlow, def.Windows.EMASlow)
	setInt(&w.RSIPeriod, def.Windows.RSIPeriod)
	setInt(&w.MACDFast, def.Windows.MACDFast)
	setInt(&w.MACDSlow, def.Windows.MACDSlow)
	setInt(&w.MACDSignal, def.Windows.MACDSignal)
	setInt(&w.BollingerWindow, def.Windows.BollingerWindow)
	if w.BollingerStd == 0 {
		w.BollingerStd = def.Windows.BollingerStd
	}
	setInt(&c.Analysis.PeriodsPerYear, def.PeriodsPerYear)
	if c.Analysis.Alignment == "" {
		c.Analysis.Alignment = def.Alignment
	}
	if c.Analysis.HighSharpeThreshold == 0 {
		c.Analysis.HighSharpeThreshold = def.HighSharpeThreshold
	}
	if c.Schedule.AnalysisCron == "" {
		c.Schedule.AnalysisCron = "0 30 22 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/market_analytics.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func setInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

// Symbols returns the configured assets with the benchmark appended when absent.
func (c *Config) Symbols() []string {
	out := make([]string, 0, len(c.Assets)+1)
	seen := make(map[string]bool, len(c.Assets)+1)
	for _, a := range c.Assets {
		a = strings.ToUpper(strings.TrimSpace(a))
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	if b := strings.ToUpper(strings.TrimSpace(c.Benchmark)); b != "" && !seen[b] {
		out = append(out, b)
	}
	return out
}

// AnalysisConfig converts the analysis section into an engine configuration.
func (c *Config) AnalysisConfig() (analytics.Config, error) {
	out := analytics.Config{
		Windows:             c.Analysis.Windows,
		PeriodsPerYear:      c.Analysis.PeriodsPerYear,
		Indicators:          c.Analysis.Indicators,
		Alignment:           c.Analysis.Alignment,
		HighSharpeThreshold: c.Analysis.HighSharpeThreshold,
	}
	var err error
	if out.DateRange.Start, err = parseDate(c.Analysis.DateRange.Start); err != nil {
		return out, fmt.Errorf("analysis.date_range.start: %w", err)
	}
	if out.DateRange.End, err = parseDate(c.Analysis.DateRange.End); err != nil {
		return out, fmt.Errorf("analysis.date_range.end: %w", err)
	}
	return out, nil
}

// Validate checks that all required fields are set and the analysis settings are usable.
func (c *Config) Validate() error {
	if len(c.Symbols()) == 0 {
		return fmt.Errorf("assets is required")
	}
	ac, err := c.AnalysisConfig()
	if err != nil {
		return err
	}
	if err := ac.Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", s, model.ErrInvalidParameter)
	}
	return t, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
