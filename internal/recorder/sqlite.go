package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"MarketAnalytics/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists analysis runs to a SQLite database. The full result is
// kept as a msgpack payload; per-asset statistics are flattened into asset_stats
// for ad-hoc SQL and dashboards.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while runs are written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id             TEXT PRIMARY KEY,
			timestamp      INTEGER NOT NULL,
			assets         TEXT NOT NULL,
			best_performer TEXT,
			range_start    INTEGER,
			range_end      INTEGER,
			payload        BLOB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON analysis_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS asset_stats (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT NOT NULL REFERENCES analysis_runs(id),
			asset             TEXT NOT NULL,
			observations      INTEGER,
			annualized_return REAL,
			volatility        REAL,
			sharpe_ratio      REAL,
			sharpe_infinite   INTEGER,
			max_drawdown      REAL,
			latest_rsi        REAL,
			issues            TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_asset_stats_run ON asset_stats(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_asset_stats_asset ON asset_stats(asset)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores a run. Missing ID and Timestamp are filled in and written back.
func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	if run == nil || run.Result == nil {
		return errors.New("record run: empty result")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}
	payload, err := msgpack.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res := run.Result
	_, err = tx.Exec(`INSERT INTO analysis_runs
		(id, timestamp, assets, best_performer, range_start, range_end, payload)
		VALUES (?,?,?,?,?,?,?)`,
		run.ID, run.Timestamp.Unix(), strings.Join(run.Assets, ","),
		res.Highlights.BestPerformer, unixOrNil(res.Range.Start), unixOrNil(res.Range.End),
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for asset, a := range res.PerAsset {
		var rsi *float64
		if v, ok := a.Indicators.RSI.Last(); ok {
			rsi = model.Float(v)
		}
		_, err := tx.Exec(`INSERT INTO asset_stats
			(run_id, asset, observations, annualized_return, volatility,
			 sharpe_ratio, sharpe_infinite, max_drawdown, latest_rsi, issues)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			run.ID, asset, a.Observations, nullable(a.Risk.AnnualizedReturn), nullable(a.Risk.Volatility),
			nullable(a.Risk.SharpeRatio.Value), a.Risk.SharpeRatio.Infinite, nullable(a.Risk.MaxDrawdown), nullable(rsi),
			strings.Join(a.Risk.Issues, "; "),
		)
		if err != nil {
			return fmt.Errorf("insert asset %s: %w", asset, err)
		}
	}
	return tx.Commit()
}

// RecentRuns lists the newest runs first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT id, timestamp, assets, best_performer
		FROM analysis_runs ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			s      RunSummary
			ts     int64
			assets string
			best   sql.NullString
		)
		if err := rows.Scan(&s.ID, &ts, &assets, &best); err != nil {
			return nil, err
		}
		s.Timestamp = time.Unix(ts, 0).UTC()
		if assets != "" {
			s.Assets = strings.Split(assets, ",")
		}
		s.BestPerformer = best.String
		out = append(out, s)
	}
	return out, rows.Err()
}

// LoadRun returns the full result stored for id.
func (r *SQLiteRecorder) LoadRun(id string) (*model.AnalyticsResult, error) {
	var payload []byte
	err := r.db.QueryRow(`SELECT payload FROM analysis_runs WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return DecodePayload(payload)
}

// DecodePayload decodes a msgpack payload written by RecordRun.
func DecodePayload(payload []byte) (*model.AnalyticsResult, error) {
	var res model.AnalyticsResult
	if err := msgpack.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &res, nil
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func unixOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Unix()
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
