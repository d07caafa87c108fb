package recorder

import (
	"errors"
	"time"

	"MarketAnalytics/internal/model"
)

// ErrRunNotFound is returned when a stored run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is one completed analysis run.
type RunRecord struct {
	ID        string
	Timestamp time.Time
	Assets    []string
	Result    *model.AnalyticsResult
}

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Assets        []string  `json:"assets"`
	BestPerformer string    `json:"best_performer,omitempty"`
}

// Recorder persists analysis runs for later inspection.
type Recorder interface {
	RecordRun(run *RunRecord) error
	RecentRuns(limit int) ([]RunSummary, error)
	LoadRun(id string) (*model.AnalyticsResult, error)
	Close() error
}
