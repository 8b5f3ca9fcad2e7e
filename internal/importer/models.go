package importer

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusError    = "error"
)

// Run records one populate run.
type Run struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Store        string         `gorm:"index;not null" json:"store"`
	Status       string         `gorm:"not null" json:"status"`
	StartOffset  int            `json:"start_offset"`
	NextOffset   int            `json:"next_offset"`
	Batches      int            `json:"batches"`
	Total        int            `json:"total"`
	TotalRecords int            `json:"total_records"`
	Percent      float64        `gorm:"-" json:"percent"`
	Messages     pq.StringArray `gorm:"type:text[]" json:"messages"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
}

func (Run) TableName() string { return "import_runs" }

func (r *Run) fillPercent() {
	switch {
	case r.Status == StatusComplete && r.TotalRecords > 0 && r.NextOffset >= r.TotalRecords:
		r.Percent = 100
	case r.TotalRecords > 0:
		r.Percent = min(float64(r.Total)/float64(r.TotalRecords)*100, 100)
	}
}
