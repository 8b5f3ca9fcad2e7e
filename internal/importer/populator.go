package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultDelay      = 100 * time.Millisecond
	DefaultMaxBatches = 500
)

var (
	ErrBatchFailed = errors.New("import batch failed")
	ErrMaxBatches  = errors.New("import stopped at batch limit")
)

// Progress is reported after every successful batch.
type Progress struct {
	Batch        int
	Offset       int
	Count        int
	Total        int
	NextOffset   int
	TotalRecords int
}

// Percent estimates completion from the source's reported size.
func (p Progress) Percent() float64 {
	if p.TotalRecords <= 0 {
		return 0
	}
	return min(float64(p.Total)/float64(p.TotalRecords)*100, 100)
}

// Outcome summarizes a populate run. NextOffset is where a resumed run
// should start.
type Outcome struct {
	Batches      int
	Total        int
	NextOffset   int
	TotalRecords int
}

// Populator drives an Importer over the whole dataset, one batch at a time.
type Populator struct {
	importer   *Importer
	delay      time.Duration
	maxBatches int
	log        *zap.Logger

	// progressLog keeps long runs from flooding the log with one line per batch.
	progressLog rate.Sometimes
}

// NewPopulator waits delay between the end of one batch and the start of the
// next. A non-positive delay runs batches back to back.
func NewPopulator(im *Importer, delay time.Duration, maxBatches int, log *zap.Logger) *Populator {
	if maxBatches <= 0 {
		maxBatches = DefaultMaxBatches
	}
	return &Populator{
		importer:    im,
		delay:       delay,
		maxBatches:  maxBatches,
		log:         log,
		progressLog: rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}
}

func (p *Populator) Importer() *Importer { return p.importer }

// Run imports batches from startOffset until the source reports no more
// records, a batch imports nothing, a batch fails, or ctx is cancelled.
// progress may be nil.
func (p *Populator) Run(ctx context.Context, startOffset int, progress func(Progress)) (Outcome, error) {
	out := Outcome{NextOffset: startOffset}

	for out.Batches < p.maxBatches {
		if out.Batches > 0 {
			if err := pause(ctx, p.delay); err != nil {
				return out, err
			}
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		offset := out.NextOffset
		res := p.importer.RunBatch(ctx, offset)
		if !res.Success {
			return out, fmt.Errorf("%w at offset %d: %s", ErrBatchFailed, offset, res.Error)
		}

		out.Batches++
		out.Total += res.Count
		out.NextOffset = res.NextOffset
		if res.TotalRecords > 0 {
			out.TotalRecords = res.TotalRecords
		}

		p.progressLog.Do(func() {
			p.log.Info("Populate progress",
				zap.Int("batch", out.Batches),
				zap.Int("total", out.Total),
				zap.Int("next_offset", out.NextOffset),
			)
		})
		if progress != nil {
			progress(Progress{
				Batch:        out.Batches,
				Offset:       offset,
				Count:        res.Count,
				Total:        out.Total,
				NextOffset:   out.NextOffset,
				TotalRecords: out.TotalRecords,
			})
		}

		if !res.HasMore || res.Count == 0 {
			p.log.Info("Populate finished",
				zap.Int("batches", out.Batches),
				zap.Int("total", out.Total),
			)
			return out, nil
		}
	}

	p.log.Warn("Populate hit batch limit",
		zap.Int("max_batches", p.maxBatches),
		zap.Int("next_offset", out.NextOffset),
	)
	return out, ErrMaxBatches
}

// pause blocks for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
