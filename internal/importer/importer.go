package importer

import (
	"context"
	"time"

	"github.com/alleghenyre/propsearch/internal/property"
	"github.com/alleghenyre/propsearch/internal/wprdc"
	"go.uber.org/zap"
)

// DefaultBatchSize is how many source records one batch requests.
const DefaultBatchSize = 500

// Source yields pages of raw records. wprdc.Client implements it.
type Source interface {
	FetchPage(ctx context.Context, offset, limit int) (wprdc.Page, error)
}

// Result reports one batch. It is also the JSON body of POST /import.
type Result struct {
	Success      bool   `json:"success"`
	Count        int    `json:"count"`
	HasMore      bool   `json:"hasMore"`
	NextOffset   int    `json:"nextOffset,omitempty"`
	TotalRecords int    `json:"totalRecords,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Importer copies pages from the source into a store.
type Importer struct {
	source    Source
	store     property.Store
	batchSize int
	log       *zap.Logger
}

func New(source Source, store property.Store, batchSize int, log *zap.Logger) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Importer{
		source:    source,
		store:     store,
		batchSize: batchSize,
		log:       log.With(zap.String("store", store.Name())),
	}
}

func (im *Importer) Store() property.Store { return im.store }

// RunBatch imports the page starting at offset. Any fetch or store error
// fails the whole batch; nothing is retried.
func (im *Importer) RunBatch(ctx context.Context, offset int) Result {
	if offset < 0 {
		offset = 0
	}
	start := time.Now()

	page, err := im.source.FetchPage(ctx, offset, im.batchSize)
	if err != nil {
		im.log.Error("Batch fetch failed", zap.Int("offset", offset), zap.Error(err))
		return Result{Error: err.Error()}
	}
	if len(page.Records) == 0 {
		im.log.Info("Source exhausted", zap.Int("offset", offset))
		return Result{Success: true, NextOffset: offset, TotalRecords: page.Total}
	}

	props := wprdc.MapRecords(page.Records)
	count, err := im.store.Upsert(ctx, props)
	if err != nil {
		im.log.Error("Batch upsert failed",
			zap.Int("offset", offset),
			zap.Int("written", count),
			zap.Error(err),
		)
		return Result{Error: err.Error()}
	}

	res := Result{
		Success:      true,
		Count:        count,
		HasMore:      len(page.Records) == im.batchSize,
		NextOffset:   offset + len(page.Records),
		TotalRecords: page.Total,
	}
	im.log.Info("Batch imported",
		zap.Int("offset", offset),
		zap.Int("count", res.Count),
		zap.Bool("has_more", res.HasMore),
		zap.Duration("took", time.Since(start)),
	)
	return res
}
