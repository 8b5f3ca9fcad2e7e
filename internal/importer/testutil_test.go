package importer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alleghenyre/propsearch/internal/property"
	"github.com/alleghenyre/propsearch/internal/wprdc"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeSource serves a fixed dataset of n records, optionally failing at one
// offset. With latency set every fetch takes that long.
type fakeSource struct {
	mu      sync.Mutex
	n       int
	failAt  int
	calls   []int
	blockCh chan struct{}
	latency time.Duration
	spans   []fetchSpan
}

type fetchSpan struct {
	start, end time.Time
}

func newFakeSource(n int) *fakeSource {
	return &fakeSource{n: n, failAt: -1}
}

func (f *fakeSource) FetchPage(ctx context.Context, offset, limit int) (wprdc.Page, error) {
	start := time.Now()
	f.mu.Lock()
	f.calls = append(f.calls, offset)
	block := f.blockCh
	latency := f.latency
	f.mu.Unlock()

	if latency > 0 {
		time.Sleep(latency)
		f.mu.Lock()
		f.spans = append(f.spans, fetchSpan{start: start, end: time.Now()})
		f.mu.Unlock()
	}

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return wprdc.Page{}, ctx.Err()
		}
	}
	if offset == f.failAt {
		return wprdc.Page{}, fmt.Errorf("%w: status 502", wprdc.ErrSourceUnavailable)
	}

	page := wprdc.Page{Total: f.n}
	for i := offset; i < f.n && i < offset+limit; i++ {
		page.Records = append(page.Records, wprdc.Record{
			"PARID":     fmt.Sprintf("%016d", i),
			"SALEPRICE": "100000",
			"MUNIDESC":  "Sewickley",
		})
	}
	return page, nil
}

func (f *fakeSource) offsets() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.calls...)
}

func (f *fakeSource) fetchSpans() []fetchSpan {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fetchSpan(nil), f.spans...)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func newTestStore(t *testing.T, db *gorm.DB) *property.GormStore {
	t.Helper()
	s := property.NewGormStore(db, property.DefaultChunkSize, property.MaxResults)
	require.NoError(t, s.Migrate())
	return s
}

// failingStore rejects every write.
type failingStore struct {
	property.Store
}

func (failingStore) Name() string { return "hosted" }

func (failingStore) Upsert(context.Context, []property.Property) (int, error) {
	return 0, fmt.Errorf("%w: connection refused", property.ErrDatabase)
}

