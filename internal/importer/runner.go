package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxMessages bounds the log kept on a run row.
const maxMessages = 50

var (
	ErrRunInProgress = errors.New("an import is already running for this store")
	ErrRunNotFound   = errors.New("import run not found")
	ErrUnknownStore  = errors.New("unknown store")
)

// StartOptions configures a background run.
type StartOptions struct {
	Offset int `json:"offset"`
	// FullRefresh clears the store before the first batch.
	FullRefresh bool `json:"fullRefresh"`
}

// Runner starts populate runs in the background and records them in
// import_runs. At most one run per store is active at a time.
type Runner struct {
	db         *gorm.DB
	populators map[string]*Populator
	log        *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running map[string]uuid.UUID
}

func NewRunner(db *gorm.DB, log *zap.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		db:         db,
		populators: map[string]*Populator{},
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
		running:    map[string]uuid.UUID{},
	}
}

func (r *Runner) Migrate() error {
	return r.db.AutoMigrate(&Run{})
}

// Register makes a store available to Start under its name.
func (r *Runner) Register(p *Populator) {
	r.populators[p.Importer().Store().Name()] = p
}

// RunBatch imports one batch into store in the caller's goroutine. It is
// refused while a background run is active for the same store, and holds
// the store for its duration so no run starts underneath it.
func (r *Runner) RunBatch(ctx context.Context, store string, offset int) (Result, error) {
	p, ok := r.populators[store]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownStore, store)
	}

	r.mu.Lock()
	if _, busy := r.running[store]; busy {
		r.mu.Unlock()
		return Result{}, ErrRunInProgress
	}
	r.running[store] = uuid.Nil
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.running, store)
		r.mu.Unlock()
	}()
	return p.Importer().RunBatch(ctx, offset), nil
}

// Start records a new run for store and executes it in the background.
func (r *Runner) Start(ctx context.Context, store string, opts StartOptions) (*Run, error) {
	p, ok := r.populators[store]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, store)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.running[store]; busy {
		return nil, ErrRunInProgress
	}

	if opts.FullRefresh {
		if err := p.Importer().Store().Clear(ctx); err != nil {
			return nil, err
		}
	}

	run := &Run{
		ID:          uuid.New(),
		Store:       store,
		Status:      StatusRunning,
		StartOffset: opts.Offset,
		NextOffset:  opts.Offset,
		Messages:    []string{fmt.Sprintf("Starting import at offset %d", opts.Offset)},
		StartedAt:   time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("record import run: %w", err)
	}

	r.running[store] = run.ID
	r.wg.Add(1)
	go r.execute(p, *run)

	return run, nil
}

func (r *Runner) execute(p *Populator, run Run) {
	defer r.wg.Done()
	defer func() {
		r.mu.Lock()
		delete(r.running, run.Store)
		r.mu.Unlock()
	}()

	log := r.log.With(zap.String("run_id", run.ID.String()), zap.String("store", run.Store))
	log.Info("Import run started", zap.Int("offset", run.StartOffset))

	out, err := p.Run(r.ctx, run.StartOffset, func(pr Progress) {
		run.Batches = pr.Batch
		run.Total = pr.Total
		run.NextOffset = pr.NextOffset
		run.TotalRecords = pr.TotalRecords
		run.appendMessage(fmt.Sprintf("Batch %d: imported %d records at offset %d (total %d)",
			pr.Batch, pr.Count, pr.Offset, pr.Total))
		r.save(&run, log)
	})

	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Batches = out.Batches
	run.Total = out.Total
	run.NextOffset = out.NextOffset
	switch {
	case err == nil:
		run.Status = StatusComplete
		run.appendMessage(fmt.Sprintf("Imported %d records", out.Total))
	case errors.Is(err, ErrMaxBatches):
		run.Status = StatusComplete
		run.appendMessage(fmt.Sprintf("Stopped after %d batches; resume from offset %d", out.Batches, out.NextOffset))
	default:
		run.Status = StatusError
		run.appendMessage(fmt.Sprintf("Error: %v; resume from offset %d", err, out.NextOffset))
	}
	r.save(&run, log)

	log.Info("Import run finished",
		zap.String("status", run.Status),
		zap.Int("total", run.Total),
		zap.Error(err),
	)
}

func (run *Run) appendMessage(msg string) {
	run.Messages = append(run.Messages, msg)
	if n := len(run.Messages); n > maxMessages {
		run.Messages = append([]string(nil), run.Messages[n-maxMessages:]...)
	}
}

func (r *Runner) save(run *Run, log *zap.Logger) {
	if err := r.db.Save(run).Error; err != nil {
		log.Error("Failed to record import progress", zap.Error(err))
	}
}

// Get returns one run.
func (r *Runner) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	var run Run
	err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	run.fillPercent()
	return &run, nil
}

// List returns the most recent runs, newest first.
func (r *Runner) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []Run
	if err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	for i := range runs {
		runs[i].fillPercent()
	}
	return runs, nil
}

// Running reports whether store has an active run.
func (r *Runner) Running(store string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.running[store]
	return ok
}

// Wait blocks until every active run has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Shutdown cancels active runs and waits for them to record their state.
func (r *Runner) Shutdown() {
	r.cancel()
	r.wg.Wait()
}
