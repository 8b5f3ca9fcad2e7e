package property

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LocalStore keeps the whole dataset in memory and mirrors it, serialized
// as one JSON array, to a single KV key. Writes merge into the snapshot as
// currently persisted, so a server and the import command can share a key;
// reads serve memory until Reload.
type LocalStore struct {
	kv         KV
	key        string
	maxResults int
	log        *zap.Logger

	mu    sync.RWMutex
	props []Property
	index map[string]int
}

// NewLocalStore creates the store and loads whatever snapshot the key holds.
func NewLocalStore(ctx context.Context, kv KV, key string, maxResults int, log *zap.Logger) *LocalStore {
	s := &LocalStore{
		kv:         kv,
		key:        key,
		maxResults: maxResults,
		log:        log,
		index:      map[string]int{},
	}
	if err := s.Reload(ctx); err != nil {
		log.Warn("Failed to load local snapshot", zap.String("key", key), zap.Error(err))
	}
	return s
}

func (s *LocalStore) Name() string { return "local" }

// Reload replaces the in-memory list with the persisted snapshot. A missing
// key is an empty store; an unreadable one leaves the store empty.
func (s *LocalStore) Reload(ctx context.Context) error {
	props, err := s.load(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(props)
	return err
}

var errDecodeSnapshot = errors.New("decode snapshot")

// load reads the persisted snapshot. A missing key is an empty list.
func (s *LocalStore) load(ctx context.Context) ([]Property, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var props []Property
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, fmt.Errorf("%w: %w", errDecodeSnapshot, err)
	}
	return dedupe(props), nil
}

func (s *LocalStore) setLocked(props []Property) {
	s.props = props
	s.index = make(map[string]int, len(props))
	for i, p := range props {
		s.index[p.ParID] = i
	}
}

func (s *LocalStore) Search(_ context.Context, f Filter) ([]Property, error) {
	s.mu.RLock()
	out := make([]Property, 0)
	for _, p := range s.props {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()

	sortBySaleDate(out)
	if n := f.limit(s.maxResults); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *LocalStore) Get(_ context.Context, parID string) (*Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[parID]
	if !ok {
		return nil, ErrNotFound
	}
	p := s.props[i]
	return &p, nil
}

// Upsert re-reads the snapshot, merges props into it by parcel ID and
// rewrites it. An undecodable snapshot is replaced by the in-memory list.
func (s *LocalStore) Upsert(ctx context.Context, props []Property) (int, error) {
	props = dedupe(props)
	if len(props) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	switch {
	case errors.Is(err, errDecodeSnapshot):
		s.log.Warn("Overwriting unreadable local snapshot", zap.String("key", s.key), zap.Error(err))
	case err != nil:
		return 0, fmt.Errorf("%w: %w", ErrDatabase, err)
	default:
		s.setLocked(current)
	}

	now := time.Now().UTC().Round(0)
	for _, p := range props {
		p.UpdatedAt = now
		if i, ok := s.index[p.ParID]; ok {
			p.CreatedAt = s.props[i].CreatedAt
			s.props[i] = p
			continue
		}
		p.CreatedAt = now
		s.index[p.ParID] = len(s.props)
		s.props = append(s.props, p)
	}

	raw, err := json.Marshal(s.props)
	if err != nil {
		return 0, fmt.Errorf("%w: encode snapshot: %w", ErrDatabase, err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return 0, fmt.Errorf("%w: save snapshot: %w", ErrDatabase, err)
	}
	return len(props), nil
}

func (s *LocalStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.props)), nil
}

func (s *LocalStore) Municipalities(_ context.Context) ([]string, error) {
	return optionList(AllMunicipalities, s.column(func(p Property) *string { return p.MuniDesc })), nil
}

func (s *LocalStore) PropertyTypes(_ context.Context) ([]string, error) {
	return optionList(AllPropertyTypes, s.column(func(p Property) *string { return p.UseDesc })), nil
}

func (s *LocalStore) column(get func(Property) *string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var vals []string
	for _, p := range s.props {
		if v := get(p); v != nil {
			vals = append(vals, *v)
		}
	}
	return vals
}

// Clear empties the in-memory list and deletes the persisted key.
func (s *LocalStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.props = nil
	s.index = map[string]int{}
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("%w: delete snapshot: %w", ErrDatabase, err)
	}
	return nil
}
