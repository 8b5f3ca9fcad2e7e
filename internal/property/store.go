package property

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("property not found")
	ErrDatabase         = errors.New("database operation failed")
	ErrClearUnsupported = errors.New("clearing all data is only supported in local mode")
)

// Store is a property data source. The hosted database and the local
// snapshot both implement it.
type Store interface {
	// Name identifies the store in logs and import runs ("hosted" or "local").
	Name() string

	// Search returns the records matching f, newest sales first.
	Search(ctx context.Context, f Filter) ([]Property, error)

	// Get returns one record by parcel ID.
	Get(ctx context.Context, parID string) (*Property, error)

	// Upsert inserts or overwrites records keyed on parcel ID and returns the
	// number of records written.
	Upsert(ctx context.Context, props []Property) (int, error)

	Count(ctx context.Context) (int64, error)

	// Municipalities and PropertyTypes list selector options, "all" first.
	Municipalities(ctx context.Context) ([]string, error)
	PropertyTypes(ctx context.Context) ([]string, error)

	// Clear removes every record.
	Clear(ctx context.Context) error
}

// dedupe keeps the last record for each parcel ID, preserving first-seen
// order. Records without a parcel ID are dropped.
func dedupe(props []Property) []Property {
	index := make(map[string]int, len(props))
	out := make([]Property, 0, len(props))
	for _, p := range props {
		if p.ParID == "" {
			continue
		}
		if i, ok := index[p.ParID]; ok {
			out[i] = p
			continue
		}
		index[p.ParID] = len(out)
		out = append(out, p)
	}
	return out
}
