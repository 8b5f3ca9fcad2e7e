package property

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultChunkSize is how many records go into one upsert statement.
const DefaultChunkSize = 100

// GormStore keeps properties in the hosted relational database.
type GormStore struct {
	db         *gorm.DB
	chunkSize  int
	maxResults int
}

func NewGormStore(db *gorm.DB, chunkSize, maxResults int) *GormStore {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &GormStore{db: db, chunkSize: chunkSize, maxResults: maxResults}
}

// Migrate creates or updates the properties table.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&Property{})
}

func (s *GormStore) Name() string { return "hosted" }

func (s *GormStore) Search(ctx context.Context, f Filter) ([]Property, error) {
	var props []Property
	err := s.db.WithContext(ctx).
		Model(&Property{}).
		Scopes(f.Scope).
		Order("saledate DESC NULLS LAST").
		Order("parid").
		Limit(f.limit(s.maxResults)).
		Find(&props).Error
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", ErrDatabase, err)
	}
	return props, nil
}

func (s *GormStore) Get(ctx context.Context, parID string) (*Property, error) {
	var p Property
	err := s.db.WithContext(ctx).First(&p, "parid = ?", parID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrDatabase, parID, err)
	}
	return &p, nil
}

// Upsert writes props in chunks, overwriting existing rows with the same
// parcel ID. It stops at the first failing chunk and returns the number of
// records written before it.
func (s *GormStore) Upsert(ctx context.Context, props []Property) (int, error) {
	props = dedupe(props)
	written := 0
	for i := 0; i < len(props); i += s.chunkSize {
		end := min(i+s.chunkSize, len(props))
		chunk := props[i:end]

		err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "parid"}},
				UpdateAll: true,
			}).
			Create(&chunk).Error
		if err != nil {
			return written, fmt.Errorf("%w: upsert records %d-%d: %w", ErrDatabase, i, end-1, err)
		}
		written += len(chunk)
	}
	return written, nil
}

func (s *GormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Property{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrDatabase, err)
	}
	return n, nil
}

func (s *GormStore) Municipalities(ctx context.Context) ([]string, error) {
	vals, err := s.distinct(ctx, "munidesc")
	if err != nil {
		return nil, err
	}
	return optionList(AllMunicipalities, vals), nil
}

func (s *GormStore) PropertyTypes(ctx context.Context) ([]string, error) {
	vals, err := s.distinct(ctx, "usedesc")
	if err != nil {
		return nil, err
	}
	return optionList(AllPropertyTypes, vals), nil
}

func (s *GormStore) distinct(ctx context.Context, column string) ([]string, error) {
	var vals []string
	err := s.db.WithContext(ctx).
		Model(&Property{}).
		Where(column + " IS NOT NULL").
		Distinct(column).
		Order(column).
		Pluck(column, &vals).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrDatabase, column, err)
	}
	return vals, nil
}

func (s *GormStore) Clear(ctx context.Context) error {
	return ErrClearUnsupported
}
