package property

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testKey = "realEstateProperties"

func newFileKV(t *testing.T) (*FileKV, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	kv, err := NewFileKV(dir)
	require.NoError(t, err)
	return kv, dir
}

func newRedisKV(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisKV(client), mr
}

func TestKV(t *testing.T) {
	fileKV, _ := newFileKV(t)
	redisKV, _ := newRedisKV(t)

	for name, kv := range map[string]KV{"file": fileKV, "redis": redisKV} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := kv.Get(ctx, testKey)
			assert.ErrorIs(t, err, ErrKeyNotFound)

			require.NoError(t, kv.Set(ctx, testKey, []byte(`[1]`)))
			require.NoError(t, kv.Set(ctx, testKey, []byte(`[1,2]`)))
			got, err := kv.Get(ctx, testKey)
			require.NoError(t, err)
			assert.Equal(t, `[1,2]`, string(got))

			require.NoError(t, kv.Delete(ctx, testKey))
			require.NoError(t, kv.Delete(ctx, testKey))
			_, err = kv.Get(ctx, testKey)
			assert.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

func TestLocalStore_PersistsAcrossReload(t *testing.T) {
	ctx := context.Background()
	kv, _ := newFileKV(t)

	s := NewLocalStore(ctx, kv, testKey, MaxResults, zap.NewNop())
	n, err := s.Upsert(ctx, fixtures())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	reopened := NewLocalStore(ctx, kv, testKey, MaxResults, zap.NewNop())
	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	p, err := reopened.Get(ctx, "0001A00001000000")
	require.NoError(t, err)
	assert.Equal(t, "Smith John", Str(p.Grantor))
}

func TestLocalStore_UpsertMergesByParcelID(t *testing.T) {
	ctx := context.Background()
	kv, _ := newRedisKV(t)
	s := NewLocalStore(ctx, kv, testKey, MaxResults, zap.NewNop())

	_, err := s.Upsert(ctx, fixtures())
	require.NoError(t, err)
	before, err := s.Get(ctx, "0001A00002000000")
	require.NoError(t, err)

	changed := fixtures()[1]
	changed.SalePrice = 999
	_, err = s.Upsert(ctx, []Property{changed})
	require.NoError(t, err)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	after, err := s.Get(ctx, "0001A00002000000")
	require.NoError(t, err)
	assert.Equal(t, 999.0, after.SalePrice)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
}

func TestLocalStore_SearchAndOptions(t *testing.T) {
	ctx := context.Background()
	kv, _ := newFileKV(t)
	s := NewLocalStore(ctx, kv, testKey, 2, zap.NewNop())
	_, err := s.Upsert(ctx, fixtures())
	require.NoError(t, err)

	got, err := s.Search(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"0001A00003000000", "0001A00002000000"}, parIDs(got))

	got, err = s.Search(ctx, Filter{MinPrice: 1_000_000_000})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	munis, err := s.Municipalities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{AllMunicipalities, "Bethel Park", "Mt. Lebanon", "Sewickley"}, munis)

	types, err := s.PropertyTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, AllPropertyTypes, types[0])
	assert.Len(t, types, 4)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_ClearRemovesMemoryAndKey(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		kv, dir := newFileKV(t)
		s := NewLocalStore(ctx, kv, testKey, MaxResults, zap.NewNop())
		_, err := s.Upsert(ctx, fixtures())
		require.NoError(t, err)
		require.FileExists(t, filepath.Join(dir, testKey+".json"))

		require.NoError(t, s.Clear(ctx))

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
		_, err = os.Stat(filepath.Join(dir, testKey+".json"))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("redis", func(t *testing.T) {
		kv, mr := newRedisKV(t)
		s := NewLocalStore(ctx, kv, testKey, MaxResults, zap.NewNop())
		_, err := s.Upsert(ctx, fixtures())
		require.NoError(t, err)
		assert.True(t, mr.Exists(testKey))

		require.NoError(t, s.Clear(ctx))

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.False(t, mr.Exists(testKey))
	})
}

func TestLocalStore_SharedKeyKeepsOtherWriters(t *testing.T) {
	ctx := context.Background()
	kv, _ := newFileKV(t)
	server := NewLocalStore(ctx, kv, testKey, MaxResults, zap.NewNop())
	importer := NewLocalStore(ctx, kv, testKey, MaxResults, zap.NewNop())

	_, err := importer.Upsert(ctx, fixtures()[:3])
	require.NoError(t, err)

	count, err := server.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "reads serve memory until reload")

	_, err = server.Upsert(ctx, fixtures()[3:])
	require.NoError(t, err)
	count, err = server.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	reopened := NewLocalStore(ctx, kv, testKey, MaxResults, zap.NewNop())
	count, err = reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	require.NoError(t, importer.Reload(ctx))
	count, err = importer.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestLocalStore_UpsertAfterOtherWriterCleared(t *testing.T) {
	ctx := context.Background()
	kv, _ := newRedisKV(t)
	a := NewLocalStore(ctx, kv, testKey, MaxResults, zap.NewNop())
	b := NewLocalStore(ctx, kv, testKey, MaxResults, zap.NewNop())

	_, err := a.Upsert(ctx, fixtures())
	require.NoError(t, err)
	require.NoError(t, b.Clear(ctx))

	_, err = a.Upsert(ctx, fixtures()[:1])
	require.NoError(t, err)
	count, err := a.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLocalStore_CorruptSnapshotLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	kv, _ := newFileKV(t)
	require.NoError(t, kv.Set(ctx, testKey, []byte("{not json")))

	s := NewLocalStore(ctx, kv, testKey, MaxResults, zap.NewNop())
	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.Error(t, s.Reload(ctx))

	_, err = s.Upsert(ctx, fixtures()[:1])
	require.NoError(t, err)
	require.NoError(t, s.Reload(ctx))
	count, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDedupe(t *testing.T) {
	a1 := Property{ParID: "A", SalePrice: 1}
	b := Property{ParID: "B"}
	a2 := Property{ParID: "A", SalePrice: 2}

	got := dedupe([]Property{a1, b, {ParID: ""}, a2})
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].ParID)
	assert.Equal(t, 2.0, got[0].SalePrice)
	assert.Equal(t, "B", got[1].ParID)
}
