package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunBatch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, newTestDB(t))
	im := New(newFakeSource(1200), store, 500, zap.NewNop())

	res := im.RunBatch(ctx, 0)
	assert.Equal(t, Result{Success: true, Count: 500, HasMore: true, NextOffset: 500, TotalRecords: 1200}, res)

	res = im.RunBatch(ctx, 1000)
	assert.Equal(t, Result{Success: true, Count: 200, HasMore: false, NextOffset: 1200, TotalRecords: 1200}, res)

	res = im.RunBatch(ctx, 1200)
	assert.True(t, res.Success)
	assert.Zero(t, res.Count)
	assert.False(t, res.HasMore)
}

func TestRunBatch_ReimportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, newTestDB(t))
	im := New(newFakeSource(300), store, 500, zap.NewNop())

	require.True(t, im.RunBatch(ctx, 0).Success)
	first, err := store.Count(ctx)
	require.NoError(t, err)

	require.True(t, im.RunBatch(ctx, 0).Success)
	second, err := store.Count(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(300), first)
	assert.Equal(t, first, second)
}

func TestRunBatch_Failures(t *testing.T) {
	ctx := context.Background()

	src := newFakeSource(100)
	src.failAt = 0
	res := New(src, newTestStore(t, newTestDB(t)), 500, zap.NewNop()).RunBatch(ctx, 0)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unavailable")

	res = New(newFakeSource(100), failingStore{}, 500, zap.NewNop()).RunBatch(ctx, 0)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "connection refused")
}
