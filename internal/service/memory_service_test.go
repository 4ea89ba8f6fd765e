package service

import (
	"context"
	"testing"
	"time"

	"github.com/dushixiang/tally/internal/xe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryService(t *testing.T) *MemoryService {
	t.Helper()
	return NewMemoryService(newTestDB(t), newTestLogger())
}

func TestUpsertMemory_AppendSemantics(t *testing.T) {
	s := newMemoryService(t)
	ctx := context.Background()

	first, err := s.UpsertMemory(ctx, "btc_support", "60000", []string{"trading", "btc"})
	require.NoError(t, err)
	second, err := s.UpsertMemory(ctx, "btc_support", "58000", []string{"trading", "btc"})
	require.NoError(t, err)

	// 同 key 追加新版本而不是覆盖
	assert.NotEqual(t, first.ID, second.ID)
	memories, err := s.RecallByKey(ctx, "btc_support")
	require.NoError(t, err)
	require.Len(t, memories, 2)
	assert.Equal(t, "58000", memories[0].Value)
}

func TestUpsertMemory_Validation(t *testing.T) {
	s := newMemoryService(t)
	ctx := context.Background()

	_, err := s.UpsertMemory(ctx, "", "value", nil)
	assert.ErrorIs(t, err, xe.ErrInvalidParams)
	_, err = s.UpsertMemory(ctx, "key", "", nil)
	assert.ErrorIs(t, err, xe.ErrInvalidParams)

	// 无标签时落库为空数组
	memory, err := s.UpsertMemory(ctx, "key", "value", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(memory.Tags))
}

func TestQueryByTag(t *testing.T) {
	s := newMemoryService(t)
	ctx := context.Background()

	_, err := s.UpsertMemory(ctx, "btc_support", "60000", []string{"trading", "btc"})
	require.NoError(t, err)
	_, err = s.UpsertMemory(ctx, "run_style", "prefers limit orders", []string{"agent"})
	require.NoError(t, err)

	memories, err := s.QueryByTag(ctx, "btc")
	require.NoError(t, err)
	require.Len(t, memories, 1)
	assert.Equal(t, "btc_support", memories[0].Key)

	memories, err = s.QueryByTag(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, memories)

	_, err = s.QueryByTag(ctx, "")
	assert.ErrorIs(t, err, xe.ErrInvalidParams)
}

func TestTouch_RefreshesLastSeen(t *testing.T) {
	s := newMemoryService(t)
	ctx := context.Background()

	memory, err := s.UpsertMemory(ctx, "btc_support", "60000", []string{"btc"})
	require.NoError(t, err)
	before := memory.LastSeen

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, s.Touch(ctx, memory.ID))

	stored, err := s.MemoryRepo.FindById(ctx, memory.ID)
	require.NoError(t, err)
	assert.True(t, stored.LastSeen.After(before))

	assert.ErrorIs(t, s.Touch(ctx, 9999), xe.ErrNotFound)
}
