package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/activity-dashboard/internal/model"
	"github.com/BuzzLyutic/activity-dashboard/internal/storage"
)

func setupRepo(t *testing.T) (*RecordRepo, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	return NewRecordRepo(store, zap.NewNop()), store
}

func TestRecordRepo_LoadEmpty(t *testing.T) {
	r, _ := setupRepo(t)

	records, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestRecordRepo_LoadMalformed(t *testing.T) {
	r, store := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, storage.ItemsKey, "{not json"))

	records, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordRepo_SaveLoad(t *testing.T) {
	r, store := setupRepo(t)
	ctx := context.Background()
	now := time.UnixMilli(1700000000000)

	in := []model.Record{
		{ID: 7, Title: "Primeiro", Status: model.StatusPending, UpdatedAt: now},
		{ID: 2, Title: "Segundo", Status: model.StatusDone, UpdatedAt: now.Add(-time.Minute)},
	}
	require.NoError(t, r.Save(ctx, in))

	raw, err := store.Get(ctx, storage.ItemsKey)
	require.NoError(t, err)
	assert.Contains(t, raw, `"updatedAt":1700000000000`)

	out, err := r.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(7), out[0].ID)
	assert.True(t, now.Equal(out[0].UpdatedAt))
}

func TestRecordRepo_SeedIfEmpty(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	seeded, err := r.SeedIfEmpty(ctx, now)
	require.NoError(t, err)
	assert.True(t, seeded)

	records, err := r.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "Organizar checklist", records[3].Title)
	assert.Equal(t, model.StatusDone, records[3].Status)
	assert.True(t, now.Add(-600*time.Minute).Equal(records[3].UpdatedAt))

	seeded, err = r.SeedIfEmpty(ctx, now)
	require.NoError(t, err)
	assert.False(t, seeded)
}

func TestRecordRepo_SeedSkipsEmptiedCollection(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Save(ctx, nil))

	seeded, err := r.SeedIfEmpty(ctx, time.Now())
	require.NoError(t, err)
	assert.False(t, seeded)
}

func TestRecordRepo_IdempotencyKey(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	_, err := r.GetIdempotencyKey(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.SaveIdempotencyKey(ctx, "abc", 42))
	id, err := r.GetIdempotencyKey(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestRecordRepo_ForgetIdempotencyKey(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.ForgetIdempotencyKey(ctx, 7))

	require.NoError(t, r.SaveIdempotencyKey(ctx, "abc", 7))
	require.NoError(t, r.SaveIdempotencyKey(ctx, "other", 8))
	require.NoError(t, r.ForgetIdempotencyKey(ctx, 7))

	_, err := r.GetIdempotencyKey(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)

	id, err := r.GetIdempotencyKey(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)
}
