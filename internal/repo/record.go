package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/activity-dashboard/internal/model"
	"github.com/BuzzLyutic/activity-dashboard/internal/storage"
)

var (
	ErrNotFound = errors.New("not found")
)

// SeedRecords returns the demo activities written into an empty store.
func SeedRecords(now time.Time) []model.Record {
	return []model.Record{
		{ID: 1, Title: "Revisar pendências", Status: model.StatusPending, UpdatedAt: now.Add(-40 * time.Minute)},
		{ID: 2, Title: "Conferir relatórios", Status: model.StatusDone, UpdatedAt: now.Add(-180 * time.Minute)},
		{ID: 3, Title: "Validar acessos", Status: model.StatusPending, UpdatedAt: now.Add(-15 * time.Minute)},
		{ID: 4, Title: "Organizar checklist", Status: model.StatusDone, UpdatedAt: now.Add(-600 * time.Minute)},
	}
}

// RecordRepo keeps the records as one JSON array under storage.ItemsKey.
type RecordRepo struct {
	store  storage.Storage
	logger *zap.Logger
}

func NewRecordRepo(store storage.Storage, logger *zap.Logger) *RecordRepo {
	return &RecordRepo{
		store:  store,
		logger: logger,
	}
}

// Load returns an empty slice both for a missing key and for malformed JSON.
func (r *RecordRepo) Load(ctx context.Context) ([]model.Record, error) {
	raw, err := r.store.Get(ctx, storage.ItemsKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []model.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	var records []model.Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		r.logger.Warn("stored records are malformed, treating as empty", zap.Error(err))
		return []model.Record{}, nil
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}

func (r *RecordRepo) Save(ctx context.Context, records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := r.store.Set(ctx, storage.ItemsKey, string(data)); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}

// SeedIfEmpty writes the demo records only when nothing was ever stored.
// An explicitly emptied collection ("[]") is left alone.
func (r *RecordRepo) SeedIfEmpty(ctx context.Context, now time.Time) (bool, error) {
	_, err := r.store.Get(ctx, storage.ItemsKey)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrKeyNotFound) {
		return false, fmt.Errorf("check records: %w", err)
	}

	if err := r.Save(ctx, SeedRecords(now)); err != nil {
		return false, err
	}
	r.logger.Info("seeded demo records")
	return true, nil
}

func (r *RecordRepo) SaveIdempotencyKey(ctx context.Context, key string, resourceID int64) error {
	id := strconv.FormatInt(resourceID, 10)
	if err := r.store.Set(ctx, storage.IdempotencyPrefix+key, id); err != nil {
		return fmt.Errorf("save idempotency key: %w", err)
	}
	if err := r.store.Set(ctx, storage.IdempotencyOwnerPrefix+id, key); err != nil {
		return fmt.Errorf("save idempotency owner: %w", err)
	}
	return nil
}

// ForgetIdempotencyKey drops the key that created resourceID. Ids are reused
// after a delete, so a stale key would replay someone else's record.
func (r *RecordRepo) ForgetIdempotencyKey(ctx context.Context, resourceID int64) error {
	ownerKey := storage.IdempotencyOwnerPrefix + strconv.FormatInt(resourceID, 10)
	key, err := r.store.Get(ctx, ownerKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read idempotency owner: %w", err)
	}
	if err := r.store.Remove(ctx, storage.IdempotencyPrefix+key); err != nil {
		return fmt.Errorf("remove idempotency key: %w", err)
	}
	return r.store.Remove(ctx, ownerKey)
}

func (r *RecordRepo) GetIdempotencyKey(ctx context.Context, key string) (int64, error) {
	raw, err := r.store.Get(ctx, storage.IdempotencyPrefix+key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrNotFound
	}
	return id, nil
}
