package repo

import (
	"context"
	"time"

	"github.com/BuzzLyutic/activity-dashboard/internal/model"
)

// RecordRepository defines access to the dashboard records.
// Load and Save always read and write the whole collection.
type RecordRepository interface {
	Load(ctx context.Context) ([]model.Record, error)
	Save(ctx context.Context, records []model.Record) error
	SeedIfEmpty(ctx context.Context, now time.Time) (bool, error)
	SaveIdempotencyKey(ctx context.Context, key string, resourceID int64) error
	GetIdempotencyKey(ctx context.Context, key string) (int64, error)
	ForgetIdempotencyKey(ctx context.Context, resourceID int64) error
}
