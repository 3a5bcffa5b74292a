package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/activity-dashboard/internal/clock"
	"github.com/BuzzLyutic/activity-dashboard/internal/model"
	"github.com/BuzzLyutic/activity-dashboard/internal/repo"
	"github.com/BuzzLyutic/activity-dashboard/internal/view"
)

var (
	ErrValidation = errors.New("validation error")
)

const MinTitleLength = 3

// MutationRecorder receives one event per successful record mutation.
type MutationRecorder interface {
	RecordMutation(action string)
	SetRecordCount(n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordMutation(string) {}
func (nopRecorder) SetRecordCount(int)    {}

// RecordService implements the dashboard operations. Every mutation is a
// full read-modify-write of the collection.
type RecordService struct {
	repo    repo.RecordRepository
	clock   clock.Clock
	logger  *zap.Logger
	metrics MutationRecorder
}

func NewRecordService(repo repo.RecordRepository, clk clock.Clock, logger *zap.Logger, metrics MutationRecorder) *RecordService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &RecordService{repo: repo, clock: clk, logger: logger, metrics: metrics}
}

func (s *RecordService) Create(ctx context.Context, title, idempKey string) (model.Record, error) {
	title = strings.TrimSpace(title)
	if err := validateTitle(title); err != nil {
		return model.Record{}, err
	}

	if idempKey != "" { // тот же ключ - та же запись
		if existingID, err := s.repo.GetIdempotencyKey(ctx, idempKey); err == nil {
			if rec, err := s.Get(ctx, existingID); err == nil && rec.Title == title {
				return rec, nil
			}
		}
	}

	records, err := s.repo.Load(ctx)
	if err != nil {
		return model.Record{}, err
	}

	rec := model.Record{
		ID:        nextID(records),
		Title:     title,
		Status:    model.StatusPending,
		UpdatedAt: s.clock.Now(),
	}
	records = append(records, rec)

	if err := s.repo.Save(ctx, records); err != nil {
		return model.Record{}, err
	}

	// Запись уже сохранена, ошибку ключа только логируем
	if idempKey != "" {
		if err := s.repo.SaveIdempotencyKey(ctx, idempKey, rec.ID); err != nil {
			s.logger.Warn("failed to save idempotency key", zap.String("key", idempKey), zap.Int64("id", rec.ID), zap.Error(err))
		}
	}

	s.metrics.RecordMutation("create")
	s.metrics.SetRecordCount(len(records))
	return rec, nil
}

func (s *RecordService) Get(ctx context.Context, id int64) (model.Record, error) {
	records, err := s.repo.Load(ctx)
	if err != nil {
		return model.Record{}, err
	}
	idx := indexOf(records, id)
	if idx < 0 {
		return model.Record{}, repo.ErrNotFound
	}
	return records[idx], nil
}

func (s *RecordService) Toggle(ctx context.Context, id int64) (model.Record, error) {
	records, err := s.repo.Load(ctx)
	if err != nil {
		return model.Record{}, err
	}
	idx := indexOf(records, id)
	if idx < 0 {
		return model.Record{}, repo.ErrNotFound
	}

	records[idx].Status = records[idx].Status.Toggled()
	records[idx].UpdatedAt = later(records[idx].UpdatedAt, s.clock.Now())

	if err := s.repo.Save(ctx, records); err != nil {
		return model.Record{}, err
	}
	s.metrics.RecordMutation("toggle")
	return records[idx], nil
}

func (s *RecordService) Delete(ctx context.Context, id int64) error {
	records, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(records, id)
	if idx < 0 {
		return repo.ErrNotFound
	}

	kept := make([]model.Record, 0, len(records)-1)
	kept = append(kept, records[:idx]...)
	kept = append(kept, records[idx+1:]...)

	if err := s.repo.Save(ctx, kept); err != nil {
		return err
	}
	if err := s.repo.ForgetIdempotencyKey(ctx, id); err != nil {
		s.logger.Warn("failed to release idempotency key", zap.Int64("id", id), zap.Error(err))
	}
	s.metrics.RecordMutation("delete")
	s.metrics.SetRecordCount(len(kept))
	return nil
}

// List returns the visible rows for filter together with KPIs over the whole collection.
func (s *RecordService) List(ctx context.Context, filter model.RecordFilter) ([]model.Record, model.Stats, error) {
	records, err := s.repo.Load(ctx)
	if err != nil {
		return nil, model.Stats{}, err
	}
	return view.Apply(records, filter), view.ComputeStats(records), nil
}

func (s *RecordService) Stats(ctx context.Context) (model.Stats, error) {
	records, err := s.repo.Load(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	return view.ComputeStats(records), nil
}

// Seed fills an empty store with the demo records.
func (s *RecordService) Seed(ctx context.Context) (bool, error) {
	return s.repo.SeedIfEmpty(ctx, s.clock.Now())
}

func validateTitle(title string) error {
	if utf8.RuneCountInString(title) < MinTitleLength {
		return ErrValidation
	}
	return nil
}

// later returns now, or prev plus one millisecond when now would not be
// strictly after prev once stored with millisecond precision.
func later(prev, now time.Time) time.Time {
	if now.UnixMilli() > prev.UnixMilli() {
		return now
	}
	return time.UnixMilli(prev.UnixMilli() + 1).In(now.Location())
}

func nextID(records []model.Record) int64 {
	var maxID int64
	for _, r := range records {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	return maxID + 1
}

func indexOf(records []model.Record, id int64) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
