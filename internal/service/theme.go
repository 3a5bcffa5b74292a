package service

import (
	"context"
	"errors"

	"github.com/BuzzLyutic/activity-dashboard/internal/model"
	"github.com/BuzzLyutic/activity-dashboard/internal/storage"
)

// ThemeService stores the light/dark preference.
type ThemeService struct {
	store storage.Storage
}

func NewThemeService(store storage.Storage) *ThemeService {
	return &ThemeService{store: store}
}

func (s *ThemeService) Current(ctx context.Context) (model.Theme, error) {
	raw, err := s.store.Get(ctx, storage.ThemeKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return model.ThemeLight, nil
	}
	if err != nil {
		return model.ThemeLight, err
	}
	if model.Theme(raw) == model.ThemeDark {
		return model.ThemeDark, nil
	}
	return model.ThemeLight, nil
}

func (s *ThemeService) Toggle(ctx context.Context) (model.Theme, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return current, err
	}
	next := current.Toggled()
	if err := s.store.Set(ctx, storage.ThemeKey, string(next)); err != nil {
		return current, err
	}
	return next, nil
}
