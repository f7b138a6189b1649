// Package services отдаёт глобальные настройки сайта через короткоживущий кэш,
// чтобы страницы не опрашивали хранилище каждая по отдельности.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/models"
)

const settingsKey = "settings"

// Repository описывает хранилище настроек.
type Repository interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	UpdateSettings(ctx context.Context, settings models.Settings) error
}

// Cache описывает JSON-кэш.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// SettingsService читает и изменяет настройки сайта.
type SettingsService struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewSettingsService создает новый экземпляр SettingsService. cache может быть nil.
func NewSettingsService(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) *SettingsService {
	return &SettingsService{repo: repo, cache: cache, ttl: ttl, log: log}
}

// Get возвращает настройки, при попадании в кэш без запроса к хранилищу.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	const op = "services.settings.Get"
	log := s.log.With(slog.String("op", op))

	if s.cache != nil {
		var cached models.Settings
		found, err := s.cache.Get(ctx, settingsKey, &cached)
		if err != nil {
			log.Warn("failed to read settings from cache", sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, settingsKey, settings, s.ttl); err != nil {
			log.Warn("failed to cache settings", sl.Err(err))
		}
	}
	return settings, nil
}

// Update сохраняет настройки и сбрасывает кэш.
func (s *SettingsService) Update(ctx context.Context, settings models.Settings) error {
	const op = "services.settings.Update"
	if err := s.repo.UpdateSettings(ctx, settings); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, settingsKey); err != nil {
			s.log.Warn("failed to invalidate settings cache", slog.String("op", op), sl.Err(err))
		}
	}
	return nil
}
