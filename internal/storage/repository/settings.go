package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/magabrotheeeer/club-checkout/internal/models"
)

// GetSettings возвращает глобальные настройки сайта.
func (s *Storage) GetSettings(ctx context.Context) (*models.Settings, error) {
	const op = "storage.GetSettings"
	var data []byte
	if err := s.DB.QueryRowContext(ctx, `SELECT data FROM settings WHERE id = 1`).Scan(&data); err != nil {
		return nil, notFound(op, err)
	}
	var settings models.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &settings, nil
}

// UpdateSettings сохраняет глобальные настройки сайта.
func (s *Storage) UpdateSettings(ctx context.Context, settings models.Settings) error {
	const op = "storage.UpdateSettings"
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	_, err = s.DB.ExecContext(ctx, `INSERT INTO settings (id, data, updated_at) VALUES (1, $1, now())
			  ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`, string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
