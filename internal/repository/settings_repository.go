package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jengzang/placevisit-backend-go/internal/models"
)

// SettingsRepository stores detection setting overrides as key/value rows.
// Keys are the JSON field names of models.DetectionSettings.
type SettingsRepository struct {
	db DBTX
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Load returns defaults with every stored override applied. Unknown keys are ignored.
func (r *SettingsRepository) Load(ctx context.Context, defaults models.DetectionSettings) (models.DetectionSettings, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM detection_settings`)
	if err != nil {
		return defaults, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	overrides := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return defaults, fmt.Errorf("failed to scan setting: %w", err)
		}
		overrides[key] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return defaults, fmt.Errorf("failed to iterate settings: %w", err)
	}
	if len(overrides) == 0 {
		return defaults, nil
	}

	raw, err := json.Marshal(overrides)
	if err != nil {
		return defaults, fmt.Errorf("failed to encode settings: %w", err)
	}
	settings := defaults
	if err := json.Unmarshal(raw, &settings); err != nil {
		return defaults, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

// Save stores every field of s as an override
func (r *SettingsRepository) Save(ctx context.Context, s models.DetectionSettings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	now := time.Now().UnixMilli()
	for key, value := range fields {
		_, err := r.db.ExecContext(ctx, `INSERT INTO detection_settings (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, string(value), now)
		if err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	return nil
}
