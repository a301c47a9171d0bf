package repositories

import (
	"context"
	"time"

	"pharmacy_pos_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

type SettingRepository interface {
	GetSettings(ctx context.Context) ([]models.ApplicationSetting, error)
	GetSettingByKey(ctx context.Context, executor SQLExecutor, key string) (*models.ApplicationSetting, error)
	UpsertSetting(ctx context.Context, executor SQLExecutor, setting *models.ApplicationSetting) error
	DeleteSetting(ctx context.Context, executor SQLExecutor, key string) error
}

type settingRepository struct {
	db *sqlx.DB
}

func NewSettingRepository(db *sqlx.DB) SettingRepository {
	return &settingRepository{db: db}
}

const settingColumns = `id, setting_key, setting_value, description, created_at, updated_at`

func (r *settingRepository) GetSettings(ctx context.Context) ([]models.ApplicationSetting, error) {
	settings := []models.ApplicationSetting{}
	if err := r.db.SelectContext(ctx, &settings, `SELECT `+settingColumns+` FROM application_settings ORDER BY setting_key`); err != nil {
		return nil, wrapError(err, "listing application settings")
	}
	return settings, nil
}

func (r *settingRepository) GetSettingByKey(ctx context.Context, executor SQLExecutor, key string) (*models.ApplicationSetting, error) {
	s := &models.ApplicationSetting{}
	query := executor.Rebind(`SELECT ` + settingColumns + ` FROM application_settings WHERE setting_key = ?`)
	if err := executor.GetContext(ctx, s, query, key); err != nil {
		return nil, wrapError(err, "getting application setting")
	}
	return s, nil
}

// UpsertSetting creates a new setting or updates an existing one by key.
func (r *settingRepository) UpsertSetting(ctx context.Context, executor SQLExecutor, setting *models.ApplicationSetting) error {
	now := time.Now().UTC()
	query := executor.Rebind(`INSERT INTO application_settings (setting_key, setting_value, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (setting_key)
		DO UPDATE SET setting_value = excluded.setting_value,
			description = COALESCE(excluded.description, application_settings.description),
			updated_at = excluded.updated_at
		RETURNING ` + settingColumns)
	err := executor.QueryRowxContext(ctx, query, setting.SettingKey, setting.SettingValue, setting.Description, now, now).StructScan(setting)
	if err != nil {
		return wrapError(err, "upserting application setting")
	}
	return nil
}

func (r *settingRepository) DeleteSetting(ctx context.Context, executor SQLExecutor, key string) error {
	result, err := executor.ExecContext(ctx, executor.Rebind(`DELETE FROM application_settings WHERE setting_key = ?`), key)
	if err != nil {
		return wrapError(err, "deleting application setting")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
