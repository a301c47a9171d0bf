package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pharmacy_pos_backend/internal/database"
	"pharmacy_pos_backend/internal/models"
	"pharmacy_pos_backend/internal/repositories"
	"pharmacy_pos_backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

type SettingService interface {
	GetSettings(ctx context.Context) ([]models.ApplicationSetting, error)
	GetSetting(ctx context.Context, key string) (*models.ApplicationSetting, error)
	UpsertSetting(ctx context.Context, key string, payload models.UpsertSettingPayload) (*models.ApplicationSetting, error)
	DeleteSetting(ctx context.Context, key string) error
}

type settingService struct {
	repo       repositories.SettingRepository
	lookupRepo repositories.LookupRepository
	db         *sqlx.DB
}

func NewSettingService(repo repositories.SettingRepository, lookupRepo repositories.LookupRepository, db *sqlx.DB) SettingService {
	return &settingService{repo: repo, lookupRepo: lookupRepo, db: db}
}

func (s *settingService) GetSettings(ctx context.Context) ([]models.ApplicationSetting, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

func (s *settingService) GetSetting(ctx context.Context, key string) (*models.ApplicationSetting, error) {
	setting, err := s.repo.GetSettingByKey(ctx, s.db, key)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return setting, nil
}

// UpsertSetting stores a setting. The checkout defaults must name an existing
// payment or receipt type so a sale never starts with a broken configuration.
func (s *settingService) UpsertSetting(ctx context.Context, key string, payload models.UpsertSettingPayload) (*models.ApplicationSetting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: setting key cannot be empty", ErrValidation)
	}
	if payload.SettingValue == nil {
		return nil, fmt.Errorf("%w: settingValue is required", ErrValidation)
	}
	value := *payload.SettingValue

	switch key {
	case database.SettingDefaultPaymentType:
		value = utils.NormalizeCode(value)
		pt, err := s.lookupRepo.GetPaymentTypeByCode(ctx, s.db, value)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: payment type %q does not exist", ErrValidation, value)
			}
			return nil, fmt.Errorf("failed to check payment type: %w", err)
		}
		if !pt.IsActive {
			return nil, fmt.Errorf("%w: payment type %s is disabled", ErrValidation, value)
		}
	case database.SettingDefaultReceiptType:
		value = utils.NormalizeCode(value)
		if _, err := s.lookupRepo.GetReceiptTypeByCode(ctx, s.db, value); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: receipt type %q does not exist", ErrValidation, value)
			}
			return nil, fmt.Errorf("failed to check receipt type: %w", err)
		}
	}

	setting := &models.ApplicationSetting{SettingKey: key, SettingValue: &value, Description: payload.Description}
	if err := s.repo.UpsertSetting(ctx, s.db, setting); err != nil {
		return nil, fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	utils.LogInfo("Setting updated", map[string]interface{}{"key": key, "value": value})
	return setting, nil
}

func (s *settingService) DeleteSetting(ctx context.Context, key string) error {
	if err := s.repo.DeleteSetting(ctx, s.db, key); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSettingNotFound
		}
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
