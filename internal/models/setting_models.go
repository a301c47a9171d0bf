package models

import "time"

// ApplicationSetting represents a key-value pair for application configuration
type ApplicationSetting struct {
	ID           int64     `json:"id" db:"id"`
	SettingKey   string    `json:"settingKey" db:"setting_key"`
	SettingValue *string   `json:"settingValue,omitempty" db:"setting_value"`
	Description  *string   `json:"description,omitempty" db:"description"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type UpsertSettingPayload struct {
	SettingValue *string `json:"settingValue" binding:"required"`
	Description  *string `json:"description,omitempty"`
}
