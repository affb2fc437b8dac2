package models

import "time"

// BotSetting is a free-form key/value pair used for runtime toggles that do
// not warrant a schema change.
type BotSetting struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Key         string `gorm:"size:128;not null;uniqueIndex" json:"key"`
	Value       string `gorm:"size:1024" json:"value"`
	Description string `gorm:"size:256" json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
