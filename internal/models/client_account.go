package models

import "time"

// ClientAccount persists one configured Telegram identity so clients added
// through the API survive a restart.
type ClientAccount struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID string `gorm:"size:64;not null;uniqueIndex" json:"client_id"`
	Kind     string `gorm:"size:8;not null;default:user" json:"kind"`
	Phone    string `gorm:"size:32" json:"phone"`
	Token    string `gorm:"size:128" json:"token"`
	APIID    int    `json:"api_id"`
	APIHash  string `gorm:"size:64" json:"api_hash"`
	AdminID  int64  `json:"admin_id"`
	// Whether the supervisor should start this client at boot. No column
	// default so an explicit false survives the upsert.
	AutoStart bool `json:"auto_start"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
