package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zulandar/semaphore/internal/models"
)

// SaveClient upserts a client account by its client ID.
func SaveClient(gdb *gorm.DB, acct *models.ClientAccount) error {
	if acct.ClientID == "" {
		return fmt.Errorf("store: client_id is required")
	}
	err := gdb.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "client_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"kind", "phone", "token", "api_id", "api_hash", "admin_id", "auto_start",
		}),
	}).Create(acct).Error
	if err != nil {
		return fmt.Errorf("store: save client %q: %w", acct.ClientID, err)
	}
	return nil
}

// ClientByID returns one persisted client account.
func ClientByID(gdb *gorm.DB, clientID string) (*models.ClientAccount, error) {
	var acct models.ClientAccount
	err := gdb.Where("client_id = ?", clientID).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("store: client %q: %w", clientID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: client %q: %w", clientID, err)
	}
	return &acct, nil
}

// AllClients returns every persisted client account.
func AllClients(gdb *gorm.DB) ([]models.ClientAccount, error) {
	var accts []models.ClientAccount
	if err := gdb.Order("client_id").Find(&accts).Error; err != nil {
		return nil, fmt.Errorf("store: all clients: %w", err)
	}
	return accts, nil
}

// DeleteClient removes a persisted client account.
func DeleteClient(gdb *gorm.DB, clientID string) error {
	res := gdb.Where("client_id = ?", clientID).Delete(&models.ClientAccount{})
	if res.Error != nil {
		return fmt.Errorf("store: delete client %q: %w", clientID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store: delete client %q: %w", clientID, ErrNotFound)
	}
	return nil
}
