package repositories

import (
	"context"

	"github.com/brightstage/dmxcore/internal/database/models"
	"gorm.io/gorm"
)

// MappingRepository handles channel mapping configuration data access.
// Only one ChannelMappingConfig is ever current; reconfiguring replaces
// it and its entries wholesale (spec §4.4).
type MappingRepository struct {
	db *gorm.DB
}

// NewMappingRepository creates a new MappingRepository.
func NewMappingRepository(db *gorm.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// FindCurrent returns the most recently created mapping configuration
// with its entries, or nil if none has ever been saved.
func (r *MappingRepository) FindCurrent(ctx context.Context) (*models.ChannelMappingConfig, error) {
	var cfg models.ChannelMappingConfig
	result := r.db.WithContext(ctx).
		Preload("Entries").
		Order("created_at DESC").
		First(&cfg)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &cfg, nil
}

// Replace deletes every existing mapping configuration and entry and
// inserts cfg (with entries) as the new current configuration, in a
// single transaction.
func (r *MappingRepository) Replace(ctx context.Context, cfg *models.ChannelMappingConfig) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ChannelMappingEntry{}, "1 = 1").Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ChannelMappingConfig{}, "1 = 1").Error; err != nil {
			return err
		}

		if cfg.ID == "" {
			cfg.ID = newID()
		}
		for i := range cfg.Entries {
			if cfg.Entries[i].ID == "" {
				cfg.Entries[i].ID = newID()
			}
			cfg.Entries[i].ConfigID = cfg.ID
		}
		return tx.Create(cfg).Error
	})
}
