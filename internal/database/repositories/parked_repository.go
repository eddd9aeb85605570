package repositories

import (
	"context"

	"github.com/brightstage/dmxcore/internal/database/models"
	"gorm.io/gorm"
)

// ParkedRepository handles parked-channel data access (spec §4.5.2).
type ParkedRepository struct {
	db *gorm.DB
}

// NewParkedRepository creates a new ParkedRepository.
func NewParkedRepository(db *gorm.DB) *ParkedRepository {
	return &ParkedRepository{db: db}
}

// FindAll returns every parked channel, for restoring park state on
// startup.
func (r *ParkedRepository) FindAll(ctx context.Context) ([]models.ParkedChannel, error) {
	var parked []models.ParkedChannel
	result := r.db.WithContext(ctx).Find(&parked)
	return parked, result.Error
}

// Upsert pins (universe, channel) to value, replacing any existing park
// on that slot.
func (r *ParkedRepository) Upsert(ctx context.Context, universe, channel, value int) error {
	var existing models.ParkedChannel
	result := r.db.WithContext(ctx).
		Where("universe = ? AND channel = ?", universe, channel).
		First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(&models.ParkedChannel{
			ID:       newID(),
			Universe: universe,
			Channel:  channel,
			Value:    value,
		}).Error
	} else if result.Error != nil {
		return result.Error
	}

	existing.Value = value
	return r.db.WithContext(ctx).Save(&existing).Error
}

// Delete unparks (universe, channel).
func (r *ParkedRepository) Delete(ctx context.Context, universe, channel int) error {
	return r.db.WithContext(ctx).
		Delete(&models.ParkedChannel{}, "universe = ? AND channel = ?", universe, channel).Error
}
