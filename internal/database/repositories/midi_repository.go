package repositories

import (
	"context"

	"github.com/brightstage/dmxcore/internal/database/models"
	"gorm.io/gorm"
)

// MIDIRepository handles MIDI CC mapping and trigger data access
// (spec §6).
type MIDIRepository struct {
	db *gorm.DB
}

// NewMIDIRepository creates a new MIDIRepository.
func NewMIDIRepository(db *gorm.DB) *MIDIRepository {
	return &MIDIRepository{db: db}
}

// FindAllCCMappings returns every CC-to-channel mapping.
func (r *MIDIRepository) FindAllCCMappings(ctx context.Context) ([]models.MIDICCMapping, error) {
	var mappings []models.MIDICCMapping
	result := r.db.WithContext(ctx).Find(&mappings)
	return mappings, result.Error
}

// CreateCCMapping creates a new CC mapping.
func (r *MIDIRepository) CreateCCMapping(ctx context.Context, mapping *models.MIDICCMapping) error {
	if mapping.ID == "" {
		mapping.ID = newID()
	}
	return r.db.WithContext(ctx).Create(mapping).Error
}

// DeleteCCMapping removes a CC mapping by ID.
func (r *MIDIRepository) DeleteCCMapping(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.MIDICCMapping{}, "id = ?", id).Error
}

// FindAllTriggers returns every note trigger.
func (r *MIDIRepository) FindAllTriggers(ctx context.Context) ([]models.MIDITrigger, error) {
	var triggers []models.MIDITrigger
	result := r.db.WithContext(ctx).Find(&triggers)
	return triggers, result.Error
}

// CreateTrigger creates a new note trigger.
func (r *MIDIRepository) CreateTrigger(ctx context.Context, trigger *models.MIDITrigger) error {
	if trigger.ID == "" {
		trigger.ID = newID()
	}
	return r.db.WithContext(ctx).Create(trigger).Error
}

// DeleteTrigger removes a note trigger by ID.
func (r *MIDIRepository) DeleteTrigger(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.MIDITrigger{}, "id = ?", id).Error
}
