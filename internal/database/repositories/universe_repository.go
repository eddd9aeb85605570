package repositories

import (
	"context"

	"github.com/brightstage/dmxcore/internal/database/models"
	"gorm.io/gorm"
)

// UniverseRepository handles universe, output, and input descriptor data
// access.
type UniverseRepository struct {
	db *gorm.DB
}

// NewUniverseRepository creates a new UniverseRepository.
func NewUniverseRepository(db *gorm.DB) *UniverseRepository {
	return &UniverseRepository{db: db}
}

// FindAll returns every configured universe with its outputs and inputs.
func (r *UniverseRepository) FindAll(ctx context.Context) ([]models.Universe, error) {
	var universes []models.Universe
	result := r.db.WithContext(ctx).
		Preload("Outputs").
		Preload("Inputs").
		Order("id ASC").
		Find(&universes)
	return universes, result.Error
}

// FindByID returns a universe by ID with its outputs and inputs.
func (r *UniverseRepository) FindByID(ctx context.Context, id int) (*models.Universe, error) {
	var universe models.Universe
	result := r.db.WithContext(ctx).
		Preload("Outputs").
		Preload("Inputs").
		First(&universe, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &universe, nil
}

// Create creates a new universe.
func (r *UniverseRepository) Create(ctx context.Context, universe *models.Universe) error {
	return r.db.WithContext(ctx).Create(universe).Error
}

// Update updates an existing universe's own fields (not its outputs/inputs).
func (r *UniverseRepository) Update(ctx context.Context, universe *models.Universe) error {
	return r.db.WithContext(ctx).Save(universe).Error
}

// Delete removes a universe and its outputs and inputs.
func (r *UniverseRepository) Delete(ctx context.Context, id int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.OutputDescriptor{}, "universe_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.InputDescriptor{}, "universe_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Universe{}, "id = ?", id).Error
	})
}

// AddOutput attaches an output transport to a universe.
func (r *UniverseRepository) AddOutput(ctx context.Context, output *models.OutputDescriptor) error {
	if output.ID == "" {
		output.ID = newID()
	}
	return r.db.WithContext(ctx).Create(output).Error
}

// RemoveOutput detaches an output transport by ID.
func (r *UniverseRepository) RemoveOutput(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.OutputDescriptor{}, "id = ?", id).Error
}

// AddInput attaches an input transport to a universe.
func (r *UniverseRepository) AddInput(ctx context.Context, input *models.InputDescriptor) error {
	if input.ID == "" {
		input.ID = newID()
	}
	return r.db.WithContext(ctx).Create(input).Error
}

// UpdateInput updates an existing input descriptor (range, passthrough
// mode, merge policy, enabled state).
func (r *UniverseRepository) UpdateInput(ctx context.Context, input *models.InputDescriptor) error {
	return r.db.WithContext(ctx).Save(input).Error
}

// RemoveInput detaches an input transport by ID.
func (r *UniverseRepository) RemoveInput(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.InputDescriptor{}, "id = ?", id).Error
}
