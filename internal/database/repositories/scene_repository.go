package repositories

import (
	"context"

	"github.com/brightstage/dmxcore/internal/database/models"
	"gorm.io/gorm"
)

// SceneRepository handles scene data access.
type SceneRepository struct {
	db *gorm.DB
}

// NewSceneRepository creates a new SceneRepository.
func NewSceneRepository(db *gorm.DB) *SceneRepository {
	return &SceneRepository{db: db}
}

// FindAll returns every scene ordered for display, without their
// captured values.
func (r *SceneRepository) FindAll(ctx context.Context) ([]models.Scene, error) {
	var scenes []models.Scene
	result := r.db.WithContext(ctx).
		Order("sort_order ASC, created_at ASC").
		Find(&scenes)
	return scenes, result.Error
}

// FindByID returns a scene with its full captured state.
func (r *SceneRepository) FindByID(ctx context.Context, id string) (*models.Scene, error) {
	var scene models.Scene
	result := r.db.WithContext(ctx).
		Preload("ChannelValues").
		Preload("GroupValues").
		Preload("MasterValues").
		First(&scene, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &scene, nil
}

// CreateWithValues creates a scene and its captured channel/group/master
// values in a single transaction.
func (r *SceneRepository) CreateWithValues(ctx context.Context, scene *models.Scene) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if scene.ID == "" {
			scene.ID = newID()
		}
		for i := range scene.ChannelValues {
			if scene.ChannelValues[i].ID == "" {
				scene.ChannelValues[i].ID = newID()
			}
			scene.ChannelValues[i].SceneID = scene.ID
		}
		for i := range scene.GroupValues {
			if scene.GroupValues[i].ID == "" {
				scene.GroupValues[i].ID = newID()
			}
			scene.GroupValues[i].SceneID = scene.ID
		}
		for i := range scene.MasterValues {
			if scene.MasterValues[i].ID == "" {
				scene.MasterValues[i].ID = newID()
			}
			scene.MasterValues[i].SceneID = scene.ID
		}
		return tx.Create(scene).Error
	})
}

// UpdateFields updates a scene's own columns (name, description, sort
// order, default fade time) without touching its captured values.
func (r *SceneRepository) UpdateFields(ctx context.Context, scene *models.Scene) error {
	return r.db.WithContext(ctx).
		Model(&models.Scene{}).
		Where("id = ?", scene.ID).
		Updates(map[string]interface{}{
			"name":            scene.Name,
			"description":     scene.Description,
			"sort_order":      scene.SortOrder,
			"default_fade_ms": scene.DefaultFadeMS,
		}).Error
}

// ReplaceValues deletes a scene's existing captured values and inserts a
// new set, in a transaction — used when re-capturing over an existing
// scene.
func (r *SceneRepository) ReplaceValues(ctx context.Context, scene *models.Scene) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.SceneChannelValue{}, "scene_id = ?", scene.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.SceneGroupValue{}, "scene_id = ?", scene.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.SceneMasterValue{}, "scene_id = ?", scene.ID).Error; err != nil {
			return err
		}

		for i := range scene.ChannelValues {
			if scene.ChannelValues[i].ID == "" {
				scene.ChannelValues[i].ID = newID()
			}
			scene.ChannelValues[i].SceneID = scene.ID
		}
		if len(scene.ChannelValues) > 0 {
			if err := tx.Create(&scene.ChannelValues).Error; err != nil {
				return err
			}
		}

		for i := range scene.GroupValues {
			if scene.GroupValues[i].ID == "" {
				scene.GroupValues[i].ID = newID()
			}
			scene.GroupValues[i].SceneID = scene.ID
		}
		if len(scene.GroupValues) > 0 {
			if err := tx.Create(&scene.GroupValues).Error; err != nil {
				return err
			}
		}

		for i := range scene.MasterValues {
			if scene.MasterValues[i].ID == "" {
				scene.MasterValues[i].ID = newID()
			}
			scene.MasterValues[i].SceneID = scene.ID
		}
		if len(scene.MasterValues) > 0 {
			if err := tx.Create(&scene.MasterValues).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete removes a scene and its captured values.
func (r *SceneRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.SceneChannelValue{}, "scene_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.SceneGroupValue{}, "scene_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.SceneMasterValue{}, "scene_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Scene{}, "id = ?", id).Error
	})
}
