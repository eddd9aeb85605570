package repositories

import (
	"context"

	"github.com/brightstage/dmxcore/internal/database/models"
	"gorm.io/gorm"
)

// GroupRepository handles fader group data access.
type GroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// FindAll returns every group with its members.
func (r *GroupRepository) FindAll(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	result := r.db.WithContext(ctx).
		Preload("Members").
		Order("created_at ASC").
		Find(&groups)
	return groups, result.Error
}

// FindByID returns a group by ID with its members.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	result := r.db.WithContext(ctx).Preload("Members").First(&group, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &group, nil
}

// CreateWithMembers creates a group and its members in a single
// transaction.
func (r *GroupRepository) CreateWithMembers(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if group.ID == "" {
			group.ID = newID()
		}
		for i := range group.Members {
			if group.Members[i].ID == "" {
				group.Members[i].ID = newID()
			}
			group.Members[i].GroupID = group.ID
		}
		return tx.Create(group).Error
	})
}

// UpdateFields updates a group's own columns (name, mode, enabled,
// master, physical master, color) without touching its members.
func (r *GroupRepository) UpdateFields(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).
		Model(&models.Group{}).
		Where("id = ?", group.ID).
		Updates(map[string]interface{}{
			"name":                      group.Name,
			"mode":                      group.Mode,
			"enabled":                   group.Enabled,
			"master":                    group.Master,
			"physical_master_universe": group.PhysicalMasterUniv,
			"physical_master_channel":  group.PhysicalMasterChan,
			"color_h":                   group.ColorH,
			"color_s":                   group.ColorS,
			"color_l":                   group.ColorL,
		}).Error
}

// ReplaceMembers deletes a group's existing members and inserts a new
// set, in a transaction.
func (r *GroupRepository) ReplaceMembers(ctx context.Context, groupID string, members []models.GroupMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.GroupMember{}, "group_id = ?", groupID).Error; err != nil {
			return err
		}
		if len(members) == 0 {
			return nil
		}
		for i := range members {
			if members[i].ID == "" {
				members[i].ID = newID()
			}
			members[i].GroupID = groupID
		}
		return tx.Create(&members).Error
	})
}

// Delete removes a group and its members.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.GroupMember{}, "group_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, "id = ?", id).Error
	})
}
