package repositories

import (
	"context"

	"github.com/brightstage/dmxcore/internal/database/models"
	"gorm.io/gorm"
)

// SceneBoardRepository handles scene board and button data access.
type SceneBoardRepository struct {
	db *gorm.DB
}

// NewSceneBoardRepository creates a new SceneBoardRepository.
func NewSceneBoardRepository(db *gorm.DB) *SceneBoardRepository {
	return &SceneBoardRepository{db: db}
}

// FindAll returns every scene board with its buttons.
func (r *SceneBoardRepository) FindAll(ctx context.Context) ([]models.SceneBoard, error) {
	var boards []models.SceneBoard
	result := r.db.WithContext(ctx).
		Preload("Buttons", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Order("created_at ASC").
		Find(&boards)
	return boards, result.Error
}

// FindByID returns a single scene board with its buttons.
func (r *SceneBoardRepository) FindByID(ctx context.Context, id string) (*models.SceneBoard, error) {
	var board models.SceneBoard
	result := r.db.WithContext(ctx).
		Preload("Buttons", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		First(&board, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &board, nil
}

// CreateWithButtons creates a board and its buttons in a single
// transaction, assigning IDs to whichever rows don't already have one.
func (r *SceneBoardRepository) CreateWithButtons(ctx context.Context, board *models.SceneBoard) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if board.ID == "" {
			board.ID = newID()
		}
		for i := range board.Buttons {
			if board.Buttons[i].ID == "" {
				board.Buttons[i].ID = newID()
			}
			board.Buttons[i].BoardID = board.ID
		}
		return tx.Create(board).Error
	})
}

// ReplaceButtons deletes a board's existing buttons and inserts a new
// set, in a transaction — used when the board layout is edited.
func (r *SceneBoardRepository) ReplaceButtons(ctx context.Context, board *models.SceneBoard) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.SceneBoardButton{}, "board_id = ?", board.ID).Error; err != nil {
			return err
		}
		for i := range board.Buttons {
			if board.Buttons[i].ID == "" {
				board.Buttons[i].ID = newID()
			}
			board.Buttons[i].BoardID = board.ID
		}
		if len(board.Buttons) > 0 {
			if err := tx.Create(&board.Buttons).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateFields updates a board's own columns (name) without touching its
// buttons.
func (r *SceneBoardRepository) UpdateFields(ctx context.Context, board *models.SceneBoard) error {
	return r.db.WithContext(ctx).
		Model(&models.SceneBoard{}).
		Where("id = ?", board.ID).
		Updates(map[string]interface{}{
			"name": board.Name,
		}).Error
}

// Delete removes a board and its buttons.
func (r *SceneBoardRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.SceneBoardButton{}, "board_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.SceneBoard{}, "id = ?", id).Error
	})
}
