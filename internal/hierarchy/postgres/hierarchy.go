package postgres

import (
	"time"

	"github.com/lifegate/church-mgmt/internal/hierarchy"
	"gorm.io/gorm"
)

// LevelRepository implements hierarchy.Repository using GORM
type LevelRepository struct {
	db *gorm.DB
}

func NewLevelRepository(db *gorm.DB) hierarchy.Repository {
	return &LevelRepository{db: db}
}

func (r *LevelRepository) GetByCode(headChurchCode, code string) (*hierarchy.Level, error) {
	var level hierarchy.Level
	err := r.db.Where("head_church_code = ? AND code = ?", headChurchCode, code).First(&level).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, hierarchy.ErrLevelNotFound(code)
		}
		return nil, err
	}
	return &level, nil
}

func (r *LevelRepository) List(headChurchCode string, activeOnly bool) ([]*hierarchy.Level, error) {
	var levels []*hierarchy.Level
	q := r.db.Where("head_church_code = ?", headChurchCode).Order("level_no ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&levels).Error
	return levels, err
}

func (r *LevelRepository) Deepest(headChurchCode string) (*hierarchy.Level, error) {
	var level hierarchy.Level
	err := r.db.Where("head_church_code = ? AND is_active = ?", headChurchCode, true).
		Order("level_no DESC").
		First(&level).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, hierarchy.ErrLevelNotFound(headChurchCode)
		}
		return nil, err
	}
	return &level, nil
}

func (r *LevelRepository) SetActive(headChurchCode, code string, active bool, modifiedBy string) error {
	return r.db.Model(&hierarchy.Level{}).
		Where("head_church_code = ? AND code = ?", headChurchCode, code).
		Updates(map[string]interface{}{
			"is_active":   active,
			"modified_by": modifiedBy,
			"updated_at":  time.Now(),
		}).Error
}
