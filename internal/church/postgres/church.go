package postgres

import (
	"time"

	"github.com/lifegate/church-mgmt/internal/church"
	"gorm.io/gorm"
)

// ChurchRepository implements the church.Repository interface using GORM
type ChurchRepository struct {
	db *gorm.DB
}

func NewChurchRepository(db *gorm.DB) church.Repository {
	return &ChurchRepository{db: db}
}

func (r *ChurchRepository) Create(ch *church.Church) error {
	return r.db.Create(ch).Error
}

func (r *ChurchRepository) GetByCode(headChurchCode, code string) (*church.Church, error) {
	var ch church.Church
	err := r.db.Where("head_church_code = ? AND code = ?", headChurchCode, code).First(&ch).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, church.ErrChurchNotFound(code, headChurchCode)
		}
		return nil, err
	}
	return &ch, nil
}

func (r *ChurchRepository) List(headChurchCode, status string) ([]*church.Church, error) {
	var churches []*church.Church
	q := r.db.Where("head_church_code = ?", headChurchCode).Order("code ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&churches).Error
	return churches, err
}

func (r *ChurchRepository) ListByLevel(headChurchCode, levelCode, status string) ([]*church.Church, error) {
	var churches []*church.Church
	q := r.db.Where("head_church_code = ? AND level_code = ?", headChurchCode, levelCode).Order("code ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&churches).Error
	return churches, err
}

func (r *ChurchRepository) Update(ch *church.Church) error {
	ch.UpdatedAt = time.Now()
	return r.db.Save(ch).Error
}

func (r *ChurchRepository) SetStatus(headChurchCode, code, status string, isActive bool, statusBy string) error {
	now := time.Now()
	return r.db.Model(&church.Church{}).
		Where("head_church_code = ? AND code = ?", headChurchCode, code).
		Updates(map[string]interface{}{
			"status":      status,
			"is_active":   isActive,
			"status_by":   statusBy,
			"status_date": now,
			"modified_by": statusBy,
			"updated_at":  now,
		}).Error
}

// DeactivateWithLeadClose deactivates the church and force-ends its open lead
// mapping in one transaction, so a crash cannot leave the mapping dangling.
func (r *ChurchRepository) DeactivateWithLeadClose(headChurchCode, code, actor string) error {
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&church.Church{}).
			Where("head_church_code = ? AND code = ?", headChurchCode, code).
			Updates(map[string]interface{}{
				"status":      church.StatusInactive,
				"is_active":   false,
				"status_by":   actor,
				"status_date": now,
				"modified_by": actor,
				"updated_at":  now,
			}).Error
		if err != nil {
			return err
		}

		return tx.Table("church_leads").
			Where("head_church_code = ? AND church_code = ? AND end_date IS NULL", headChurchCode, code).
			Updates(map[string]interface{}{
				"end_date":    now,
				"is_active":   false,
				"status":      "INA",
				"status_by":   actor,
				"status_date": now,
				"modified_by": actor,
				"updated_at":  now,
			}).Error
	})
}

func (r *ChurchRepository) CodeExists(headChurchCode, code string) (bool, error) {
	var count int64
	err := r.db.Model(&church.Church{}).
		Where("head_church_code = ? AND code = ?", headChurchCode, code).
		Count(&count).Error
	return count > 0, err
}

func (r *ChurchRepository) NameExists(headChurchCode, name string) (bool, error) {
	var count int64
	err := r.db.Model(&church.Church{}).
		Where("head_church_code = ? AND LOWER(name) = LOWER(?)", headChurchCode, name).
		Count(&count).Error
	return count > 0, err
}
