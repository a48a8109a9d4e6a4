package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/lifegate/church-mgmt/internal/access"
	"github.com/lifegate/church-mgmt/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByUsercode(usercode, headChurchCode string) (*user.User, error) {
	var u user.User
	err := r.db.
		Where("usercode = ? AND head_church_code = ?", usercode, headChurchCode).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetGrants(usercode, headChurchCode string) ([]access.Grant, error) {
	var grants []access.Grant
	err := r.db.
		Where("usercode = ? AND head_church_code = ?", usercode, headChurchCode).
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}
