package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lifegate/church-mgmt/internal/access"
	"github.com/lifegate/church-mgmt/internal/auth"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetCredentials(email string) (*auth.Credentials, error) {
	var creds auth.Credentials
	query := `SELECT id, usercode, head_church_code, password_hash, is_active
	          FROM users WHERE email = ?`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&creds.UserID, &creds.Usercode, &creds.HeadChurchCode, &creds.PasswordHash, &creds.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	return &creds, nil
}

func (r *Repository) GetUserByUsercode(usercode, headChurchCode string) (*auth.User, error) {
	var user auth.User
	query := `SELECT id, usercode, email, name, head_church_code, is_active
	          FROM users WHERE usercode = ? AND head_church_code = ?`

	row := r.db.Raw(query, usercode, headChurchCode).Row()
	if err := row.Scan(&user.ID, &user.Usercode, &user.Email, &user.Name, &user.HeadChurchCode, &user.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// GetGrants returns the user's grants within their head church. The join on
// users keeps grants of deactivated accounts out of every session.
func (r *Repository) GetGrants(usercode, headChurchCode string) ([]access.Grant, error) {
	var grants []access.Grant
	err := r.db.
		Joins("JOIN users u ON u.usercode = access_grants.usercode AND u.head_church_code = access_grants.head_church_code").
		Where("access_grants.usercode = ? AND access_grants.head_church_code = ? AND u.is_active = ?",
			usercode, headChurchCode, true).
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}
