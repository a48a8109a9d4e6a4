package user

import (
	"time"

	"github.com/lifegate/church-mgmt/internal/access"
)

// User represents the internal user model
type User struct {
	ID             int64          `json:"id" gorm:"primaryKey"`
	Usercode       string         `json:"usercode" gorm:"column:usercode;not null"`
	Email          string         `json:"email" gorm:"column:email;not null"`
	Name           string         `json:"name" gorm:"column:name"`
	PasswordHash   string         `json:"-" gorm:"column:password_hash"` // Never expose password hash
	HeadChurchCode string         `json:"head_church_code" gorm:"column:head_church_code;not null"`
	ChurchCode     string         `json:"church_code,omitempty" gorm:"column:church_code"`
	IsActive       bool           `json:"is_active" gorm:"column:is_active;default:true"`
	Grants         []access.Grant `json:"grants,omitempty" gorm:"-"`
	CreatedAt      time.Time      `json:"created_at" gorm:"column:created_at"`
	UpdatedAt      time.Time      `json:"updated_at" gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}
