package hierarchy

import (
	"fmt"
	"time"

	"github.com/lifegate/church-mgmt/internal"
)

// Level is one rung of a head church's configured hierarchy. Level numbers
// are assigned top-down: the head church itself carries the lowest number.
type Level struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	HeadChurchCode string    `json:"head_church_code" gorm:"column:head_church_code;not null"`
	Code           string    `json:"code" gorm:"column:code;not null"`
	Name           string    `json:"name" gorm:"column:name;not null"`
	LevelNo        int       `json:"level_no" gorm:"column:level_no;not null"`
	IsActive       bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedBy      string    `json:"created_by,omitempty" gorm:"column:created_by"`
	ModifiedBy     string    `json:"modified_by,omitempty" gorm:"column:modified_by"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Level) TableName() string {
	return "hierarchy_levels"
}

func ErrLevelNotFound(code string) *internal.AppError {
	return internal.NewNotFoundError(
		fmt.Sprintf("Hierarchy level with code: '%s' not found", code),
		internal.ErrCodeLevelNotFound,
	)
}

func ErrLevelNotActive(name, code string) *internal.AppError {
	return internal.NewInvalidStateError(
		fmt.Sprintf("Hierarchy level: '%s (%s)' is not active", name, code),
		internal.ErrCodeLevelNotActive,
	)
}
