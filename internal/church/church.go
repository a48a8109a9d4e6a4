package church

import (
	"fmt"
	"time"

	"github.com/lifegate/church-mgmt/internal"
)

// Church lifecycle statuses. A church is created awaiting and inactive, then
// activated, then approved. Deactivation also closes any open lead mapping.
const (
	StatusAwaiting = "AWT"
	StatusActive   = "ACT"
	StatusApproved = "APR"
	StatusInactive = "INA"
	StatusRejected = "REJ"
)

// Church is an organizational unit at some hierarchy level, scoped to a head
// church. Code is unique within the head church.
type Church struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	Code           string     `json:"code" gorm:"column:code;not null"`
	Name           string     `json:"name" gorm:"column:name;not null"`
	AltName        *string    `json:"alt_name,omitempty" gorm:"column:alt_name"`
	Address        *string    `json:"address,omitempty" gorm:"column:address"`
	ContactNo      *string    `json:"contact_no,omitempty" gorm:"column:contact_no"`
	ContactEmail   *string    `json:"contact_email,omitempty" gorm:"column:contact_email"`
	LevelCode      string     `json:"level_code" gorm:"column:level_code;not null"`
	HeadChurchCode string     `json:"head_church_code" gorm:"column:head_church_code;not null"`
	Status         string     `json:"status" gorm:"column:status;default:AWT"`
	IsActive       bool       `json:"is_active" gorm:"column:is_active;default:false"`
	CreatedBy      string     `json:"created_by,omitempty" gorm:"column:created_by"`
	ModifiedBy     string     `json:"modified_by,omitempty" gorm:"column:modified_by"`
	StatusBy       string     `json:"status_by,omitempty" gorm:"column:status_by"`
	StatusDate     *time.Time `json:"status_date,omitempty" gorm:"column:status_date"`
	CreatedAt      time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Church) TableName() string {
	return "churches"
}

// IsActiveAndApproved reports whether the church may participate in lead
// mappings and other downstream workflows.
func (c *Church) IsActiveAndApproved() bool {
	return c.IsActive && c.Status == StatusApproved
}

// Label is the human-facing identifier used in error messages.
func (c *Church) Label() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Code)
}

func ErrChurchNotFound(code, headChurchCode string) *internal.AppError {
	return internal.NewNotFoundError(
		fmt.Sprintf("Church with code: '%s' not found in Head Church: %s", code, headChurchCode),
		internal.ErrCodeChurchNotFound,
	)
}

func ErrChurchNotApproved(label string) *internal.AppError {
	return internal.NewInvalidStateError(
		fmt.Sprintf("Church: '%s' is not active or approved", label),
		internal.ErrCodeChurchNotApproved,
	)
}
