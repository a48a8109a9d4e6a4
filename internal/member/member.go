package member

import (
	"fmt"
	"time"

	"github.com/lifegate/church-mgmt/internal"
)

// Member is a person registered at a branch church. Only churches at the
// deepest configured level hold members.
type Member struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	Code           string     `json:"code" gorm:"column:code;not null"`
	FirstName      string     `json:"first_name" gorm:"column:first_name;not null"`
	MiddleName     *string    `json:"middle_name,omitempty" gorm:"column:middle_name"`
	LastName       string     `json:"last_name" gorm:"column:last_name;not null"`
	FamilyName     string     `json:"family_name" gorm:"column:family_name"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty" gorm:"column:date_of_birth"`
	Gender         string     `json:"gender" gorm:"column:gender"`
	MaritalStatus  string     `json:"marital_status" gorm:"column:marital_status"`
	Occupation     *string    `json:"occupation,omitempty" gorm:"column:occupation"`
	HomeAddress    *string    `json:"home_address,omitempty" gorm:"column:home_address"`
	ContactNo      string     `json:"contact_no" gorm:"column:contact_no"`
	ContactEmail   string     `json:"contact_email" gorm:"column:contact_email"`
	BranchCode     string     `json:"branch_code" gorm:"column:branch_code;not null"`
	JoinDate       time.Time  `json:"join_date" gorm:"column:join_date"`
	ExitDate       *time.Time `json:"exit_date,omitempty" gorm:"column:exit_date"`
	HeadChurchCode string     `json:"head_church_code" gorm:"column:head_church_code;not null"`
	IsActive       bool       `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedBy      string     `json:"created_by,omitempty" gorm:"column:created_by"`
	ModifiedBy     string     `json:"modified_by,omitempty" gorm:"column:modified_by"`
	CreatedAt      time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Member) TableName() string {
	return "members"
}

// FullName joins the name parts for display and error messages.
func (m *Member) FullName() string {
	if m.MiddleName != nil && *m.MiddleName != "" {
		return fmt.Sprintf("%s %s %s", m.FirstName, *m.MiddleName, m.LastName)
	}
	return fmt.Sprintf("%s %s", m.FirstName, m.LastName)
}

func ErrMemberNotFound(code, headChurchCode string) *internal.AppError {
	return internal.NewNotFoundError(
		fmt.Sprintf("Member with code: '%s' not found in Head Church: %s", code, headChurchCode),
		internal.ErrCodeMemberNotFound,
	)
}

func ErrNotABranch(label string) *internal.AppError {
	return internal.NewInvalidStateError(
		fmt.Sprintf("Only branches can have members. Church: '%s' is not a branch", label),
		internal.ErrCodeNotABranch,
	)
}
