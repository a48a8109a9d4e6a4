package churchlead

import (
	"fmt"
	"time"

	"github.com/lifegate/church-mgmt/internal"
)

// Lead mapping statuses.
const (
	StatusAwaiting = "AWT"
	StatusApproved = "APR"
	StatusInactive = "INA"
)

// DefaultMaxTraversalDepth caps the recursive descendant lookup. The service
// additionally keeps a visited set, so the cap only bounds pathological data.
const DefaultMaxTraversalDepth = 10

// ChurchLead is one time-versioned reporting-line edge: which lead church a
// church reports to, from StartDate until EndDate. The open edge of a church
// is the single row with a null EndDate.
type ChurchLead struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	ChurchCode     string     `json:"church_code" gorm:"column:church_code;not null"`
	LevelCode      string     `json:"level_code" gorm:"column:level_code"`
	LeadChurchCode string     `json:"lead_church_code" gorm:"column:lead_church_code;not null"`
	LeadLevelCode  string     `json:"lead_level_code" gorm:"column:lead_level_code"`
	HeadChurchCode string     `json:"head_church_code" gorm:"column:head_church_code;not null"`
	StartDate      time.Time  `json:"start_date" gorm:"column:start_date;not null"`
	EndDate        *time.Time `json:"end_date,omitempty" gorm:"column:end_date"`
	Status         string     `json:"status" gorm:"column:status;default:AWT"`
	IsActive       bool       `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedBy      string     `json:"created_by,omitempty" gorm:"column:created_by"`
	ModifiedBy     string     `json:"modified_by,omitempty" gorm:"column:modified_by"`
	StatusBy       string     `json:"status_by,omitempty" gorm:"column:status_by"`
	StatusDate     *time.Time `json:"status_date,omitempty" gorm:"column:status_date"`
	CreatedAt      time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"column:updated_at"`

	ChurchName     string `json:"church_name,omitempty" gorm:"->"`
	LeadChurchName string `json:"lead_church_name,omitempty" gorm:"->"`
}

func (ChurchLead) TableName() string {
	return "church_leads"
}

// IsOpen reports whether this is the church's current (unclosed) edge.
func (cl *ChurchLead) IsOpen() bool {
	return cl.EndDate == nil && cl.IsActive
}

// Descendant is one church reached by following reporting lines away from a
// root lead church, with the hop count it was found at.
type Descendant struct {
	LeadChurchCode string `json:"lead_church_code"`
	ChurchCode     string `json:"church_code"`
	ChurchName     string `json:"church_name"`
	LevelCode      string `json:"level_code"`
	Status         string `json:"status"`
	Depth          int    `json:"depth"`
}

func ErrNoCurrentLead(label string) *internal.AppError {
	return internal.NewNotFoundError(
		fmt.Sprintf("Church: '%s' does not have a current Lead Church", label),
		internal.ErrCodeLeadNotFound,
	)
}

func ErrAlreadyMapped(churchLabel, leadLabel string) *internal.AppError {
	return internal.NewInvalidStateError(
		fmt.Sprintf("Church: '%s' is currently mapped to Lead Church: '%s'", churchLabel, leadLabel),
		internal.ErrCodeAlreadyMapped,
	)
}

func ErrMappingNotActive() *internal.AppError {
	return internal.NewInvalidStateError(
		"This Church Lead mapping is no longer active",
		internal.ErrCodeMappingNotActive,
	)
}

func ErrMappingAlreadyApproved() *internal.AppError {
	return internal.NewInvalidStateError(
		"Church Lead mapping is already approved",
		internal.ErrCodeMappingAlreadyApproved,
	)
}

func ErrChurchIsBranch() *internal.AppError {
	return internal.NewInvalidStateError(
		"This church is a branch and does not have any branches",
		internal.ErrCodeChurchIsBranch,
	)
}
