package access

import (
	"context"
	"time"
)

// Access type codes carried by a grant.
const (
	AccessCreate  = "CR"
	AccessView    = "VW"
	AccessEdit    = "ED"
	AccessApprove = "AR"
	AccessRead    = "RD"
	AccessUpdate  = "UP"
)

// Role codes.
const (
	RoleAdmin      = "ADM"
	RoleSuperAdmin = "SAD"
)

// Module and submodule codes. ALLM/ALLS are wildcards granted to users whose
// access spans every functional area.
const (
	ModuleAll        = "ALLM"
	ModuleHierarchy  = "HRCH"
	ModuleMembership = "MBSH"
	SubModuleAll     = "ALLS"
)

// Grant is a single access-control record binding a role, hierarchy level,
// module, submodule and access type to a user within a head church. Grants are
// loaded per request for the caller's currently selected level; the loading
// query only returns grants of active users.
type Grant struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	Usercode       string    `json:"usercode" gorm:"column:usercode;not null"`
	HeadChurchCode string    `json:"head_church_code" gorm:"column:head_church_code;not null"`
	ChurchCode     string    `json:"church_code" gorm:"column:church_code"`
	RoleCode       string    `json:"role_code" gorm:"column:role_code;not null"`
	LevelCode      string    `json:"level_code" gorm:"column:level_code;not null"`
	LevelNo        int       `json:"level_no" gorm:"column:level_no;not null"`
	ModuleCode     string    `json:"module_code" gorm:"column:module_code;not null"`
	SubModuleCode  string    `json:"submodule_code" gorm:"column:submodule_code"`
	AccessType     string    `json:"access_type" gorm:"column:access_type;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Grant) TableName() string {
	return "access_grants"
}

// Session is the authenticated caller: identity, tenant scope and the grants
// resolved for the currently selected hierarchy level.
type Session struct {
	UserID         int64   `json:"user_id"`
	Usercode       string  `json:"usercode"`
	HeadChurchCode string  `json:"head_church_code"`
	Grants         []Grant `json:"grants,omitempty"`
}

// Authorize checks the session's grants against the supplied constraints.
func (s *Session) Authorize(c Constraints) error {
	return Authorize(s.Grants, c)
}

type sessionCtxKey struct{}

func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, sess)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionCtxKey{}).(*Session)
	return sess, ok && sess != nil
}
