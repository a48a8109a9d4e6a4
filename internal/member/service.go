package member

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lifegate/church-mgmt/internal"
	"github.com/lifegate/church-mgmt/internal/access"
	"github.com/lifegate/church-mgmt/internal/church"
	"github.com/lifegate/church-mgmt/internal/hierarchy"
)

// Repository defines the data access methods for members.
type Repository interface {
	Create(m *Member) error
	GetByCode(headChurchCode, code string) (*Member, error)
	List(headChurchCode string, activeOnly bool) ([]*Member, error)
	ListByBranch(headChurchCode, branchCode string, activeOnly bool) ([]*Member, error)
	Update(m *Member) error
	SetActive(headChurchCode, code string, active bool, actor string) error
	ContactExists(headChurchCode, contactNo, contactEmail string) (bool, error)
}

// ChurchGetter fetches tenant-scoped churches; satisfied by church.Service.
type ChurchGetter interface {
	GetChurchByCode(sess *access.Session, code string) (*church.Church, error)
}

// LevelResolver resolves hierarchy levels; satisfied by hierarchy.Service.
type LevelResolver interface {
	ResolveLevel(headChurchCode, code string) (*hierarchy.Level, error)
	DeepestLevel(headChurchCode string) (*hierarchy.Level, error)
}

type Service struct {
	repo     Repository
	churches ChurchGetter
	levels   LevelResolver
	logger   *slog.Logger
}

func NewService(repo Repository, churches ChurchGetter, levels LevelResolver, logger *slog.Logger) *Service {
	return &Service{repo: repo, churches: churches, levels: levels, logger: logger}
}

// memberCode mints a unique member code within the head church.
func memberCode() string {
	return "MBR-" + strings.ToUpper(uuid.NewString()[:8])
}

// CreateMember registers a member at a branch. The target church must sit at
// the deepest configured level.
func (s *Service) CreateMember(sess *access.Session, dto CreateMemberDTO) (*Member, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	branch, err := s.churches.GetChurchByCode(sess, dto.BranchCode)
	if err != nil {
		return nil, err
	}

	branchLevel, err := s.levels.DeepestLevel(sess.HeadChurchCode)
	if err != nil {
		return nil, err
	}
	if branch.LevelCode != branchLevel.Code {
		return nil, ErrNotABranch(branch.Label())
	}

	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		ChurchCode:     branch.Code,
		RoleCodes:      []string{access.RoleAdmin, access.RoleSuperAdmin},
		LevelNo:        branchLevel.LevelNo - 1,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleMembership},
		AccessTypes:    []string{access.AccessCreate},
	}); err != nil {
		return nil, err
	}

	if exists, err := s.repo.ContactExists(sess.HeadChurchCode, dto.ContactNo, dto.ContactEmail); err != nil {
		return nil, err
	} else if exists {
		return nil, internal.NewConflictError(
			"A member with the same contact number or email already exists",
			internal.ErrCodeDuplicateEntry,
		)
	}

	now := time.Now()
	joinDate := now
	if dto.JoinDate != nil {
		joinDate = *dto.JoinDate
	}

	m := &Member{
		Code:           memberCode(),
		FirstName:      dto.FirstName,
		MiddleName:     dto.MiddleName,
		LastName:       dto.LastName,
		FamilyName:     dto.FamilyName,
		DateOfBirth:    dto.DateOfBirth,
		Gender:         dto.Gender,
		MaritalStatus:  dto.MaritalStatus,
		Occupation:     dto.Occupation,
		HomeAddress:    dto.HomeAddress,
		ContactNo:      dto.ContactNo,
		ContactEmail:   dto.ContactEmail,
		BranchCode:     branch.Code,
		JoinDate:       joinDate,
		HeadChurchCode: sess.HeadChurchCode,
		IsActive:       true,
		CreatedBy:      sess.Usercode,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(m); err != nil {
		s.logger.Error("failed to create member", "error", err, "branch_code", branch.Code)
		return nil, err
	}

	s.logger.Info("member created", "member_code", m.Code, "branch_code", branch.Code, "by", sess.Usercode)
	return m, nil
}

// GetMemberByCode fetches one member in the caller's head church.
func (s *Service) GetMemberByCode(sess *access.Session, code string) (*Member, error) {
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleMembership},
		AccessTypes:    []string{access.AccessView, access.AccessRead},
	}); err != nil {
		return nil, err
	}
	return s.repo.GetByCode(sess.HeadChurchCode, strings.ToUpper(code))
}

// GetAllMembers lists members across the head church.
func (s *Service) GetAllMembers(sess *access.Session, activeOnly bool) ([]*Member, error) {
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleMembership},
		AccessTypes:    []string{access.AccessView},
	}); err != nil {
		return nil, err
	}
	return s.repo.List(sess.HeadChurchCode, activeOnly)
}

// GetMembersByBranch lists members of one branch church.
func (s *Service) GetMembersByBranch(sess *access.Session, branchCode string, activeOnly bool) ([]*Member, error) {
	branch, err := s.churches.GetChurchByCode(sess, branchCode)
	if err != nil {
		return nil, err
	}
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleMembership},
		AccessTypes:    []string{access.AccessView},
	}); err != nil {
		return nil, err
	}
	return s.repo.ListByBranch(sess.HeadChurchCode, branch.Code, activeOnly)
}

// UpdateMember applies a partial update to an active member.
func (s *Service) UpdateMember(sess *access.Session, code string, dto UpdateMemberDTO) (*Member, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	m, err := s.repo.GetByCode(sess.HeadChurchCode, strings.ToUpper(code))
	if err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, internal.NewInvalidStateError(
			fmt.Sprintf("Member: '%s' must be active before they can be updated", m.FullName()),
			internal.ErrCodeMemberNotFound,
		)
	}

	level, err := s.levels.DeepestLevel(sess.HeadChurchCode)
	if err != nil {
		return nil, err
	}
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		ChurchCode:     m.BranchCode,
		RoleCodes:      []string{access.RoleAdmin, access.RoleSuperAdmin},
		LevelNo:        level.LevelNo,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleMembership},
		AccessTypes:    []string{access.AccessEdit},
	}); err != nil {
		return nil, err
	}

	if dto.FirstName != nil {
		m.FirstName = *dto.FirstName
	}
	if dto.MiddleName != nil {
		m.MiddleName = dto.MiddleName
	}
	if dto.LastName != nil {
		m.LastName = *dto.LastName
	}
	if dto.FamilyName != nil {
		m.FamilyName = *dto.FamilyName
	}
	if dto.DateOfBirth != nil {
		m.DateOfBirth = dto.DateOfBirth
	}
	if dto.Gender != nil {
		m.Gender = *dto.Gender
	}
	if dto.MaritalStatus != nil {
		m.MaritalStatus = *dto.MaritalStatus
	}
	if dto.Occupation != nil {
		m.Occupation = dto.Occupation
	}
	if dto.HomeAddress != nil {
		m.HomeAddress = dto.HomeAddress
	}
	if dto.ContactNo != nil {
		m.ContactNo = *dto.ContactNo
	}
	if dto.ContactEmail != nil {
		m.ContactEmail = *dto.ContactEmail
	}
	m.ModifiedBy = sess.Usercode
	m.UpdatedAt = time.Now()

	if err := s.repo.Update(m); err != nil {
		s.logger.Error("failed to update member", "error", err, "member_code", m.Code)
		return nil, err
	}
	return s.repo.GetByCode(sess.HeadChurchCode, m.Code)
}

// ActivateMember restores a deactivated member.
func (s *Service) ActivateMember(sess *access.Session, code string) (*Member, error) {
	return s.setMemberActive(sess, code, true)
}

// DeactivateMember marks a member inactive; their record stays for history.
func (s *Service) DeactivateMember(sess *access.Session, code string) (*Member, error) {
	return s.setMemberActive(sess, code, false)
}

func (s *Service) setMemberActive(sess *access.Session, code string, active bool) (*Member, error) {
	m, err := s.repo.GetByCode(sess.HeadChurchCode, strings.ToUpper(code))
	if err != nil {
		return nil, err
	}
	if m.IsActive == active {
		state, code := "inactive", internal.ErrCodeMemberAlreadyInactive
		if active {
			state, code = "active", internal.ErrCodeMemberAlreadyActive
		}
		return nil, internal.NewConflictError(
			fmt.Sprintf("Member: '%s' is already %s", m.FullName(), state),
			code,
		)
	}

	level, err := s.levels.DeepestLevel(sess.HeadChurchCode)
	if err != nil {
		return nil, err
	}
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		ChurchCode:     m.BranchCode,
		RoleCodes:      []string{access.RoleAdmin, access.RoleSuperAdmin},
		LevelNo:        level.LevelNo - 1,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleMembership},
		AccessTypes:    []string{access.AccessEdit},
	}); err != nil {
		return nil, err
	}

	if err := s.repo.SetActive(sess.HeadChurchCode, m.Code, active, sess.Usercode); err != nil {
		s.logger.Error("failed to update member state", "error", err, "member_code", m.Code, "active", active)
		return nil, err
	}

	s.logger.Info("member state changed", "member_code", m.Code, "active", active, "by", sess.Usercode)
	return s.repo.GetByCode(sess.HeadChurchCode, m.Code)
}
