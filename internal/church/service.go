package church

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lifegate/church-mgmt/internal"
	"github.com/lifegate/church-mgmt/internal/access"
	"github.com/lifegate/church-mgmt/internal/hierarchy"
)

// Repository defines the data access methods for churches.
type Repository interface {
	Create(ch *Church) error
	GetByCode(headChurchCode, code string) (*Church, error)
	List(headChurchCode, status string) ([]*Church, error)
	ListByLevel(headChurchCode, levelCode, status string) ([]*Church, error)
	Update(ch *Church) error
	SetStatus(headChurchCode, code, status string, isActive bool, statusBy string) error
	// DeactivateWithLeadClose deactivates the church and closes any open lead
	// mapping for it inside one transaction.
	DeactivateWithLeadClose(headChurchCode, code, actor string) error
	CodeExists(headChurchCode, code string) (bool, error)
	NameExists(headChurchCode, name string) (bool, error)
}

// LevelResolver resolves a level code to its active rank.
type LevelResolver interface {
	ResolveLevel(headChurchCode, code string) (*hierarchy.Level, error)
}

type Service struct {
	repo   Repository
	levels LevelResolver
	logger *slog.Logger
}

func NewService(repo Repository, levels LevelResolver, logger *slog.Logger) *Service {
	return &Service{repo: repo, levels: levels, logger: logger}
}

// CreateChurch creates a church at the given level in awaiting state. Only a
// parent-level admin may create records at that level.
func (s *Service) CreateChurch(sess *access.Session, levelCode string, dto CreateChurchDTO) (*Church, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("church validation failed", "error", err, "usercode", sess.Usercode)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	level, err := s.levels.ResolveLevel(sess.HeadChurchCode, strings.ToUpper(levelCode))
	if err != nil {
		return nil, err
	}

	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		RoleCodes:      []string{access.RoleAdmin, access.RoleSuperAdmin},
		LevelNo:        level.LevelNo - 1,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleHierarchy},
		AccessTypes:    []string{access.AccessCreate},
	}); err != nil {
		return nil, err
	}

	code := strings.ToUpper(dto.Code)
	if exists, err := s.repo.CodeExists(sess.HeadChurchCode, code); err != nil {
		return nil, err
	} else if exists {
		return nil, internal.NewConflictError(
			fmt.Sprintf("Code: '%s' already exists", code),
			internal.ErrCodeDuplicateEntry,
		)
	}
	if exists, err := s.repo.NameExists(sess.HeadChurchCode, dto.Name); err != nil {
		return nil, err
	} else if exists {
		return nil, internal.NewConflictError(
			fmt.Sprintf("Name: '%s' already exists", dto.Name),
			internal.ErrCodeDuplicateEntry,
		)
	}

	now := time.Now()
	ch := &Church{
		Code:           code,
		Name:           dto.Name,
		AltName:        dto.AltName,
		Address:        dto.Address,
		ContactNo:      dto.ContactNo,
		ContactEmail:   dto.ContactEmail,
		LevelCode:      level.Code,
		HeadChurchCode: sess.HeadChurchCode,
		Status:         StatusAwaiting,
		IsActive:       false,
		CreatedBy:      sess.Usercode,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ch); err != nil {
		s.logger.Error("failed to create church", "error", err, "code", code)
		return nil, err
	}

	s.logger.Info("church created", "code", ch.Code, "level_code", ch.LevelCode, "by", sess.Usercode)
	return ch, nil
}

// GetChurchByCode fetches one church in the caller's head church.
func (s *Service) GetChurchByCode(sess *access.Session, code string) (*Church, error) {
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleHierarchy},
		AccessTypes:    []string{access.AccessView, access.AccessEdit, access.AccessApprove},
	}); err != nil {
		return nil, err
	}
	return s.repo.GetByCode(sess.HeadChurchCode, strings.ToUpper(code))
}

// GetAllChurches lists churches, optionally filtered by status.
func (s *Service) GetAllChurches(sess *access.Session, status string) ([]*Church, error) {
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleHierarchy},
		AccessTypes:    []string{access.AccessView},
	}); err != nil {
		return nil, err
	}
	return s.repo.List(sess.HeadChurchCode, status)
}

// GetChurchesByLevel lists churches at one hierarchy level.
func (s *Service) GetChurchesByLevel(sess *access.Session, levelCode, status string) ([]*Church, error) {
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleHierarchy},
		AccessTypes:    []string{access.AccessView},
	}); err != nil {
		return nil, err
	}
	return s.repo.ListByLevel(sess.HeadChurchCode, strings.ToUpper(levelCode), status)
}

// UpdateChurch applies a partial update to an active church.
func (s *Service) UpdateChurch(sess *access.Session, code string, dto UpdateChurchDTO) (*Church, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	ch, err := s.GetChurchByCode(sess, code)
	if err != nil {
		return nil, err
	}
	if !ch.IsActive {
		return nil, internal.NewInvalidStateError(
			fmt.Sprintf("Church: '%s' must be active before it can be updated", ch.Label()),
			internal.ErrCodeChurchNotApproved,
		)
	}

	level, err := s.levels.ResolveLevel(sess.HeadChurchCode, ch.LevelCode)
	if err != nil {
		return nil, err
	}
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		ChurchCode:     ch.Code,
		RoleCodes:      []string{access.RoleAdmin, access.RoleSuperAdmin},
		LevelNo:        level.LevelNo,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleHierarchy},
		AccessTypes:    []string{access.AccessEdit},
	}); err != nil {
		return nil, err
	}

	if dto.Name != nil && *dto.Name != ch.Name {
		if exists, err := s.repo.NameExists(sess.HeadChurchCode, *dto.Name); err != nil {
			return nil, err
		} else if exists {
			return nil, internal.NewConflictError(
				fmt.Sprintf("Name: '%s' already exists", *dto.Name),
				internal.ErrCodeDuplicateEntry,
			)
		}
		ch.Name = *dto.Name
	}
	if dto.AltName != nil {
		ch.AltName = dto.AltName
	}
	if dto.Address != nil {
		ch.Address = dto.Address
	}
	if dto.ContactNo != nil {
		ch.ContactNo = dto.ContactNo
	}
	if dto.ContactEmail != nil {
		ch.ContactEmail = dto.ContactEmail
	}
	ch.ModifiedBy = sess.Usercode
	ch.UpdatedAt = time.Now()

	if err := s.repo.Update(ch); err != nil {
		s.logger.Error("failed to update church", "error", err, "code", ch.Code)
		return nil, err
	}
	return s.repo.GetByCode(sess.HeadChurchCode, ch.Code)
}

// ApproveChurch transitions an active church to approved.
func (s *Service) ApproveChurch(sess *access.Session, code string) (*Church, error) {
	ch, err := s.GetChurchByCode(sess, code)
	if err != nil {
		return nil, err
	}
	if !ch.IsActive {
		return nil, internal.NewInvalidStateError(
			fmt.Sprintf("Church: '%s' must be active before it can be approved", ch.Label()),
			internal.ErrCodeChurchNotApproved,
		)
	}
	if ch.Status == StatusApproved {
		return nil, internal.NewConflictError(
			fmt.Sprintf("Church: '%s' is already approved", ch.Label()),
			internal.ErrCodeChurchAlreadyApproved,
		)
	}

	level, err := s.levels.ResolveLevel(sess.HeadChurchCode, ch.LevelCode)
	if err != nil {
		return nil, err
	}
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		RoleCodes:      []string{access.RoleAdmin, access.RoleSuperAdmin},
		LevelNo:        level.LevelNo - 1,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleHierarchy},
		AccessTypes:    []string{access.AccessApprove},
	}); err != nil {
		return nil, err
	}

	if err := s.repo.SetStatus(sess.HeadChurchCode, ch.Code, StatusApproved, true, sess.Usercode); err != nil {
		s.logger.Error("failed to approve church", "error", err, "code", ch.Code)
		return nil, err
	}
	s.logger.Info("church approved", "code", ch.Code, "by", sess.Usercode)
	return s.repo.GetByCode(sess.HeadChurchCode, ch.Code)
}

// ActivateChurch marks an inactive church active.
func (s *Service) ActivateChurch(sess *access.Session, code string) (*Church, error) {
	ch, err := s.GetChurchByCode(sess, code)
	if err != nil {
		return nil, err
	}
	if ch.IsActive {
		return nil, internal.NewConflictError(
			fmt.Sprintf("Church: '%s' is already active", ch.Label()),
			internal.ErrCodeChurchAlreadyActive,
		)
	}

	level, err := s.levels.ResolveLevel(sess.HeadChurchCode, ch.LevelCode)
	if err != nil {
		return nil, err
	}
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		RoleCodes:      []string{access.RoleAdmin, access.RoleSuperAdmin},
		LevelNo:        level.LevelNo - 1,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleHierarchy},
		AccessTypes:    []string{access.AccessEdit},
	}); err != nil {
		return nil, err
	}

	if err := s.repo.SetStatus(sess.HeadChurchCode, ch.Code, StatusActive, true, sess.Usercode); err != nil {
		s.logger.Error("failed to activate church", "error", err, "code", ch.Code)
		return nil, err
	}
	s.logger.Info("church activated", "code", ch.Code, "by", sess.Usercode)
	return s.repo.GetByCode(sess.HeadChurchCode, ch.Code)
}

// DeactivateChurch marks a church inactive and closes any open lead mapping
// for it as part of the same logical operation.
func (s *Service) DeactivateChurch(sess *access.Session, code string) (*Church, error) {
	ch, err := s.GetChurchByCode(sess, code)
	if err != nil {
		return nil, err
	}
	if !ch.IsActive {
		return nil, internal.NewConflictError(
			fmt.Sprintf("Church: '%s' is already inactive", ch.Label()),
			internal.ErrCodeChurchAlreadyInactive,
		)
	}

	level, err := s.levels.ResolveLevel(sess.HeadChurchCode, ch.LevelCode)
	if err != nil {
		return nil, err
	}
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		RoleCodes:      []string{access.RoleAdmin, access.RoleSuperAdmin},
		LevelNo:        level.LevelNo - 1,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleHierarchy},
		AccessTypes:    []string{access.AccessEdit},
	}); err != nil {
		return nil, err
	}

	if err := s.repo.DeactivateWithLeadClose(sess.HeadChurchCode, ch.Code, sess.Usercode); err != nil {
		s.logger.Error("failed to deactivate church", "error", err, "code", ch.Code)
		return nil, err
	}
	s.logger.Info("church deactivated", "code", ch.Code, "by", sess.Usercode)
	return s.repo.GetByCode(sess.HeadChurchCode, ch.Code)
}
