package hierarchy

import (
	"fmt"
	"log/slog"

	"github.com/lifegate/church-mgmt/internal"
	"github.com/lifegate/church-mgmt/internal/access"
)

// Repository defines the data access methods for hierarchy levels.
type Repository interface {
	GetByCode(headChurchCode, code string) (*Level, error)
	List(headChurchCode string, activeOnly bool) ([]*Level, error)
	Deepest(headChurchCode string) (*Level, error)
	SetActive(headChurchCode, code string, active bool, modifiedBy string) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ResolveLevel looks up the active level for a code within a head church.
// A missing or inactive level is fatal to the calling operation; this never
// falls back to a default rank.
func (s *Service) ResolveLevel(headChurchCode, code string) (*Level, error) {
	level, err := s.repo.GetByCode(headChurchCode, code)
	if err != nil {
		s.logger.Error("level lookup failed", "error", err, "level_code", code, "head_church_code", headChurchCode)
		return nil, err
	}
	if !level.IsActive {
		s.logger.Warn("level is not active", "level_code", code, "head_church_code", headChurchCode)
		return nil, ErrLevelNotActive(level.Name, level.Code)
	}
	return level, nil
}

// DeepestLevel returns the active level with the highest level number
// configured for the head church, i.e. its leaf ("branch") level.
func (s *Service) DeepestLevel(headChurchCode string) (*Level, error) {
	level, err := s.repo.Deepest(headChurchCode)
	if err != nil {
		s.logger.Error("deepest level lookup failed", "error", err, "head_church_code", headChurchCode)
		return nil, err
	}
	return level, nil
}

// ListLevels returns the configured levels for the caller's head church.
func (s *Service) ListLevels(sess *access.Session, activeOnly bool) ([]*Level, error) {
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleHierarchy},
		AccessTypes:    []string{access.AccessView, access.AccessRead},
	}); err != nil {
		return nil, err
	}
	return s.repo.List(sess.HeadChurchCode, activeOnly)
}

// GetLevel returns one level by code, including inactive ones so admins can
// inspect and reactivate them.
func (s *Service) GetLevel(sess *access.Session, code string) (*Level, error) {
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleHierarchy},
		AccessTypes:    []string{access.AccessView, access.AccessRead},
	}); err != nil {
		return nil, err
	}
	return s.repo.GetByCode(sess.HeadChurchCode, code)
}

// ActivateLevel marks a level active again.
func (s *Service) ActivateLevel(sess *access.Session, code string) (*Level, error) {
	return s.setLevelActive(sess, code, true)
}

// DeactivateLevel retires a level; resolver lookups for it fail afterward.
func (s *Service) DeactivateLevel(sess *access.Session, code string) (*Level, error) {
	return s.setLevelActive(sess, code, false)
}

func (s *Service) setLevelActive(sess *access.Session, code string, active bool) (*Level, error) {
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		RoleCodes:      []string{access.RoleAdmin, access.RoleSuperAdmin},
		ModuleCodes:    []string{access.ModuleAll, access.ModuleHierarchy},
		AccessTypes:    []string{access.AccessUpdate},
	}); err != nil {
		return nil, err
	}

	level, err := s.repo.GetByCode(sess.HeadChurchCode, code)
	if err != nil {
		return nil, err
	}
	if level.IsActive == active {
		state := "inactive"
		if active {
			state = "active"
		}
		return nil, internal.NewConflictError(
			fmt.Sprintf("Hierarchy level: '%s (%s)' is already %s", level.Name, level.Code, state),
			internal.ErrCodeLevelNotActive,
		)
	}

	if err := s.repo.SetActive(sess.HeadChurchCode, code, active, sess.Usercode); err != nil {
		s.logger.Error("failed to update level state", "error", err, "level_code", code, "active", active)
		return nil, err
	}

	s.logger.Info("hierarchy level state changed", "level_code", code, "active", active, "by", sess.Usercode)
	return s.repo.GetByCode(sess.HeadChurchCode, code)
}
