package churchlead

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lifegate/church-mgmt/internal"
	"github.com/lifegate/church-mgmt/internal/access"
	"github.com/lifegate/church-mgmt/internal/church"
	"github.com/lifegate/church-mgmt/internal/hierarchy"
)

// Repository defines the data access methods for lead mappings.
type Repository interface {
	ListByChurch(headChurchCode, churchCode, status string) ([]*ChurchLead, error)
	GetCurrent(headChurchCode, churchCode string) (*ChurchLead, error)
	// CloseOpen ends any open mapping for the church; returns rows closed.
	CloseOpen(headChurchCode, churchCode, actor string) (int64, error)
	// Replace closes any open mapping and inserts the new one in a single
	// transaction, preserving the at-most-one-open-row invariant.
	Replace(lead *ChurchLead) error
	Approve(headChurchCode, churchCode, leadChurchCode, actor string) (int64, error)
	Descendants(headChurchCode, rootCode string, maxDepth int) ([]*Descendant, error)
	ChurchesByLead(headChurchCode, leadChurchCode, levelCode, status string) ([]*church.Church, error)
	BranchesUnder(headChurchCode, rootCode, branchLevelCode, status string, maxDepth int) ([]*church.Church, error)
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

// Service drives the lead-mapping workflow. Map calls serialize per church
// code so two concurrent maps cannot both observe "no open mapping" and
// insert twice.
type Service struct {
	repo     Repository
	churches ChurchGetter
	levels   LevelResolver
	logger   *slog.Logger
	maxDepth int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(repo Repository, churches ChurchGetter, levels LevelResolver, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		churches: churches,
		levels:   levels,
		logger:   logger,
		maxDepth: DefaultMaxTraversalDepth,
		locks:    make(map[string]*sync.Mutex),
	}
}

// SetMaxTraversalDepth overrides the descendant traversal cap.
func (s *Service) SetMaxTraversalDepth(depth int) {
	if depth > 0 {
		s.maxDepth = depth
	}
}

func (s *Service) churchLock(headChurchCode, churchCode string) *sync.Mutex {
	key := headChurchCode + "/" + churchCode
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[key] = l
	return l
}

// requireUsable rejects churches that are neither active nor approved, the
// original gate for participating in lead workflows.
func requireUsable(ch *church.Church) error {
	if !ch.IsActive && ch.Status != church.StatusApproved {
		return church.ErrChurchNotApproved(ch.Label())
	}
	return nil
}

// GetChurchLeads returns the church's mapping history, newest first.
func (s *Service) GetChurchLeads(sess *access.Session, churchCode, status string) ([]*ChurchLead, error) {
	ch, err := s.churches.GetChurchByCode(sess, churchCode)
	if err != nil {
		return nil, err
	}
	if err := requireUsable(ch); err != nil {
		return nil, err
	}
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleHierarchy},
		AccessTypes:    []string{access.AccessView},
	}); err != nil {
		return nil, err
	}
	return s.repo.ListByChurch(sess.HeadChurchCode, ch.Code, status)
}

// GetCurrentLead returns the church's approved current lead mapping.
func (s *Service) GetCurrentLead(sess *access.Session, churchCode string) (*ChurchLead, error) {
	ch, err := s.churches.GetChurchByCode(sess, churchCode)
	if err != nil {
		return nil, err
	}
	if err := requireUsable(ch); err != nil {
		return nil, err
	}
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleHierarchy},
		AccessTypes:    []string{access.AccessView},
	}); err != nil {
		return nil, err
	}

	lead, err := s.repo.GetCurrent(sess.HeadChurchCode, ch.Code)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrNoCurrentLead(ch.Label())
	}
	return lead, nil
}

// Map assigns a new lead church. Any open mapping is closed first; close and
// insert run in one transaction so a crash between them cannot leave the
// church both unmapped and mapped.
func (s *Service) Map(sess *access.Session, churchCode, leadChurchCode string) (*ChurchLead, error) {
	lock := s.churchLock(sess.HeadChurchCode, strings.ToUpper(churchCode))
	lock.Lock()
	defer lock.Unlock()

	ch, err := s.churches.GetChurchByCode(sess, churchCode)
	if err != nil {
		return nil, err
	}
	lead, err := s.churches.GetChurchByCode(sess, leadChurchCode)
	if err != nil {
		return nil, err
	}

	if !ch.IsActiveAndApproved() {
		return nil, internal.NewInvalidStateError(
			fmt.Sprintf("Church: '%s' is not active and approved", ch.Label()),
			internal.ErrCodeChurchNotApproved,
		)
	}
	if !lead.IsActiveAndApproved() {
		return nil, internal.NewInvalidStateError(
			fmt.Sprintf("Selected Lead Church: '%s' is not active and approved", lead.Label()),
			internal.ErrCodeChurchNotApproved,
		)
	}

	existing, err := s.repo.ListByChurch(sess.HeadChurchCode, ch.Code, "")
	if err != nil {
		return nil, err
	}
	for _, row := range existing {
		if row.LeadChurchCode == lead.Code && (row.IsActive || row.Status == StatusApproved) {
			return nil, ErrAlreadyMapped(ch.Label(), lead.Label())
		}
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

	now := time.Now()
	row := &ChurchLead{
		ChurchCode:     ch.Code,
		LevelCode:      ch.LevelCode,
		LeadChurchCode: lead.Code,
		LeadLevelCode:  lead.LevelCode,
		HeadChurchCode: sess.HeadChurchCode,
		StartDate:      now,
		Status:         StatusAwaiting,
		IsActive:       true,
		CreatedBy:      sess.Usercode,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Replace(row); err != nil {
		s.logger.Error("failed to map church lead", "error", err, "church_code", ch.Code, "lead_church_code", lead.Code)
		return nil, err
	}

	s.logger.Info("church lead mapped",
		"church_code", ch.Code,
		"lead_church_code", lead.Code,
		"by", sess.Usercode)
	return row, nil
}

// Unmap closes the church's open mapping. Idempotent: with no open row it is
// a no-op and simply returns the current mapping history.
func (s *Service) Unmap(sess *access.Session, churchCode string) ([]*ChurchLead, error) {
	ch, err := s.churches.GetChurchByCode(sess, churchCode)
	if err != nil {
		return nil, err
	}
	if err := requireUsable(ch); err != nil {
		return nil, err
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
		AccessTypes:    []string{access.AccessEdit, access.AccessView},
	}); err != nil {
		return nil, err
	}

	closed, err := s.repo.CloseOpen(sess.HeadChurchCode, ch.Code, sess.Usercode)
	if err != nil {
		s.logger.Error("failed to unmap church lead", "error", err, "church_code", ch.Code)
		return nil, err
	}
	if closed > 0 {
		s.logger.Info("church lead unmapped", "church_code", ch.Code, "rows_closed", closed, "by", sess.Usercode)
	}
	return s.repo.ListByChurch(sess.HeadChurchCode, ch.Code, "")
}

// Approve transitions an awaiting mapping to approved.
func (s *Service) Approve(sess *access.Session, churchCode, leadChurchCode string) (*ChurchLead, error) {
	ch, err := s.churches.GetChurchByCode(sess, churchCode)
	if err != nil {
		return nil, err
	}
	lead, err := s.churches.GetChurchByCode(sess, leadChurchCode)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByChurch(sess.HeadChurchCode, ch.Code, "")
	if err != nil {
		return nil, err
	}
	found := false
	for _, row := range rows {
		if row.LeadChurchCode != lead.Code || !row.IsActive {
			continue
		}
		if row.Status == StatusApproved {
			return nil, ErrMappingAlreadyApproved()
		}
		found = true
		break
	}
	if !found {
		return nil, ErrMappingNotActive()
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

	if _, err := s.repo.Approve(sess.HeadChurchCode, ch.Code, lead.Code, sess.Usercode); err != nil {
		s.logger.Error("failed to approve church lead", "error", err, "church_code", ch.Code, "lead_church_code", lead.Code)
		return nil, err
	}

	s.logger.Info("church lead approved", "church_code", ch.Code, "lead_church_code", lead.Code, "by", sess.Usercode)
	return s.GetCurrentLead(sess, ch.Code)
}

// GetDescendants walks reporting lines outward from a root lead church,
// returning every church that reports up to it, directly or transitively.
// Optional level and status filters narrow the result.
func (s *Service) GetDescendants(sess *access.Session, rootCode, levelCode, status string) ([]*Descendant, error) {
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleHierarchy},
		AccessTypes:    []string{access.AccessView},
	}); err != nil {
		return nil, err
	}
	root, err := s.churches.GetChurchByCode(sess, rootCode)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Descendants(sess.HeadChurchCode, root.Code, s.maxDepth)
	if err != nil {
		return nil, err
	}

	// visited set guards against cycles independently of the depth cap
	seen := make(map[string]bool, len(rows))
	out := make([]*Descendant, 0, len(rows))
	for _, d := range rows {
		if seen[d.ChurchCode] || d.ChurchCode == root.Code {
			continue
		}
		seen[d.ChurchCode] = true
		if levelCode != "" && d.LevelCode != levelCode {
			continue
		}
		if status != "" && d.Status != status {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// GetChurchesByLead returns the churches reporting directly to a lead church,
// i.e. those whose current approved mapping points at it.
func (s *Service) GetChurchesByLead(sess *access.Session, leadCode, levelCode, status string) ([]*church.Church, error) {
	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleHierarchy},
		AccessTypes:    []string{access.AccessView},
	}); err != nil {
		return nil, err
	}
	lead, err := s.churches.GetChurchByCode(sess, leadCode)
	if err != nil {
		return nil, err
	}
	return s.repo.ChurchesByLead(sess.HeadChurchCode, lead.Code, levelCode, status)
}

// GetBranchesByChurchLead returns the branch-level churches under a lead
// church. Rejects roots that are themselves at the deepest configured rank.
func (s *Service) GetBranchesByChurchLead(sess *access.Session, rootCode, status string) ([]*church.Church, error) {
	root, err := s.churches.GetChurchByCode(sess, rootCode)
	if err != nil {
		return nil, err
	}

	rootLevel, err := s.levels.ResolveLevel(sess.HeadChurchCode, root.LevelCode)
	if err != nil {
		return nil, err
	}
	branchLevel, err := s.levels.DeepestLevel(sess.HeadChurchCode)
	if err != nil {
		return nil, err
	}
	if rootLevel.LevelNo == branchLevel.LevelNo {
		return nil, ErrChurchIsBranch()
	}

	if err := sess.Authorize(access.Constraints{
		HeadChurchCode: sess.HeadChurchCode,
		ModuleCodes:    []string{access.ModuleAll, access.ModuleHierarchy},
		AccessTypes:    []string{access.AccessView},
	}); err != nil {
		return nil, err
	}

	return s.repo.BranchesUnder(sess.HeadChurchCode, root.Code, branchLevel.Code, status, s.maxDepth)
}
