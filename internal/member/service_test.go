package member_test

import (
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lifegate/church-mgmt/internal"
	"github.com/lifegate/church-mgmt/internal/access"
	"github.com/lifegate/church-mgmt/internal/church"
	"github.com/lifegate/church-mgmt/internal/hierarchy"
	"github.com/lifegate/church-mgmt/internal/member"
)

func TestMember(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Member Service Suite")
}

const headChurch = "HQ1"

// Mock repository for testing
type mockMemberRepository struct {
	members map[string]*member.Member
}

func newMockMemberRepository() *mockMemberRepository {
	return &mockMemberRepository{members: make(map[string]*member.Member)}
}

func (m *mockMemberRepository) Create(mb *member.Member) error {
	mb.ID = int64(len(m.members) + 1)
	m.members[mb.Code] = mb
	return nil
}

func (m *mockMemberRepository) GetByCode(headChurchCode, code string) (*member.Member, error) {
	mb, ok := m.members[code]
	if !ok || mb.HeadChurchCode != headChurchCode {
		return nil, member.ErrMemberNotFound(code, headChurchCode)
	}
	return mb, nil
}

func (m *mockMemberRepository) List(headChurchCode string, activeOnly bool) ([]*member.Member, error) {
	var out []*member.Member
	for _, mb := range m.members {
		if mb.HeadChurchCode != headChurchCode {
			continue
		}
		if activeOnly && !mb.IsActive {
			continue
		}
		out = append(out, mb)
	}
	return out, nil
}

func (m *mockMemberRepository) ListByBranch(headChurchCode, branchCode string, activeOnly bool) ([]*member.Member, error) {
	var out []*member.Member
	for _, mb := range m.members {
		if mb.HeadChurchCode != headChurchCode || mb.BranchCode != branchCode {
			continue
		}
		if activeOnly && !mb.IsActive {
			continue
		}
		out = append(out, mb)
	}
	return out, nil
}

func (m *mockMemberRepository) Update(mb *member.Member) error {
	m.members[mb.Code] = mb
	return nil
}

func (m *mockMemberRepository) SetActive(headChurchCode, code string, active bool, actor string) error {
	mb, ok := m.members[code]
	if !ok {
		return member.ErrMemberNotFound(code, headChurchCode)
	}
	mb.IsActive = active
	mb.ModifiedBy = actor
	return nil
}

func (m *mockMemberRepository) ContactExists(headChurchCode, contactNo, contactEmail string) (bool, error) {
	for _, mb := range m.members {
		if mb.HeadChurchCode != headChurchCode {
			continue
		}
		if mb.ContactNo == contactNo || mb.ContactEmail == contactEmail {
			return true, nil
		}
	}
	return false, nil
}

// Mock church getter
type mockChurchGetter struct {
	churches map[string]*church.Church
}

func (m *mockChurchGetter) GetChurchByCode(sess *access.Session, code string) (*church.Church, error) {
	if ch, ok := m.churches[code]; ok {
		return ch, nil
	}
	return nil, church.ErrChurchNotFound(code, sess.HeadChurchCode)
}

// Mock level resolver
type mockLevelResolver struct {
	levels map[string]*hierarchy.Level
}

func (m *mockLevelResolver) ResolveLevel(headChurchCode, code string) (*hierarchy.Level, error) {
	level, ok := m.levels[code]
	if !ok {
		return nil, hierarchy.ErrLevelNotFound(code)
	}
	return level, nil
}

func (m *mockLevelResolver) DeepestLevel(headChurchCode string) (*hierarchy.Level, error) {
	var deepest *hierarchy.Level
	for _, level := range m.levels {
		if !level.IsActive {
			continue
		}
		if deepest == nil || level.LevelNo > deepest.LevelNo {
			deepest = level
		}
	}
	if deepest == nil {
		return nil, hierarchy.ErrLevelNotFound(headChurchCode)
	}
	return deepest, nil
}

// branchSession builds a session whose grants are scoped to one branch, the
// shape membership grants take in practice.
func branchSession(branchCode string, accessTypes ...string) *access.Session {
	grants := make([]access.Grant, 0, len(accessTypes))
	for _, at := range accessTypes {
		grants = append(grants, access.Grant{
			Usercode:       "admin",
			HeadChurchCode: headChurch,
			ChurchCode:     branchCode,
			RoleCode:       access.RoleAdmin,
			LevelCode:      "ARE",
			LevelNo:        4,
			ModuleCode:     access.ModuleMembership,
			SubModuleCode:  access.SubModuleAll,
			AccessType:     at,
		})
	}
	return &access.Session{
		UserID:         1,
		Usercode:       "admin",
		HeadChurchCode: headChurch,
		Grants:         grants,
	}
}

var _ = Describe("MemberService", func() {
	var (
		svc      *member.Service
		repo     *mockMemberRepository
		churches *mockChurchGetter
		levels   *mockLevelResolver
		logger   *slog.Logger
	)

	newDTO := func(branchCode string) member.CreateMemberDTO {
		return member.CreateMemberDTO{
			FirstName:    "Jane",
			LastName:     "Doe",
			Gender:       "F",
			ContactNo:    "+2348000000001",
			ContactEmail: "jane.doe@example.com",
			BranchCode:   branchCode,
		}
	}

	BeforeEach(func() {
		repo = newMockMemberRepository()
		churches = &mockChurchGetter{churches: map[string]*church.Church{
			"BR01": {Code: "BR01", Name: "First Branch", LevelCode: "BRN", HeadChurchCode: headChurch, Status: church.StatusApproved, IsActive: true},
			"AR01": {Code: "AR01", Name: "First Area", LevelCode: "ARE", HeadChurchCode: headChurch, Status: church.StatusApproved, IsActive: true},
		}}
		levels = &mockLevelResolver{levels: map[string]*hierarchy.Level{
			"ARE": {Code: "ARE", Name: "Area", LevelNo: 4, IsActive: true},
			"BRN": {Code: "BRN", Name: "Branch", LevelNo: 5, IsActive: true},
		}}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		svc = member.NewService(repo, churches, levels, logger)
	})

	Describe("CreateMember", func() {
		It("registers an active member at a branch", func() {
			m, err := svc.CreateMember(branchSession("BR01", access.AccessCreate), newDTO("BR01"))

			Expect(err).NotTo(HaveOccurred())
			Expect(m.Code).To(HavePrefix("MBR-"))
			Expect(m.BranchCode).To(Equal("BR01"))
			Expect(m.IsActive).To(BeTrue())
			Expect(m.JoinDate).NotTo(BeZero())
		})

		It("rejects a target church that is not at the branch level", func() {
			_, err := svc.CreateMember(branchSession("AR01", access.AccessCreate), newDTO("AR01"))

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotABranch))
		})

		It("rejects invalid payloads", func() {
			dto := newDTO("BR01")
			dto.ContactEmail = "not-an-email"

			_, err := svc.CreateMember(branchSession("BR01", access.AccessCreate), dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})

		It("conflicts on a duplicate contact", func() {
			sess := branchSession("BR01", access.AccessCreate)

			_, err := svc.CreateMember(sess, newDTO("BR01"))
			Expect(err).NotTo(HaveOccurred())

			dto := newDTO("BR01")
			dto.ContactNo = "+2348000000099"
			// same email as the first member
			_, err = svc.CreateMember(sess, dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateEntry))
		})

		It("denies grants scoped to a different branch", func() {
			_, err := svc.CreateMember(branchSession("BR99", access.AccessCreate), newDTO("BR01"))

			Expect(err).To(MatchError(access.ErrNotAllowed))
			Expect(repo.members).To(BeEmpty())
		})

		It("denies callers without a create grant", func() {
			_, err := svc.CreateMember(branchSession("BR01", access.AccessView), newDTO("BR01"))

			Expect(err).To(MatchError(access.ErrNotAllowed))
		})
	})

	Describe("UpdateMember", func() {
		var code string

		BeforeEach(func() {
			m, err := svc.CreateMember(branchSession("BR01", access.AccessCreate), newDTO("BR01"))
			Expect(err).NotTo(HaveOccurred())
			code = m.Code
		})

		It("applies a partial update", func() {
			occupation := "Teacher"

			m, err := svc.UpdateMember(branchSession("BR01", access.AccessEdit), code, member.UpdateMemberDTO{Occupation: &occupation})
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Occupation).NotTo(BeNil())
			Expect(*m.Occupation).To(Equal("Teacher"))
			Expect(m.FirstName).To(Equal("Jane"))
		})

		It("rejects updates to an inactive member", func() {
			repo.members[code].IsActive = false

			first := "Janet"
			_, err := svc.UpdateMember(branchSession("BR01", access.AccessEdit), code, member.UpdateMemberDTO{FirstName: &first})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DeactivateMember and ActivateMember", func() {
		var code string

		BeforeEach(func() {
			m, err := svc.CreateMember(branchSession("BR01", access.AccessCreate), newDTO("BR01"))
			Expect(err).NotTo(HaveOccurred())
			code = m.Code
		})

		It("deactivates then reactivates a member", func() {
			sess := branchSession("BR01", access.AccessEdit)

			m, err := svc.DeactivateMember(sess, code)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.IsActive).To(BeFalse())

			m, err = svc.ActivateMember(sess, code)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.IsActive).To(BeTrue())
		})

		It("conflicts when re-activating an active member", func() {
			_, err := svc.ActivateMember(branchSession("BR01", access.AccessEdit), code)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeMemberAlreadyActive))
		})

		It("conflicts when re-deactivating an inactive member", func() {
			sess := branchSession("BR01", access.AccessEdit)

			_, err := svc.DeactivateMember(sess, code)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.DeactivateMember(sess, code)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeMemberAlreadyInactive))
		})
	})

	Describe("GetMembersByBranch", func() {
		It("lists only the branch's active members", func() {
			m, err := svc.CreateMember(branchSession("BR01", access.AccessCreate), newDTO("BR01"))
			Expect(err).NotTo(HaveOccurred())

			dto := newDTO("BR01")
			dto.ContactNo = "+2348000000002"
			dto.ContactEmail = "john.doe@example.com"
			other, err := svc.CreateMember(branchSession("BR01", access.AccessCreate), dto)
			Expect(err).NotTo(HaveOccurred())
			repo.members[other.Code].IsActive = false

			out, err := svc.GetMembersByBranch(branchSession("BR01", access.AccessView), "BR01", true)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(1))
			Expect(out[0].Code).To(Equal(m.Code))
		})
	})
})
