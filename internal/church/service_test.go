package church_test

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
)

func TestChurch(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Church Service Suite")
}

const headChurch = "HQ1"

// Mock repository for testing
type mockChurchRepository struct {
	churches        map[string]*church.Church
	deactivatedWith []string
}

func newMockChurchRepository() *mockChurchRepository {
	return &mockChurchRepository{churches: make(map[string]*church.Church)}
}

func (m *mockChurchRepository) Create(ch *church.Church) error {
	ch.ID = int64(len(m.churches) + 1)
	m.churches[ch.Code] = ch
	return nil
}

func (m *mockChurchRepository) GetByCode(headChurchCode, code string) (*church.Church, error) {
	ch, ok := m.churches[code]
	if !ok || ch.HeadChurchCode != headChurchCode {
		return nil, church.ErrChurchNotFound(code, headChurchCode)
	}
	return ch, nil
}

func (m *mockChurchRepository) List(headChurchCode, status string) ([]*church.Church, error) {
	var out []*church.Church
	for _, ch := range m.churches {
		if ch.HeadChurchCode != headChurchCode {
			continue
		}
		if status != "" && ch.Status != status {
			continue
		}
		out = append(out, ch)
	}
	return out, nil
}

func (m *mockChurchRepository) ListByLevel(headChurchCode, levelCode, status string) ([]*church.Church, error) {
	var out []*church.Church
	for _, ch := range m.churches {
		if ch.HeadChurchCode != headChurchCode || ch.LevelCode != levelCode {
			continue
		}
		if status != "" && ch.Status != status {
			continue
		}
		out = append(out, ch)
	}
	return out, nil
}

func (m *mockChurchRepository) Update(ch *church.Church) error {
	m.churches[ch.Code] = ch
	return nil
}

func (m *mockChurchRepository) SetStatus(headChurchCode, code, status string, isActive bool, statusBy string) error {
	ch, ok := m.churches[code]
	if !ok {
		return church.ErrChurchNotFound(code, headChurchCode)
	}
	ch.Status = status
	ch.IsActive = isActive
	ch.StatusBy = statusBy
	return nil
}

func (m *mockChurchRepository) DeactivateWithLeadClose(headChurchCode, code, actor string) error {
	if err := m.SetStatus(headChurchCode, code, church.StatusInactive, false, actor); err != nil {
		return err
	}
	m.deactivatedWith = append(m.deactivatedWith, code)
	return nil
}

func (m *mockChurchRepository) CodeExists(headChurchCode, code string) (bool, error) {
	ch, ok := m.churches[code]
	return ok && ch.HeadChurchCode == headChurchCode, nil
}

func (m *mockChurchRepository) NameExists(headChurchCode, name string) (bool, error) {
	for _, ch := range m.churches {
		if ch.HeadChurchCode == headChurchCode && ch.Name == name {
			return true, nil
		}
	}
	return false, nil
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
	if !level.IsActive {
		return nil, hierarchy.ErrLevelNotActive(level.Name, level.Code)
	}
	return level, nil
}

func adminSession(accessTypes ...string) *access.Session {
	grants := make([]access.Grant, 0, len(accessTypes))
	for _, at := range accessTypes {
		grants = append(grants, access.Grant{
			Usercode:       "admin",
			HeadChurchCode: headChurch,
			RoleCode:       access.RoleSuperAdmin,
			LevelCode:      "CHU",
			LevelNo:        1,
			ModuleCode:     access.ModuleAll,
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

var _ = Describe("ChurchService", func() {
	var (
		svc    *church.Service
		repo   *mockChurchRepository
		levels *mockLevelResolver
		logger *slog.Logger
	)

	seed := func(code, levelCode, status string, active bool) *church.Church {
		ch := &church.Church{
			Code:           code,
			Name:           "Church " + code,
			LevelCode:      levelCode,
			HeadChurchCode: headChurch,
			Status:         status,
			IsActive:       active,
		}
		repo.churches[code] = ch
		return ch
	}

	BeforeEach(func() {
		repo = newMockChurchRepository()
		levels = &mockLevelResolver{levels: map[string]*hierarchy.Level{
			"CHU": {Code: "CHU", Name: "Head Church", LevelNo: 1, IsActive: true},
			"ZON": {Code: "ZON", Name: "Zone", LevelNo: 3, IsActive: true},
			"ARE": {Code: "ARE", Name: "Area", LevelNo: 4, IsActive: true},
			"BRN": {Code: "BRN", Name: "Branch", LevelNo: 5, IsActive: true},
			"OLD": {Code: "OLD", Name: "Retired", LevelNo: 6, IsActive: false},
		}}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		svc = church.NewService(repo, levels, logger)
	})

	Describe("CreateChurch", func() {
		dto := church.CreateChurchDTO{Code: "br01", Name: "First Branch"}

		It("creates the church awaiting and inactive", func() {
			ch, err := svc.CreateChurch(adminSession(access.AccessCreate), "BRN", dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(ch.Code).To(Equal("BR01"))
			Expect(ch.Status).To(Equal(church.StatusAwaiting))
			Expect(ch.IsActive).To(BeFalse())
			Expect(ch.LevelCode).To(Equal("BRN"))
			Expect(ch.HeadChurchCode).To(Equal(headChurch))
		})

		It("rejects a missing code", func() {
			_, err := svc.CreateChurch(adminSession(access.AccessCreate), "BRN", church.CreateChurchDTO{Name: "No Code"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})

		It("fails closed on an unknown level", func() {
			_, err := svc.CreateChurch(adminSession(access.AccessCreate), "XXX", dto)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeLevelNotFound))
		})

		It("fails closed on an inactive level", func() {
			_, err := svc.CreateChurch(adminSession(access.AccessCreate), "OLD", dto)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeLevelNotActive))
		})

		It("conflicts on a duplicate code", func() {
			seed("BR01", "BRN", church.StatusApproved, true)

			_, err := svc.CreateChurch(adminSession(access.AccessCreate), "BRN", dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateEntry))
		})

		It("conflicts on a duplicate name", func() {
			existing := seed("BR09", "BRN", church.StatusApproved, true)
			existing.Name = "First Branch"

			_, err := svc.CreateChurch(adminSession(access.AccessCreate), "BRN", dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateEntry))
		})

		It("denies callers without a create grant", func() {
			_, err := svc.CreateChurch(adminSession(access.AccessView), "BRN", dto)

			Expect(err).To(MatchError(access.ErrNotAllowed))
			Expect(repo.churches).To(BeEmpty())
		})

		It("denies grants below the parent level", func() {
			sess := adminSession(access.AccessCreate)
			sess.Grants[0].LevelNo = 5
			sess.Grants[0].LevelCode = "BRN"

			_, err := svc.CreateChurch(sess, "BRN", dto)
			Expect(err).To(MatchError(access.ErrNotAllowed))
		})
	})

	Describe("UpdateChurch", func() {
		newName := "Renamed Branch"

		// updates authorize against the target church, so the edit grant
		// must be scoped to its code
		scopedSession := func(churchCode string) *access.Session {
			sess := adminSession(access.AccessView, access.AccessEdit)
			for i := range sess.Grants {
				sess.Grants[i].ChurchCode = churchCode
			}
			return sess
		}

		It("updates an active church", func() {
			seed("BR01", "BRN", church.StatusApproved, true)

			ch, err := svc.UpdateChurch(scopedSession("BR01"), "BR01", church.UpdateChurchDTO{Name: &newName})
			Expect(err).NotTo(HaveOccurred())
			Expect(ch.Name).To(Equal(newName))
			Expect(ch.ModifiedBy).To(Equal("admin"))
		})

		It("rejects updates to an inactive church", func() {
			seed("BR01", "BRN", church.StatusAwaiting, false)

			_, err := svc.UpdateChurch(scopedSession("BR01"), "BR01", church.UpdateChurchDTO{Name: &newName})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeChurchNotApproved))
		})

		It("denies a grant scoped to a different church", func() {
			seed("BR01", "BRN", church.StatusApproved, true)

			_, err := svc.UpdateChurch(scopedSession("BR02"), "BR01", church.UpdateChurchDTO{Name: &newName})
			Expect(err).To(MatchError(access.ErrNotAllowed))
		})

		It("conflicts when the new name is taken", func() {
			seed("BR01", "BRN", church.StatusApproved, true)
			other := seed("BR02", "BRN", church.StatusApproved, true)
			other.Name = newName

			_, err := svc.UpdateChurch(scopedSession("BR01"), "BR01", church.UpdateChurchDTO{Name: &newName})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateEntry))
		})
	})

	Describe("ApproveChurch", func() {
		It("approves an active church", func() {
			seed("BR01", "BRN", church.StatusActive, true)

			ch, err := svc.ApproveChurch(adminSession(access.AccessApprove), "BR01")
			Expect(err).NotTo(HaveOccurred())
			Expect(ch.Status).To(Equal(church.StatusApproved))
			Expect(ch.StatusBy).To(Equal("admin"))
		})

		It("rejects an inactive church", func() {
			seed("BR01", "BRN", church.StatusAwaiting, false)

			_, err := svc.ApproveChurch(adminSession(access.AccessApprove), "BR01")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeChurchNotApproved))
		})

		It("conflicts when already approved", func() {
			seed("BR01", "BRN", church.StatusApproved, true)

			_, err := svc.ApproveChurch(adminSession(access.AccessApprove), "BR01")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeChurchAlreadyApproved))
		})

		It("denies a view-only caller", func() {
			seed("BR01", "BRN", church.StatusActive, true)

			_, err := svc.ApproveChurch(adminSession(access.AccessView), "BR01")
			Expect(err).To(MatchError(access.ErrNotAllowed))
		})
	})

	Describe("ActivateChurch", func() {
		It("activates an inactive church", func() {
			seed("BR01", "BRN", church.StatusAwaiting, false)

			ch, err := svc.ActivateChurch(adminSession(access.AccessView, access.AccessEdit), "BR01")
			Expect(err).NotTo(HaveOccurred())
			Expect(ch.IsActive).To(BeTrue())
			Expect(ch.Status).To(Equal(church.StatusActive))
		})

		It("conflicts when already active", func() {
			seed("BR01", "BRN", church.StatusApproved, true)

			_, err := svc.ActivateChurch(adminSession(access.AccessView, access.AccessEdit), "BR01")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeChurchAlreadyActive))
		})
	})

	Describe("DeactivateChurch", func() {
		It("deactivates and closes the open lead mapping in one call", func() {
			seed("BR01", "BRN", church.StatusApproved, true)

			ch, err := svc.DeactivateChurch(adminSession(access.AccessView, access.AccessEdit), "BR01")
			Expect(err).NotTo(HaveOccurred())
			Expect(ch.IsActive).To(BeFalse())
			Expect(ch.Status).To(Equal(church.StatusInactive))
			Expect(repo.deactivatedWith).To(ConsistOf("BR01"))
		})

		It("conflicts when already inactive", func() {
			seed("BR01", "BRN", church.StatusInactive, false)

			_, err := svc.DeactivateChurch(adminSession(access.AccessView, access.AccessEdit), "BR01")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeChurchAlreadyInactive))
		})

		It("errors on an unknown church", func() {
			_, err := svc.DeactivateChurch(adminSession(access.AccessView, access.AccessEdit), "NOPE")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeChurchNotFound))
		})
	})

	Describe("GetChurchesByLevel", func() {
		It("filters by level and status", func() {
			seed("BR01", "BRN", church.StatusApproved, true)
			seed("BR02", "BRN", church.StatusAwaiting, false)
			seed("AR01", "ARE", church.StatusApproved, true)

			out, err := svc.GetChurchesByLevel(adminSession(access.AccessView), "BRN", church.StatusApproved)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(1))
			Expect(out[0].Code).To(Equal("BR01"))
		})
	})
})
