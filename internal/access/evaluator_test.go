package access_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lifegate/church-mgmt/internal/access"
)

func TestAccess(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Access Evaluator Suite")
}

func grant(mutate func(*access.Grant)) access.Grant {
	g := access.Grant{
		Usercode:       "jdoe",
		HeadChurchCode: "HQ1",
		ChurchCode:     "BR01",
		RoleCode:       access.RoleAdmin,
		LevelCode:      "BRN",
		LevelNo:        5,
		ModuleCode:     access.ModuleHierarchy,
		SubModuleCode:  access.SubModuleAll,
		AccessType:     access.AccessView,
	}
	if mutate != nil {
		mutate(&g)
	}
	return g
}

var _ = Describe("Authorize", func() {
	It("allows when a single grant satisfies every supplied constraint", func() {
		grants := []access.Grant{grant(nil)}

		err := access.Authorize(grants, access.Constraints{
			HeadChurchCode: "HQ1",
			RoleCodes:      []string{access.RoleAdmin, access.RoleSuperAdmin},
			ModuleCodes:    []string{access.ModuleAll, access.ModuleHierarchy},
			AccessTypes:    []string{access.AccessView},
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("denies when no grant exists at all", func() {
		err := access.Authorize(nil, access.Constraints{})
		Expect(err).To(MatchError(access.ErrNotAllowed))
	})

	It("does not aggregate constraints across different grants", func() {
		// one grant carries the right role, the other the right module;
		// neither satisfies both, so the request must be denied.
		grants := []access.Grant{
			grant(func(g *access.Grant) {
				g.RoleCode = access.RoleAdmin
				g.ModuleCode = access.ModuleMembership
			}),
			grant(func(g *access.Grant) {
				g.RoleCode = "USR"
				g.ModuleCode = access.ModuleHierarchy
			}),
		}

		err := access.Authorize(grants, access.Constraints{
			RoleCodes:   []string{access.RoleAdmin},
			ModuleCodes: []string{access.ModuleHierarchy},
		})
		Expect(err).To(MatchError(access.ErrNotAllowed))
	})

	It("matches any satisfying grant regardless of position", func() {
		grants := []access.Grant{
			grant(func(g *access.Grant) { g.AccessType = access.AccessView }),
			grant(func(g *access.Grant) { g.AccessType = access.AccessEdit }),
		}

		err := access.Authorize(grants, access.Constraints{
			AccessTypes: []string{access.AccessEdit},
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("denies edit-style requests against view-only grants", func() {
		grants := []access.Grant{
			grant(func(g *access.Grant) { g.AccessType = access.AccessView }),
		}

		err := access.Authorize(grants, access.Constraints{
			AccessTypes: []string{access.AccessCreate},
		})
		Expect(err).To(MatchError(access.ErrNotAllowed))
	})

	Describe("head church and church scoping", func() {
		It("denies a grant from another head church", func() {
			grants := []access.Grant{grant(nil)}

			err := access.Authorize(grants, access.Constraints{HeadChurchCode: "HQ2"})
			Expect(err).To(MatchError(access.ErrNotAllowed))
		})

		It("requires an exact church code match when supplied", func() {
			grants := []access.Grant{grant(nil)}

			Expect(access.Authorize(grants, access.Constraints{ChurchCode: "BR01"})).To(Succeed())
			Expect(access.Authorize(grants, access.Constraints{ChurchCode: "BR02"})).To(MatchError(access.ErrNotAllowed))
		})
	})

	Describe("level constraints", func() {
		It("passes the rank branch: grant at or above the requested rank", func() {
			grants := []access.Grant{
				grant(func(g *access.Grant) {
					g.LevelCode = "ARE"
					g.LevelNo = 4
				}),
			}

			// rank-only call: no level codes supplied, grant rank 4 <= 4
			err := access.Authorize(grants, access.Constraints{LevelNo: 4})
			Expect(err).NotTo(HaveOccurred())
		})

		It("fails the rank branch for a grant below the requested rank", func() {
			grants := []access.Grant{
				grant(func(g *access.Grant) { g.LevelNo = 5 }),
			}

			err := access.Authorize(grants, access.Constraints{LevelNo: 4})
			Expect(err).To(MatchError(access.ErrNotAllowed))
		})

		It("passes the code branch independently of rank", func() {
			grants := []access.Grant{
				grant(func(g *access.Grant) {
					g.LevelCode = "BRN"
					g.LevelNo = 9
				}),
			}

			err := access.Authorize(grants, access.Constraints{LevelCodes: []string{"BRN"}})
			Expect(err).NotTo(HaveOccurred())
		})

		It("combines code and rank with OR when both are supplied", func() {
			// grant matches the code set but is far too junior in rank
			byCode := []access.Grant{
				grant(func(g *access.Grant) {
					g.LevelCode = "BRN"
					g.LevelNo = 9
				}),
			}
			Expect(access.Authorize(byCode, access.Constraints{
				LevelCodes: []string{"BRN"},
				LevelNo:    2,
			})).To(Succeed())

			// grant misses the code set but is senior enough in rank
			byRank := []access.Grant{
				grant(func(g *access.Grant) {
					g.LevelCode = "PRV"
					g.LevelNo = 2
				}),
			}
			Expect(access.Authorize(byRank, access.Constraints{
				LevelCodes: []string{"BRN"},
				LevelNo:    2,
			})).To(Succeed())

			// grant misses both branches
			neither := []access.Grant{
				grant(func(g *access.Grant) {
					g.LevelCode = "PRV"
					g.LevelNo = 6
				}),
			}
			Expect(access.Authorize(neither, access.Constraints{
				LevelCodes: []string{"BRN"},
				LevelNo:    2,
			})).To(MatchError(access.ErrNotAllowed))
		})
	})
})
