package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lifegate/church-mgmt/internal"
	"github.com/lifegate/church-mgmt/internal/church"
)

func TestChurchRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ChurchRepository Suite")
}

type SQLiteChurch struct {
	ID             int64      `gorm:"primaryKey"`
	Code           string     `gorm:"column:code;not null"`
	Name           string     `gorm:"column:name;not null"`
	AltName        *string    `gorm:"column:alt_name"`
	Address        *string    `gorm:"column:address"`
	ContactNo      *string    `gorm:"column:contact_no"`
	ContactEmail   *string    `gorm:"column:contact_email"`
	LevelCode      string     `gorm:"column:level_code;not null"`
	HeadChurchCode string     `gorm:"column:head_church_code;not null"`
	Status         string     `gorm:"column:status;default:'AWT'"`
	IsActive       bool       `gorm:"column:is_active;default:false"`
	CreatedBy      string     `gorm:"column:created_by"`
	ModifiedBy     string     `gorm:"column:modified_by"`
	StatusBy       string     `gorm:"column:status_by"`
	StatusDate     *time.Time `gorm:"column:status_date"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (SQLiteChurch) TableName() string {
	return "churches"
}

type SQLiteChurchLead struct {
	ID             int64      `gorm:"primaryKey"`
	ChurchCode     string     `gorm:"column:church_code;not null"`
	LevelCode      string     `gorm:"column:level_code"`
	LeadChurchCode string     `gorm:"column:lead_church_code;not null"`
	LeadLevelCode  string     `gorm:"column:lead_level_code"`
	HeadChurchCode string     `gorm:"column:head_church_code;not null"`
	StartDate      time.Time  `gorm:"column:start_date;not null"`
	EndDate        *time.Time `gorm:"column:end_date"`
	Status         string     `gorm:"column:status;default:'AWT'"`
	IsActive       bool       `gorm:"column:is_active;default:true"`
	StatusBy       string     `gorm:"column:status_by"`
	StatusDate     *time.Time `gorm:"column:status_date"`
	ModifiedBy     string     `gorm:"column:modified_by"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (SQLiteChurchLead) TableName() string {
	return "church_leads"
}

var _ = Describe("ChurchRepository", func() {
	const head = "HQ1"

	var (
		db   *gorm.DB
		repo church.Repository
	)

	seed := func(code, levelCode, status string, active bool) {
		err := db.Create(&SQLiteChurch{
			Code:           code,
			Name:           "Church " + code,
			LevelCode:      levelCode,
			HeadChurchCode: head,
			Status:         status,
			IsActive:       active,
		}).Error
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteChurch{}, &SQLiteChurchLead{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewChurchRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Create and GetByCode", func() {
		It("round-trips a church", func() {
			err := repo.Create(&church.Church{
				Code:           "BR01",
				Name:           "First Branch",
				LevelCode:      "BRN",
				HeadChurchCode: head,
				Status:         church.StatusAwaiting,
			})
			Expect(err).NotTo(HaveOccurred())

			got, err := repo.GetByCode(head, "BR01")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("First Branch"))
			Expect(got.Status).To(Equal(church.StatusAwaiting))
		})

		It("returns not found for another head church", func() {
			seed("BR01", "BRN", church.StatusApproved, true)

			_, err := repo.GetByCode("OTHER", "BR01")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeChurchNotFound))
		})
	})

	Describe("List", func() {
		It("filters by status and orders by code", func() {
			seed("BR02", "BRN", church.StatusApproved, true)
			seed("BR01", "BRN", church.StatusApproved, true)
			seed("BR03", "BRN", church.StatusAwaiting, false)

			out, err := repo.List(head, church.StatusApproved)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(2))
			Expect(out[0].Code).To(Equal("BR01"))
			Expect(out[1].Code).To(Equal("BR02"))
		})
	})

	Describe("NameExists", func() {
		It("matches names case-insensitively", func() {
			seed("BR01", "BRN", church.StatusApproved, true)

			exists, err := repo.NameExists(head, "church br01")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())

			exists, err = repo.NameExists(head, "Some Other Name")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})

	Describe("SetStatus", func() {
		It("updates status, activity and audit columns", func() {
			seed("BR01", "BRN", church.StatusActive, true)

			err := repo.SetStatus(head, "BR01", church.StatusApproved, true, "approver")
			Expect(err).NotTo(HaveOccurred())

			got, err := repo.GetByCode(head, "BR01")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(church.StatusApproved))
			Expect(got.StatusBy).To(Equal("approver"))
			Expect(got.StatusDate).NotTo(BeNil())
		})
	})

	Describe("DeactivateWithLeadClose", func() {
		It("deactivates the church and ends its open mapping together", func() {
			seed("BR01", "BRN", church.StatusApproved, true)
			err := db.Create(&SQLiteChurchLead{
				ChurchCode:     "BR01",
				LevelCode:      "BRN",
				LeadChurchCode: "AR01",
				LeadLevelCode:  "ARE",
				HeadChurchCode: head,
				StartDate:      time.Now(),
				Status:         "APR",
				IsActive:       true,
			}).Error
			Expect(err).NotTo(HaveOccurred())

			err = repo.DeactivateWithLeadClose(head, "BR01", "admin")
			Expect(err).NotTo(HaveOccurred())

			got, err := repo.GetByCode(head, "BR01")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.IsActive).To(BeFalse())
			Expect(got.Status).To(Equal(church.StatusInactive))

			var lead SQLiteChurchLead
			err = db.Where("church_code = ?", "BR01").First(&lead).Error
			Expect(err).NotTo(HaveOccurred())
			Expect(lead.EndDate).NotTo(BeNil())
			Expect(lead.IsActive).To(BeFalse())
			Expect(lead.Status).To(Equal("INA"))
		})

		It("leaves mappings of other churches alone", func() {
			seed("BR01", "BRN", church.StatusApproved, true)
			seed("BR02", "BRN", church.StatusApproved, true)
			for _, code := range []string{"BR01", "BR02"} {
				err := db.Create(&SQLiteChurchLead{
					ChurchCode:     code,
					LeadChurchCode: "AR01",
					HeadChurchCode: head,
					StartDate:      time.Now(),
					Status:         "APR",
					IsActive:       true,
				}).Error
				Expect(err).NotTo(HaveOccurred())
			}

			err := repo.DeactivateWithLeadClose(head, "BR01", "admin")
			Expect(err).NotTo(HaveOccurred())

			var open int64
			err = db.Table("church_leads").Where("end_date IS NULL").Count(&open).Error
			Expect(err).NotTo(HaveOccurred())
			Expect(open).To(Equal(int64(1)))
		})
	})
})
