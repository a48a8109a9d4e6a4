package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/lifegate/church-mgmt/internal"
	"github.com/lifegate/church-mgmt/internal/member"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Create(m *member.Member) error {
	if err := r.db.Create(m).Error; err != nil {
		return internal.NewInternalError("failed to create member", err)
	}
	return nil
}

func (r *MemberRepository) GetByCode(headChurchCode, code string) (*member.Member, error) {
	var m member.Member
	err := r.db.
		Where("head_church_code = ? AND code = ?", headChurchCode, code).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, member.ErrMemberNotFound(code, headChurchCode)
	}
	if err != nil {
		return nil, internal.NewInternalError("failed to get member", err)
	}
	return &m, nil
}

func (r *MemberRepository) List(headChurchCode string, activeOnly bool) ([]*member.Member, error) {
	query := r.db.
		Where("head_church_code = ?", headChurchCode).
		Order("last_name ASC, first_name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var members []*member.Member
	if err := query.Find(&members).Error; err != nil {
		return nil, internal.NewInternalError("failed to list members", err)
	}
	return members, nil
}

func (r *MemberRepository) ListByBranch(headChurchCode, branchCode string, activeOnly bool) ([]*member.Member, error) {
	query := r.db.
		Where("head_church_code = ? AND branch_code = ?", headChurchCode, branchCode).
		Order("last_name ASC, first_name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var members []*member.Member
	if err := query.Find(&members).Error; err != nil {
		return nil, internal.NewInternalError("failed to list branch members", err)
	}
	return members, nil
}

func (r *MemberRepository) Update(m *member.Member) error {
	if err := r.db.Save(m).Error; err != nil {
		return internal.NewInternalError("failed to update member", err)
	}
	return nil
}

func (r *MemberRepository) SetActive(headChurchCode, code string, active bool, actor string) error {
	res := r.db.Model(&member.Member{}).
		Where("head_church_code = ? AND code = ?", headChurchCode, code).
		Updates(map[string]interface{}{
			"is_active":   active,
			"modified_by": actor,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return internal.NewInternalError("failed to update member state", res.Error)
	}
	if res.RowsAffected == 0 {
		return member.ErrMemberNotFound(code, headChurchCode)
	}
	return nil
}

func (r *MemberRepository) ContactExists(headChurchCode, contactNo, contactEmail string) (bool, error) {
	var count int64
	err := r.db.Model(&member.Member{}).
		Where("head_church_code = ?", headChurchCode).
		Where("contact_no = ? OR contact_email = ?", contactNo, contactEmail).
		Count(&count).Error
	if err != nil {
		return false, internal.NewInternalError("failed to check member contact", err)
	}
	return count > 0, nil
}
