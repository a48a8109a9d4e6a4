package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lifegate/church-mgmt/internal"
	"github.com/lifegate/church-mgmt/internal/church"
	"github.com/lifegate/church-mgmt/internal/churchlead"
)

type ChurchLeadRepository struct {
	db *gorm.DB
}

func NewChurchLeadRepository(db *gorm.DB) *ChurchLeadRepository {
	return &ChurchLeadRepository{db: db}
}

const leadSelectColumns = `church_leads.*,
	c.name AS church_name,
	lc.name AS lead_church_name`

func (r *ChurchLeadRepository) baseQuery(headChurchCode string) *gorm.DB {
	return r.db.Table("church_leads").
		Select(leadSelectColumns).
		Joins("LEFT JOIN churches c ON c.code = church_leads.church_code AND c.head_church_code = church_leads.head_church_code").
		Joins("LEFT JOIN churches lc ON lc.code = church_leads.lead_church_code AND lc.head_church_code = church_leads.head_church_code").
		Where("church_leads.head_church_code = ?", headChurchCode)
}

func (r *ChurchLeadRepository) ListByChurch(headChurchCode, churchCode, status string) ([]*churchlead.ChurchLead, error) {
	query := r.baseQuery(headChurchCode).
		Where("church_leads.church_code = ?", churchCode).
		Order("church_leads.start_date DESC")
	if status != "" {
		query = query.Where("church_leads.status = ?", status)
	}

	var rows []*churchlead.ChurchLead
	if err := query.Find(&rows).Error; err != nil {
		return nil, internal.NewInternalError("failed to list church leads", err)
	}
	return rows, nil
}

func (r *ChurchLeadRepository) GetCurrent(headChurchCode, churchCode string) (*churchlead.ChurchLead, error) {
	var row churchlead.ChurchLead
	err := r.baseQuery(headChurchCode).
		Where("church_leads.church_code = ?", churchCode).
		Where("church_leads.status = ?", churchlead.StatusApproved).
		Where("church_leads.is_active = ?", true).
		Where("church_leads.end_date IS NULL").
		Order("church_leads.start_date DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internal.NewInternalError("failed to get current church lead", err)
	}
	return &row, nil
}

func (r *ChurchLeadRepository) CloseOpen(headChurchCode, churchCode, actor string) (int64, error) {
	now := time.Now()
	res := r.db.Table("church_leads").
		Where("head_church_code = ? AND church_code = ? AND end_date IS NULL", headChurchCode, churchCode).
		Updates(map[string]interface{}{
			"end_date":    now,
			"is_active":   false,
			"status":      churchlead.StatusInactive,
			"status_by":   actor,
			"status_date": now,
			"modified_by": actor,
			"updated_at":  now,
		})
	if res.Error != nil {
		return 0, internal.NewInternalError("failed to close open church lead", res.Error)
	}
	return res.RowsAffected, nil
}

// Replace closes the church's open mapping and inserts the new one inside a
// single transaction, so the church never ends up with two open rows or none.
func (r *ChurchLeadRepository) Replace(lead *churchlead.ChurchLead) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Table("church_leads").
			Where("head_church_code = ? AND church_code = ? AND end_date IS NULL",
				lead.HeadChurchCode, lead.ChurchCode).
			Updates(map[string]interface{}{
				"end_date":    now,
				"is_active":   false,
				"status":      churchlead.StatusInactive,
				"status_by":   lead.CreatedBy,
				"status_date": now,
				"modified_by": lead.CreatedBy,
				"updated_at":  now,
			})
		if res.Error != nil {
			return res.Error
		}
		return tx.Create(lead).Error
	})
	if err != nil {
		return internal.NewInternalError("failed to replace church lead", err)
	}
	return nil
}

func (r *ChurchLeadRepository) Approve(headChurchCode, churchCode, leadChurchCode, actor string) (int64, error) {
	now := time.Now()
	res := r.db.Table("church_leads").
		Where("head_church_code = ? AND church_code = ? AND lead_church_code = ?",
			headChurchCode, churchCode, leadChurchCode).
		Where("is_active = ? AND status <> ?", true, churchlead.StatusApproved).
		Updates(map[string]interface{}{
			"status":      churchlead.StatusApproved,
			"status_by":   actor,
			"status_date": now,
			"modified_by": actor,
			"updated_at":  now,
		})
	if res.Error != nil {
		return 0, internal.NewInternalError("failed to approve church lead", res.Error)
	}
	return res.RowsAffected, nil
}

// descendantsCTE walks open approved reporting lines downward from the root.
// Works on both postgres and sqlite.
const descendantsCTE = `
WITH RECURSIVE lineage AS (
	SELECT cl.lead_church_code, cl.church_code, cl.level_code, 1 AS depth
	FROM church_leads cl
	WHERE cl.head_church_code = ?
	  AND cl.lead_church_code = ?
	  AND cl.end_date IS NULL
	  AND cl.is_active = %s
	  AND cl.status = ?
	UNION ALL
	SELECT cl.lead_church_code, cl.church_code, cl.level_code, l.depth + 1
	FROM church_leads cl
	JOIN lineage l ON cl.lead_church_code = l.church_code
	WHERE cl.head_church_code = ?
	  AND cl.end_date IS NULL
	  AND cl.is_active = %s
	  AND cl.status = ?
	  AND l.depth < ?
)
SELECT l.lead_church_code, l.church_code, c.name AS church_name, l.level_code, c.status, l.depth
FROM lineage l
LEFT JOIN churches c ON c.code = l.church_code AND c.head_church_code = ?
ORDER BY l.depth, l.church_code`

func (r *ChurchLeadRepository) Descendants(headChurchCode, rootCode string, maxDepth int) ([]*churchlead.Descendant, error) {
	var rows []*churchlead.Descendant
	query := fmt.Sprintf(descendantsCTE, boolLiteral(r.db), boolLiteral(r.db))
	err := r.db.Raw(query,
		headChurchCode, rootCode, churchlead.StatusApproved,
		headChurchCode, churchlead.StatusApproved, maxDepth,
		headChurchCode,
	).Scan(&rows).Error
	if err != nil {
		return nil, internal.NewInternalError("failed to query descendants", err)
	}
	return rows, nil
}

// ChurchesByLead returns the churches whose open approved mapping points at
// the lead church, i.e. its direct reports.
func (r *ChurchLeadRepository) ChurchesByLead(headChurchCode, leadChurchCode, levelCode, status string) ([]*church.Church, error) {
	query := r.db.Table("churches").
		Select("churches.*").
		Joins("JOIN church_leads cl ON cl.church_code = churches.code AND cl.head_church_code = churches.head_church_code").
		Where("churches.head_church_code = ?", headChurchCode).
		Where("cl.lead_church_code = ?", leadChurchCode).
		Where("cl.end_date IS NULL").
		Where("cl.status = ?", churchlead.StatusApproved)
	if levelCode != "" {
		query = query.Where("churches.level_code = ?", levelCode)
	}
	if status != "" {
		query = query.Where("churches.status = ?", status)
	}

	var churches []*church.Church
	if err := query.Order("churches.code ASC").Find(&churches).Error; err != nil {
		return nil, internal.NewInternalError("failed to list churches by lead", err)
	}
	return churches, nil
}

func (r *ChurchLeadRepository) BranchesUnder(headChurchCode, rootCode, branchLevelCode, status string, maxDepth int) ([]*church.Church, error) {
	descendants, err := r.Descendants(headChurchCode, rootCode, maxDepth)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(descendants))
	for _, d := range descendants {
		if d.LevelCode == branchLevelCode {
			codes = append(codes, d.ChurchCode)
		}
	}
	if len(codes) == 0 {
		return []*church.Church{}, nil
	}

	query := r.db.
		Where("head_church_code = ?", headChurchCode).
		Where("code IN ?", codes)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var branches []*church.Church
	if err := query.Order("name ASC").Find(&branches).Error; err != nil {
		return nil, internal.NewInternalError("failed to list branches", err)
	}
	return branches, nil
}

// boolLiteral papers over sqlite storing booleans as integers in raw SQL.
func boolLiteral(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return "1"
	}
	return "TRUE"
}
