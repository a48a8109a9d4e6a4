package access

import (
	"github.com/lifegate/church-mgmt/internal"
)

// ErrNotAllowed is returned whenever no single grant satisfies every supplied
// constraint. It is always raised before any mutating statement runs.
var ErrNotAllowed = internal.NewForbiddenError("You are NOT ALLOWED to perform this action", internal.ErrCodeAccessDenied)

// Constraints narrows the grant search. Zero-valued fields are not applied:
// an empty string or nil slice means "no restriction", a zero LevelNo means
// the rank check is off.
type Constraints struct {
	HeadChurchCode string
	ChurchCode     string
	RoleCodes      []string
	LevelCodes     []string
	LevelNo        int
	ModuleCodes    []string
	SubModuleCodes []string
	AccessTypes    []string
}

// Authorize reports whether any single grant satisfies all supplied
// constraints at once. A grant cannot combine its role with another grant's
// module; the match is per record, not aggregated across the list. Returns
// nil on the first satisfying grant, ErrNotAllowed when none qualifies.
func Authorize(grants []Grant, c Constraints) error {
	for _, g := range grants {
		if satisfies(g, c) {
			return nil
		}
	}
	return ErrNotAllowed
}

func satisfies(g Grant, c Constraints) bool {
	if c.HeadChurchCode != "" && g.HeadChurchCode != c.HeadChurchCode {
		return false
	}
	if c.ChurchCode != "" && g.ChurchCode != c.ChurchCode {
		return false
	}
	if len(c.RoleCodes) > 0 && !contains(c.RoleCodes, g.RoleCode) {
		return false
	}
	if !levelSatisfied(g, c) {
		return false
	}
	if len(c.ModuleCodes) > 0 && !contains(c.ModuleCodes, g.ModuleCode) {
		return false
	}
	if len(c.SubModuleCodes) > 0 && !contains(c.SubModuleCodes, g.SubModuleCode) {
		return false
	}
	if len(c.AccessTypes) > 0 && !contains(c.AccessTypes, g.AccessType) {
		return false
	}
	return true
}

// levelSatisfied combines the two level constraints with OR: a grant passes
// when its level code is in the requested set, or when its rank is at or
// above the requested rank (lower number = higher authority). Rank-only
// calls therefore admit any sufficiently senior grant regardless of its
// level code.
func levelSatisfied(g Grant, c Constraints) bool {
	if len(c.LevelCodes) == 0 && c.LevelNo == 0 {
		return true
	}
	if len(c.LevelCodes) > 0 && contains(c.LevelCodes, g.LevelCode) {
		return true
	}
	if c.LevelNo > 0 && g.LevelNo <= c.LevelNo {
		return true
	}
	return false
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
