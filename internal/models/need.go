package models

import (
	"strings"
	"time"
)

// NeedPriority ranks how urgent a skill gap is.
type NeedPriority string

// Supported need priorities.
const (
	NeedPriorityLow      NeedPriority = "LOW"
	NeedPriorityMedium   NeedPriority = "MEDIUM"
	NeedPriorityHigh     NeedPriority = "HIGH"
	NeedPriorityCritical NeedPriority = "CRITICAL"
)

// Valid reports whether the priority is supported.
func (p NeedPriority) Valid() bool {
	switch p {
	case NeedPriorityLow, NeedPriorityMedium, NeedPriorityHigh, NeedPriorityCritical:
		return true
	}
	return false
}

// NeedStatus tracks a need from identification to closure.
type NeedStatus string

// Possible need statuses.
const (
	NeedStatusIdentified NeedStatus = "IDENTIFIED"
	NeedStatusPlanned    NeedStatus = "PLANNED"
	NeedStatusAddressed  NeedStatus = "ADDRESSED"
	NeedStatusClosed     NeedStatus = "CLOSED"
)

// Valid reports whether the need status is supported.
func (s NeedStatus) Valid() bool {
	switch s {
	case NeedStatusIdentified, NeedStatusPlanned, NeedStatusAddressed, NeedStatusClosed:
		return true
	}
	return false
}

// CanTransitionTo enforces identified → planned → addressed → closed.
func (s NeedStatus) CanTransitionTo(next NeedStatus) bool {
	switch s {
	case NeedStatusIdentified:
		return next == NeedStatusPlanned
	case NeedStatusPlanned:
		return next == NeedStatusAddressed
	case NeedStatusAddressed:
		return next == NeedStatusClosed
	}
	return false
}

// Resolved reports whether the need counts towards the addressed rate.
func (s NeedStatus) Resolved() bool {
	return s == NeedStatusAddressed || s == NeedStatusClosed
}

// TrainingNeed is an identified skill gap for an employee, independent of any
// specific schedule.
type TrainingNeed struct {
	ID                 string       `db:"id" json:"id"`
	EmployeeID         string       `db:"employee_id" json:"employee_id"`
	EmployeeName       string       `db:"employee_name" json:"employee_name"`
	Department         string       `db:"department" json:"department"`
	IdentifiedBy       string       `db:"identified_by" json:"identified_by"`
	IdentifiedDate     time.Time    `db:"identified_date" json:"identified_date"`
	SkillGap           string       `db:"skill_gap" json:"skill_gap"`
	Priority           NeedPriority `db:"priority" json:"priority"`
	SuggestedProgramID *string      `db:"suggested_program_id" json:"suggested_program_id,omitempty"`
	TargetDate         *time.Time   `db:"target_date" json:"target_date,omitempty"`
	Status             NeedStatus   `db:"status" json:"status"`
}

// NeedFilter provides filters for listing needs.
type NeedFilter struct {
	Department string
	Priority   NeedPriority
	Status     NeedStatus
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// SkillCategory buckets free-text skill gaps for needs analysis.
type SkillCategory string

// Skill categories derived from gap descriptions.
const (
	SkillCategoryTechnical  SkillCategory = "Technical"
	SkillCategorySoftSkills SkillCategory = "Soft Skills"
	SkillCategoryCompliance SkillCategory = "Compliance"
	SkillCategoryGeneral    SkillCategory = "General"
)

// SkillCategoryRule maps keywords to a category.
type SkillCategoryRule struct {
	Category SkillCategory
	Keywords []string
}

// DefaultSkillCategoryRules is the classification policy used by the needs
// analysis. Rules are evaluated in order; the first keyword hit wins, so an
// ambiguous gap description is classified by the earliest matching rule.
var DefaultSkillCategoryRules = []SkillCategoryRule{
	{Category: SkillCategoryTechnical, Keywords: []string{"technical", "software", "coding"}},
	{Category: SkillCategorySoftSkills, Keywords: []string{"communication", "leadership", "team"}},
	{Category: SkillCategoryCompliance, Keywords: []string{"safety", "compliance"}},
}

// CategorizeSkillGap classifies a gap description against the rule table
// using case-insensitive substring matching. Unmatched text falls back to
// General.
func CategorizeSkillGap(gap string, rules []SkillCategoryRule) SkillCategory {
	lowered := strings.ToLower(gap)
	for _, rule := range rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lowered, keyword) {
				return rule.Category
			}
		}
	}
	return SkillCategoryGeneral
}
