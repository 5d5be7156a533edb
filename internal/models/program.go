package models

import "time"

// ProgramType classifies a training program.
type ProgramType string

// Supported program types.
const (
	ProgramTypeTechnical     ProgramType = "TECHNICAL"
	ProgramTypeSoftSkills    ProgramType = "SOFT_SKILLS"
	ProgramTypeCompliance    ProgramType = "COMPLIANCE"
	ProgramTypeSafety        ProgramType = "SAFETY"
	ProgramTypeLeadership    ProgramType = "LEADERSHIP"
	ProgramTypeProduct       ProgramType = "PRODUCT"
	ProgramTypeCertification ProgramType = "CERTIFICATION"
)

// Valid reports whether the program type is one of the supported values.
func (t ProgramType) Valid() bool {
	switch t {
	case ProgramTypeTechnical, ProgramTypeSoftSkills, ProgramTypeCompliance,
		ProgramTypeSafety, ProgramTypeLeadership, ProgramTypeProduct, ProgramTypeCertification:
		return true
	}
	return false
}

// DeliveryMode describes how a program is delivered.
type DeliveryMode string

// Supported delivery modes.
const (
	DeliveryModeClassroom DeliveryMode = "CLASSROOM"
	DeliveryModeOnline    DeliveryMode = "ONLINE"
	DeliveryModeHybrid    DeliveryMode = "HYBRID"
	DeliveryModeExternal  DeliveryMode = "EXTERNAL"
)

// Valid reports whether the delivery mode is supported.
func (m DeliveryMode) Valid() bool {
	switch m {
	case DeliveryModeClassroom, DeliveryModeOnline, DeliveryModeHybrid, DeliveryModeExternal:
		return true
	}
	return false
}

// TrainingProgram is a reusable definition of a training course. Apart from
// the active flag it is immutable once schedules reference it.
type TrainingProgram struct {
	ID              string       `db:"id" json:"id"`
	Code            string       `db:"code" json:"code"`
	Title           string       `db:"title" json:"title"`
	Type            ProgramType  `db:"type" json:"type"`
	Mode            DeliveryMode `db:"mode" json:"mode"`
	DurationHours   int          `db:"duration_hours" json:"duration_hours"`
	MaxParticipants int          `db:"max_participants" json:"max_participants"`
	TrainerID       *string      `db:"trainer_id" json:"trainer_id,omitempty"`
	TrainerName     *string      `db:"trainer_name" json:"trainer_name,omitempty"`
	Vendor          *string      `db:"vendor" json:"vendor,omitempty"`
	Cost            float64      `db:"cost" json:"cost"`
	Active          bool         `db:"active" json:"active"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`

	Modules []CurriculumModule `db:"-" json:"modules,omitempty"`
}

// CurriculumModule is a unit within a program's curriculum. It has no
// lifecycle of its own; rows are ordered by position.
type CurriculumModule struct {
	ID            string  `db:"id" json:"id"`
	ProgramID     string  `db:"program_id" json:"program_id"`
	Position      int     `db:"position" json:"position"`
	Title         string  `db:"title" json:"title"`
	Description   string  `db:"description" json:"description"`
	DurationHours int     `db:"duration_hours" json:"duration_hours"`
	Assessment    *string `db:"assessment" json:"assessment,omitempty"`
}

// ProgramFilter provides filters for listing programs.
type ProgramFilter struct {
	Type      ProgramType
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
