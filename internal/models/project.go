package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project is a research group. Its head is the staff user who created it
// and is implicitly Admin even without a membership row.
type Project struct {
	gorm.Model

	Name     string `gorm:"uniqueIndex;not null"`
	Abstract string

	// PaperLink points at the group's google scholar page and doubles as
	// a dedup key on creation.
	PaperLink string `gorm:"uniqueIndex;not null"`

	DepartmentID uint `gorm:"not null;index"`
	HeadID       uint `gorm:"not null;index"`

	AorTags []AreaOfResearch `gorm:"many2many:project_aor_tags"`
	LabTags []Lab            `gorm:"many2many:project_lab_tags"`
	CoeTags []COE            `gorm:"many2many:project_coe_tags"`

	// Free-form short tags, kept in insertion order.
	Tags datatypes.JSON

	// Relationships
	Department Department                  `gorm:"foreignKey:DepartmentID;constraint:OnUpdate:Cascade,OnDelete:RESTRICT"`
	Head       User                        `gorm:"foreignKey:HeadID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Members    []ProjectMemberRelationship `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
