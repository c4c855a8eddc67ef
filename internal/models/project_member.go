package models

import "gorm.io/gorm"

// Privilege catalog codes, ordered by capability.
const (
	PrivilegeCodeView  = 1
	PrivilegeCodeWrite = 2
	PrivilegeCodeEdit  = 3
	PrivilegeCodeAdmin = 4
)

// ProjectMemberPrivilege is a catalog row. The catalog is seeded once and
// rows are never deleted; membership rows reference them by foreign key.
type ProjectMemberPrivilege struct {
	gorm.Model

	Code int    `gorm:"uniqueIndex;not null"`
	Name string `gorm:"not null"`
}

// ProjectMemberRelationship grants one user one privilege on one project.
// The composite unique index keeps it to a single row per (project, user)
// pair even under concurrent inserts.
type ProjectMemberRelationship struct {
	gorm.Model

	ProjectID   uint `gorm:"not null;uniqueIndex:idx_project_user"`
	UserID      uint `gorm:"not null;uniqueIndex:idx_project_user"`
	PrivilegeID uint `gorm:"not null"`

	// Relationships
	Project   Project                `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User      User                   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Privilege ProjectMemberPrivilege `gorm:"foreignKey:PrivilegeID;constraint:OnUpdate:Cascade,OnDelete:RESTRICT"`
}
