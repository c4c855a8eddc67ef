package models

import "gorm.io/gorm"

// Admin levels. Department admins hold Admin access over every project in
// their department, Global admins over every project in the system.
const (
	AdminLevelNormal     = "Normal"
	AdminLevelDepartment = "Department"
	AdminLevelGlobal     = "Global"
)

type User struct {
	gorm.Model

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`

	// IsStaff distinguishes faculty from students. Only staff users may
	// head a project.
	IsStaff    bool `gorm:"not null;default:false"`
	IsVerified bool `gorm:"not null;default:false"`

	AdminLevel string `gorm:"not null;default:Normal"`

	DepartmentID uint `gorm:"not null;index"`

	// AuthToken backs both email verification and password reset. It is
	// rotated every time it is consumed, so a delivered link works once.
	AuthToken string `gorm:"uniqueIndex;not null"`

	ImageURL string

	// Relationships
	Department         Department                  `gorm:"foreignKey:DepartmentID;constraint:OnUpdate:Cascade,OnDelete:RESTRICT"`
	HeadedProjects     []Project                   `gorm:"foreignKey:HeadID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ProjectMemberships []ProjectMemberRelationship `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Sessions           []Session                   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
