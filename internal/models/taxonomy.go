package models

import "gorm.io/gorm"

// AreaOfResearch is a department-scoped research-topic tag. A project from
// any department can carry areas of research from any department; the
// department reference only places the tag on a department page.
type AreaOfResearch struct {
	gorm.Model

	Name         string `gorm:"uniqueIndex;not null"`
	Description  string
	DepartmentID uint `gorm:"not null;index"`

	// Relationships
	Department Department `gorm:"foreignKey:DepartmentID;constraint:OnUpdate:Cascade,OnDelete:RESTRICT"`
}

type Lab struct {
	gorm.Model

	Name         string `gorm:"not null"`
	Description  string
	ImageURL     string
	DepartmentID uint `gorm:"not null;index"`

	// Relationships
	Department Department `gorm:"foreignKey:DepartmentID;constraint:OnUpdate:Cascade,OnDelete:RESTRICT"`
}

// COE is a center of excellence.
type COE struct {
	gorm.Model

	Name        string `gorm:"not null"`
	Description string
	ImageURL    string
}
