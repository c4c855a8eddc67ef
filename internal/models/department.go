package models

import "gorm.io/gorm"

// Department is a fixed catalog seeded at startup. Projects, labs and areas
// of research reference it with RESTRICT, so a department cannot be deleted
// while anything under it exists.
type Department struct {
	gorm.Model

	ShortName string `gorm:"uniqueIndex;not null"`
	FullName  string `gorm:"uniqueIndex;not null"`
	ImageURL  string
}

// MaintainerDepartment is the special department global admins belong to.
const MaintainerDepartment = "XX"
