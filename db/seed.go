package db

import "github.com/delta/research-portal/internal/models"

// departmentCatalog is the fixed set of departments. XX is the special
// Maintainer department that global admins belong to.
var departmentCatalog = []models.Department{
	{ShortName: "CSE", FullName: "Computer Science & Engineering"},
	{ShortName: "CA", FullName: "Computer Applications"},
	{ShortName: "ECE", FullName: "Electronics & Communication Engineering"},
	{ShortName: "EEE", FullName: "Electrical & Electronics Engineering"},
	{ShortName: "MECH", FullName: "Mechanical Engineering"},
	{ShortName: "ICE", FullName: "Instrumentation & Control Engineering"},
	{ShortName: "CHEM", FullName: "Chemical Engineering"},
	{ShortName: "CIVIL", FullName: "Civil Engineering"},
	{ShortName: "PROD", FullName: "Production Engineering"},
	{ShortName: "META", FullName: "Metallurgical & Materials Engineering"},
	{ShortName: "DEE", FullName: "Energy and Environment (CEESAT)"},
	{ShortName: "MATHS", FullName: "Mathematics"},
	{ShortName: "PHYSICS", FullName: "Physics"},
	{ShortName: "HUMANITIES", FullName: "Humanities"},
	{ShortName: "ARCHITECTURE", FullName: "Architecture"},
	{ShortName: "MS", FullName: "Management Studies"},
	{ShortName: models.MaintainerDepartment, FullName: "Maintainer"},
}

// privilegeCatalog rows are stable foreign-key targets; they are created
// once and never deleted.
var privilegeCatalog = []models.ProjectMemberPrivilege{
	{Code: models.PrivilegeCodeView, Name: "View"},
	{Code: models.PrivilegeCodeWrite, Name: "Write"},
	{Code: models.PrivilegeCodeEdit, Name: "Edit"},
	{Code: models.PrivilegeCodeAdmin, Name: "Admin"},
}

// SeedDatabase inserts the department and privilege catalogs. It is
// idempotent and safe to run on every startup.
func SeedDatabase() error {
	for _, department := range departmentCatalog {
		err := DB.Where(models.Department{ShortName: department.ShortName}).
			Attrs(department).
			FirstOrCreate(&models.Department{}).Error
		if err != nil {
			return err
		}
	}

	for _, privilege := range privilegeCatalog {
		err := DB.Where(models.ProjectMemberPrivilege{Code: privilege.Code}).
			Attrs(privilege).
			FirstOrCreate(&models.ProjectMemberPrivilege{}).Error
		if err != nil {
			return err
		}
	}

	return nil
}
