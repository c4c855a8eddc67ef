package access

import (
	"errors"

	"github.com/delta/research-portal/internal/models"
	"gorm.io/gorm"
)

// Level is a project access level. Levels are strictly ordered and every
// level includes the capabilities of the levels below it, so threshold
// checks are plain >= comparisons.
type Level int

const (
	View Level = iota + 1
	Write
	Edit
	Admin
)

var ErrProjectNotFound = errors.New("project does not exist")

func (l Level) String() string {
	switch l {
	case View:
		return "View"
	case Write:
		return "Write"
	case Edit:
		return "Edit"
	case Admin:
		return "Admin"
	}
	return "Unknown"
}

// LevelFromCode maps a privilege catalog code to a Level. Unknown codes
// degrade to View.
func LevelFromCode(code int) Level {
	if code >= int(View) && code <= int(Admin) {
		return Level(code)
	}
	return View
}

// Resolve computes the effective access level of user on the project with
// the given id. user may be nil for anonymous callers. First match wins:
//
//  1. no user               -> View
//  2. user is the head      -> Admin
//  3. global admin          -> Admin
//  4. department admin of the project's department -> Admin
//  5. explicit membership row -> its privilege
//  6. otherwise             -> View
//
// Headship and admin-level overrides short-circuit the membership lookup
// because a head may deliberately hold no explicit row.
func Resolve(db *gorm.DB, user *models.User, projectID uint) (Level, *models.Project, error) {
	var project models.Project

	if err := db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return View, nil, ErrProjectNotFound
		}
		return View, nil, err
	}

	if user == nil {
		return View, &project, nil
	}

	if project.HeadID == user.ID {
		return Admin, &project, nil
	}

	if user.AdminLevel == models.AdminLevelGlobal {
		return Admin, &project, nil
	}

	if user.AdminLevel == models.AdminLevelDepartment && user.DepartmentID == project.DepartmentID {
		return Admin, &project, nil
	}

	var relationship models.ProjectMemberRelationship

	err := db.Preload("Privilege").
		Where("project_id = ? AND user_id = ?", project.ID, user.ID).
		First(&relationship).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return View, &project, nil
		}
		return View, nil, err
	}

	return LevelFromCode(relationship.Privilege.Code), &project, nil
}
