package access

import (
	"fmt"
	"testing"

	"github.com/delta/research-portal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Department{},
		&models.User{},
		&models.AreaOfResearch{},
		&models.Lab{},
		&models.COE{},
		&models.Project{},
		&models.ProjectMemberPrivilege{},
		&models.ProjectMemberRelationship{},
	))

	return db
}

type fixture struct {
	db        *gorm.DB
	cse       models.Department
	ece       models.Department
	head      models.User
	project   models.Project
	privilege map[int]models.ProjectMemberPrivilege
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := openTestDB(t)

	f := &fixture{
		db:        db,
		cse:       models.Department{ShortName: "CSE", FullName: "Computer Science & Engineering"},
		ece:       models.Department{ShortName: "ECE", FullName: "Electronics & Communication Engineering"},
		privilege: map[int]models.ProjectMemberPrivilege{},
	}

	require.NoError(t, db.Create(&f.cse).Error)
	require.NoError(t, db.Create(&f.ece).Error)

	for code, name := range map[int]string{
		models.PrivilegeCodeView:  "View",
		models.PrivilegeCodeWrite: "Write",
		models.PrivilegeCodeEdit:  "Edit",
		models.PrivilegeCodeAdmin: "Admin",
	} {
		row := models.ProjectMemberPrivilege{Code: code, Name: name}
		require.NoError(t, db.Create(&row).Error)
		f.privilege[code] = row
	}

	f.head = f.newUser(t, "head@nitt.edu", f.cse, models.AdminLevelNormal, true)

	f.project = models.Project{
		Name:         "Graph Algorithms",
		Abstract:     "Shortest paths at scale",
		PaperLink:    "https://example.com/p1",
		DepartmentID: f.cse.ID,
		HeadID:       f.head.ID,
	}
	require.NoError(t, db.Create(&f.project).Error)

	return f
}

func (f *fixture) newUser(t *testing.T, email string, dept models.Department, adminLevel string, staff bool) models.User {
	t.Helper()

	user := models.User{
		Name:         email,
		Email:        email,
		PasswordHash: "x",
		IsStaff:      staff,
		IsVerified:   true,
		AdminLevel:   adminLevel,
		DepartmentID: dept.ID,
		AuthToken:    "token-" + email,
	}
	require.NoError(t, f.db.Create(&user).Error)

	return user
}

func (f *fixture) grant(t *testing.T, user models.User, code int) {
	t.Helper()

	relationship := models.ProjectMemberRelationship{
		ProjectID:   f.project.ID,
		UserID:      user.ID,
		PrivilegeID: f.privilege[code].ID,
	}
	require.NoError(t, f.db.Create(&relationship).Error)
}

func TestLevelOrdering(t *testing.T) {
	assert.True(t, View < Write)
	assert.True(t, Write < Edit)
	assert.True(t, Edit < Admin)

	assert.True(t, Admin >= Write)
	assert.True(t, Edit >= Write)
	assert.False(t, View >= Write)
}

func TestLevelFromCode(t *testing.T) {
	tests := []struct {
		code int
		want Level
	}{
		{1, View},
		{2, Write},
		{3, Edit},
		{4, Admin},
		{0, View},
		{99, View},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFromCode(tt.code), "code %d", tt.code)
	}
}

func TestResolveAnonymousGetsView(t *testing.T) {
	f := newFixture(t)

	level, project, err := Resolve(f.db, nil, f.project.ID)

	require.NoError(t, err)
	assert.Equal(t, View, level)
	assert.Equal(t, f.project.ID, project.ID)
}

func TestResolveHeadIsAdmin(t *testing.T) {
	f := newFixture(t)

	// No membership row for the head; headship alone must win.
	level, _, err := Resolve(f.db, &f.head, f.project.ID)

	require.NoError(t, err)
	assert.Equal(t, Admin, level)
}

func TestResolveHeadBeatsExplicitLowerGrant(t *testing.T) {
	f := newFixture(t)

	f.grant(t, f.head, models.PrivilegeCodeView)

	level, _, err := Resolve(f.db, &f.head, f.project.ID)

	require.NoError(t, err)
	assert.Equal(t, Admin, level)
}

func TestResolveGlobalAdmin(t *testing.T) {
	f := newFixture(t)

	admin := f.newUser(t, "root@nitt.edu", f.ece, models.AdminLevelGlobal, true)

	level, _, err := Resolve(f.db, &admin, f.project.ID)

	require.NoError(t, err)
	assert.Equal(t, Admin, level)
}

func TestResolveDepartmentAdmin(t *testing.T) {
	f := newFixture(t)

	sameDept := f.newUser(t, "cse-admin@nitt.edu", f.cse, models.AdminLevelDepartment, true)
	otherDept := f.newUser(t, "ece-admin@nitt.edu", f.ece, models.AdminLevelDepartment, true)

	level, _, err := Resolve(f.db, &sameDept, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, Admin, level)

	// A department admin of another department gets no override.
	level, _, err = Resolve(f.db, &otherDept, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, View, level)
}

func TestResolveMembershipGrant(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		code int
		want Level
	}{
		{models.PrivilegeCodeView, View},
		{models.PrivilegeCodeWrite, Write},
		{models.PrivilegeCodeEdit, Edit},
		{models.PrivilegeCodeAdmin, Admin},
	}

	for i, tt := range tests {
		member := f.newUser(t, fmt.Sprintf("member%d@nitt.edu", i), f.ece, models.AdminLevelNormal, false)
		f.grant(t, member, tt.code)

		level, _, err := Resolve(f.db, &member, f.project.ID)

		require.NoError(t, err)
		assert.Equal(t, tt.want, level, "privilege code %d", tt.code)
	}
}

func TestResolveNoMembershipDefaultsToView(t *testing.T) {
	f := newFixture(t)

	stranger := f.newUser(t, "stranger@nitt.edu", f.ece, models.AdminLevelNormal, false)

	level, _, err := Resolve(f.db, &stranger, f.project.ID)

	require.NoError(t, err)
	assert.Equal(t, View, level)
}

func TestResolveMissingProject(t *testing.T) {
	f := newFixture(t)

	_, _, err := Resolve(f.db, &f.head, f.project.ID+1000)

	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestResolveReflectsReassignmentImmediately(t *testing.T) {
	f := newFixture(t)

	member := f.newUser(t, "member@nitt.edu", f.ece, models.AdminLevelNormal, false)
	f.grant(t, member, models.PrivilegeCodeView)

	level, _, err := Resolve(f.db, &member, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, View, level)

	err = f.db.Model(&models.ProjectMemberRelationship{}).
		Where("project_id = ? AND user_id = ?", f.project.ID, member.ID).
		Update("privilege_id", f.privilege[models.PrivilegeCodeEdit].ID).Error
	require.NoError(t, err)

	level, _, err = Resolve(f.db, &member, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, Edit, level)
}
