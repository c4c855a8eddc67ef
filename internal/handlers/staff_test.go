package handlers_test

import (
	"net/http"
	"testing"

	"github.com/delta/research-portal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staffNames(t *testing.T, data interface{}) []string {
	t.Helper()

	rows, ok := data.([]interface{})
	require.True(t, ok)

	names := []string{}
	for _, row := range rows {
		entry, ok := row.(map[string]interface{})
		require.True(t, ok)
		name, _ := entry["name"].(string)
		names = append(names, name)
	}

	return names
}

func TestListStaffOnlyVerified(t *testing.T) {
	r, _ := setupServer(t)

	createUser(t, "prof@nitt.edu", userOpts{staff: true, verified: true})
	createUser(t, "pending@nitt.edu", userOpts{staff: true, verified: false})
	createUser(t, "106121001@nitt.edu", userOpts{staff: false, verified: true})

	recorder := doJSON(t, r, "GET", "/api/admin_users", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	names := staffNames(t, responseData(t, recorder))
	assert.Equal(t, []string{"prof@nitt.edu"}, names)
}

func TestSearchStaffFoldsDiacritics(t *testing.T) {
	r, _ := setupServer(t)

	meszaros := createUser(t, "meszaros@nitt.edu", userOpts{staff: true, verified: true})
	require.NoError(t, dbUpdateName(meszaros.ID, "Prof. Mèszáros"))
	other := createUser(t, "other@nitt.edu", userOpts{staff: true, verified: true})
	require.NoError(t, dbUpdateName(other.ID, "Prof. Other"))

	recorder := doJSON(t, r, "GET", "/api/admin_user/search?professor=meszaros", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, []string{"Prof. Mèszáros"}, staffNames(t, responseData(t, recorder)))

	recorder = doJSON(t, r, "GET", "/api/admin_user/search?professor=", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Len(t, staffNames(t, responseData(t, recorder)), 2)
}

func TestGetProfileUnknown(t *testing.T) {
	r, _ := setupServer(t)

	recorder := doJSON(t, r, "GET", "/api/admin_user/profile?email=nobody@nitt.edu", "", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "profile does not exist", responseError(t, recorder))
}

func TestGetProfileAggregates(t *testing.T) {
	r, _ := setupServer(t)

	head := createUser(t, "head@nitt.edu", userOpts{staff: true, verified: true})
	colleague := createUser(t, "colleague@nitt.edu", userOpts{staff: true, verified: true})
	scholar := createUser(t, "106121001@nitt.edu", userOpts{staff: false, verified: true})

	mine := createProject(t, r, head, "Graph Algorithms", "https://example.com/p1")
	theirs := createProject(t, r, colleague, "Topology", "https://example.com/p2")

	token := sessionFor(t, head)

	// Scholar joins the head's project; the head joins the colleague's
	// project with Write access.
	recorder := doJSON(t, r, "POST", "/api/admin_user/add_members", token, map[string]interface{}{
		"user_id":    scholar.Email,
		"project_id": mine.ID,
		"role":       models.PrivilegeCodeView,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, r, "POST", "/api/admin_user/add_members", sessionFor(t, colleague), map[string]interface{}{
		"user_id":    head.Email,
		"project_id": theirs.ID,
		"role":       models.PrivilegeCodeWrite,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, r, "GET", "/api/admin_user/profile?email=head@nitt.edu", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]interface{}
	decodeBody(t, recorder, &body)

	projects, ok := body["projects"].([]interface{})
	require.True(t, ok)
	require.Len(t, projects, 1)
	adminProject, ok := projects[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Graph Algorithms", adminProject["name"])

	nonAdmin, ok := body["non_admin_projects"].([]interface{})
	require.True(t, ok)
	require.Len(t, nonAdmin, 1)
	entry, ok := nonAdmin[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Write", entry["access"])

	scholars, ok := body["scholars"].([]interface{})
	require.True(t, ok)
	require.Len(t, scholars, 1)
	scholarEntry, ok := scholars[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, scholar.Email, scholarEntry["email"])
}

func TestListDepartments(t *testing.T) {
	r, _ := setupServer(t)

	recorder := doJSON(t, r, "GET", "/api/department", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	rows, ok := responseData(t, recorder).([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, rows)

	shortNames := map[string]bool{}
	for _, row := range rows {
		entry, ok := row.(map[string]interface{})
		require.True(t, ok)
		name, _ := entry["short_name"].(string)
		shortNames[name] = true
	}

	assert.True(t, shortNames["CSE"])
	assert.True(t, shortNames["ECE"])
	assert.True(t, shortNames[models.MaintainerDepartment])
}

func TestListAreasOfResearch(t *testing.T) {
	r, _ := setupServer(t)

	createAreaOfResearch(t, "Distributed Systems")

	recorder := doJSON(t, r, "GET", "/api/aor", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	rows, ok := responseData(t, recorder).([]interface{})
	require.True(t, ok)
	require.Len(t, rows, 1)

	entry, ok := rows[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Distributed Systems", entry["name"])
	assert.Equal(t, "CSE", entry["department"])
}
