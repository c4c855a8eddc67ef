package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/delta/research-portal/db"
	"github.com/delta/research-portal/internal/auth"
	"github.com/delta/research-portal/internal/models"
	"github.com/delta/research-portal/internal/router"
	"github.com/delta/research-portal/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "correct-horse-battery"

type recordingMailer struct {
	recipients [][]string
	subjects   []string
	result     bool
}

func (m *recordingMailer) SendMessage(recipients []string, subject, bodyText, bodyHTML string) bool {
	m.recipients = append(m.recipients, recipients)
	m.subjects = append(m.subjects, subject)
	return m.result
}

// setupServer wires a fresh in-memory database and a recording mailer into
// the real router.
func setupServer(t *testing.T) (*gin.Engine, *recordingMailer) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	previousDB := db.DB
	db.DB = gdb
	t.Cleanup(func() { db.DB = previousDB })

	require.NoError(t, db.MigrateDatabase())
	require.NoError(t, db.SeedDatabase())

	mailer := &recordingMailer{result: true}
	previousMailer := services.Mail
	services.Mail = mailer
	t.Cleanup(func() { services.Mail = previousMailer })

	return router.NewRouter(), mailer
}

func department(t *testing.T, shortName string) models.Department {
	t.Helper()

	var dept models.Department
	require.NoError(t, db.DB.Where("short_name = ?", shortName).First(&dept).Error)

	return dept
}

type userOpts struct {
	staff      bool
	verified   bool
	adminLevel string
	deptShort  string
}

func createUser(t *testing.T, email string, opts userOpts) models.User {
	t.Helper()

	if opts.adminLevel == "" {
		opts.adminLevel = models.AdminLevelNormal
	}
	if opts.deptShort == "" {
		opts.deptShort = "CSE"
	}

	user := models.User{
		Name:         email,
		Email:        email,
		PasswordHash: hashPassword(t),
		IsStaff:      opts.staff,
		IsVerified:   opts.verified,
		AdminLevel:   opts.adminLevel,
		DepartmentID: department(t, opts.deptShort).ID,
		AuthToken:    auth.GenerateToken(auth.AuthTokenLength),
	}
	require.NoError(t, db.DB.Create(&user).Error)

	return user
}

var passwordHash string

func hashPassword(t *testing.T) string {
	t.Helper()

	if passwordHash == "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
		require.NoError(t, err)
		passwordHash = string(hash)
	}

	return passwordHash
}

func sessionFor(t *testing.T, user models.User) string {
	t.Helper()

	session, err := auth.CreateSession(db.DB, user.ID)
	require.NoError(t, err)

	return session.Token
}

func createAreaOfResearch(t *testing.T, name string) models.AreaOfResearch {
	t.Helper()

	aor := models.AreaOfResearch{
		Name:         name,
		Description:  name,
		DepartmentID: department(t, "CSE").ID,
	}
	require.NoError(t, db.DB.Create(&aor).Error)

	return aor
}

// doJSON performs a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer

	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, req)

	return recorder
}

func dbUpdateName(userID uint, name string) error {
	return db.DB.Model(&models.User{}).Where("id = ?", userID).Update("name", name).Error
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, into *map[string]interface{}) {
	t.Helper()

	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), into))
}

func responseError(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	message, _ := body["error"].(string)

	return message
}

func responseData(t *testing.T, recorder *httptest.ResponseRecorder) interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	return body["data"]
}
