package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"numrenohacks/config"
	"numrenohacks/models"
)

const testAdminPassword = "north-pole-secret"

func newControllerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Controller tests bypass LoadConfig; set only what handlers read.
	// An empty recaptcha secret disables the CAPTCHA gate.
	config.AppConfig.EncryptionKey = "test-encryption-key-do-not-use"
	config.AppConfig.AdminPassword = testAdminPassword
	config.AppConfig.RecaptchaSecretKey = ""
	config.AppConfig.RecaptchaMinScore = 0.5

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Team{},
		&models.TeamMember{},
		&models.IDVerification{},
		&models.ChatMessage{},
	))
	return db
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, target, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func validRegisterPayload(n string) map[string]interface{} {
	return map[string]interface{}{
		"recaptchaToken":     "test-token",
		"teamName":           "Jingle Coders " + n,
		"institutionName":    "North Pole Institute of Technology",
		"numberOfMembers":    "2",
		"teamLeadName":       "Lead " + n,
		"teamLeadEmail":      "lead" + n + "@example.com",
		"teamLeadPhone":      "90000000" + n + n,
		"problemStatementId": "PS-01",
		"projectTitle":       "Sleigh Tracker",
		"projectDescription": "Real-time sleigh telemetry with festive dashboards for every workshop elf involved.",
		"techStack":          "Go, PostgreSQL",
		"members": []map[string]interface{}{
			{"name": "Lead " + n, "email": "lead" + n + "@example.com", "role": "Team Lead"},
			{"name": "Elf", "email": "elf" + n + "@example.com", "role": "Developer"},
		},
	}
}
