package controller

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistrationApp(t *testing.T) *fiber.App {
	t.Helper()

	db := newControllerTestDB(t)
	rc := NewRegistrationController(db, testLogger())

	app := fiber.New()
	app.Post("/api/register", rc.Register)
	return app
}

func TestRegisterEndpoint(t *testing.T) {
	app := newRegistrationApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/register", validRegisterPayload("1")), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Team registered successfully!", body["message"])
	assert.Regexp(t, regexp.MustCompile(`^NH-\d{4}-\d{4}$`), body["teamId"])
}

func TestRegisterEndpointDuplicateIsConflict(t *testing.T) {
	app := newRegistrationApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/register", validRegisterPayload("1")), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	dup := validRegisterPayload("2")
	dup["teamLeadEmail"] = "lead1@example.com"
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/register", dup), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "This email is already registered as a team lead. Please use a different email.", body["message"])
}

func TestRegisterEndpointValidation(t *testing.T) {
	app := newRegistrationApp(t)

	tests := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"missing team name", func(p map[string]interface{}) { delete(p, "teamName") }},
		{"bad lead email", func(p map[string]interface{}) { p["teamLeadEmail"] = "not-an-email" }},
		{"short description", func(p map[string]interface{}) { p["projectDescription"] = "too short" }},
		{"no members", func(p map[string]interface{}) { p["members"] = []map[string]interface{}{} }},
		{"missing captcha token", func(p map[string]interface{}) { delete(p, "recaptchaToken") }},
		{"bad member email", func(p map[string]interface{}) {
			p["members"] = []map[string]interface{}{
				{"name": "Elf", "email": "nonsense@", "role": "Developer"},
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validRegisterPayload("1")
			tt.mutate(payload)

			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/register", payload), -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestRegisterEndpointWithIDVerification(t *testing.T) {
	db := newControllerTestDB(t)
	rc := NewRegistrationController(db, testLogger())
	app := fiber.New()
	app.Post("/api/register", rc.Register)

	payload := validRegisterPayload("1")
	payload["idVerification"] = map[string]interface{}{
		"status":     "pending",
		"confidence": 0.88,
		"extractedData": map[string]string{
			"name":     "Lead 1",
			"idNumber": "",
		},
		"idCardPath": "pre-uploaded.jpg",
	}

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/register", payload), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	teamID := decodeBody(t, resp)["teamId"].(string)
	team, err := rc.Store.GetByTeamID(teamID)
	require.NoError(t, err)
	require.NotNil(t, team.Verification)
	assert.Equal(t, "pre-uploaded.jpg", team.Verification.IDCardPath)
	assert.NotContains(t, team.Verification.ExtractedData, "idNumber")
}
