package controller

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"numrenohacks/utils"
)

func newAuthApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := newControllerTestDB(t)
	rc := NewRegistrationController(db, testLogger())
	ac := NewAuthController(db, testLogger())

	app := fiber.New()
	app.Post("/api/register", rc.Register)
	app.Post("/api/login", ac.Login)
	app.Post("/api/admin/validate", ac.ValidateAdmin)
	return app, db
}

func TestLoginEndpoint(t *testing.T) {
	app, _ := newAuthApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/register", validRegisterPayload("1")), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/login", map[string]string{
		"email": "lead1@example.com",
		"phone": "9000000011",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	require.NotEmpty(t, body["access_token"])

	claims, err := utils.ParseToken(body["access_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, utils.RoleTeam, claims.Role)
	assert.NotZero(t, claims.TeamDocID)

	team := body["team"].(map[string]interface{})
	assert.Equal(t, "Jingle Coders 1", team["team_name"])
}

func TestLoginEndpointWrongCredentials(t *testing.T) {
	app, _ := newAuthApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/register", validRegisterPayload("1")), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Right email, wrong phone; the message never says which half failed.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/login", map[string]string{
		"email": "lead1@example.com",
		"phone": "0000000000",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Invalid credentials. Please check your email and phone number.", body["message"])
}

func TestValidateAdminEndpoint(t *testing.T) {
	app, _ := newAuthApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/admin/validate", map[string]string{
		"password": testAdminPassword,
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	claims, err := utils.ParseToken(body["access_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, utils.RoleAdmin, claims.Role)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/admin/validate", map[string]string{
		"password": "wrong-password",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
