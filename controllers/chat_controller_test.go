package controller

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numrenohacks/middleware"
	"numrenohacks/models"
	"numrenohacks/utils"
)

func newChatApp(t *testing.T) (*fiber.App, *ChatController) {
	t.Helper()

	db := newControllerTestDB(t)
	rc := NewRegistrationController(db, testLogger())
	cc := NewChatController(db, testLogger())

	app := fiber.New()
	app.Post("/api/register", rc.Register)

	chat := app.Group("/api/chat", middleware.TeamProtected())
	chat.Post("/message", cc.PostMessage)
	chat.Get("/history", cc.GetHistory)

	return app, cc
}

func teamSession(t *testing.T, cc *ChatController) (uint, string, string) {
	t.Helper()

	teams, err := cc.Teams.GetAll()
	require.NoError(t, err)
	require.NotEmpty(t, teams)

	token, err := utils.GenerateTeamToken(teams[0].ID, teams[0].TeamID)
	require.NoError(t, err)
	return teams[0].ID, teams[0].TeamID, token
}

func TestChatRequiresSession(t *testing.T) {
	app, _ := newChatApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/chat/message",
		map[string]string{"message": "When is the deadline?"}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatOffTopicQuestionIsDeflected(t *testing.T) {
	app, cc := newChatApp(t)
	registerTeam(t, app, "1")
	_, teamID, token := teamSession(t, cc)

	req := jsonRequest(t, http.MethodPost, "/api/chat/message",
		map[string]string{"message": "Tell me a joke"})
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["escalated"])
	assert.Contains(t, body["response"], "I can only help with questions about NumrenoHacks")

	// Both the question and the deflection are in the transcript.
	history, err := cc.Chats.History(teamID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.SenderTeam, history[0].Sender)
	assert.Equal(t, "Tell me a joke", history[0].Message)
	assert.Equal(t, models.SenderBot, history[1].Sender)
	assert.False(t, history[1].IsEscalated)
}

func TestChatHistoryEndpoint(t *testing.T) {
	app, cc := newChatApp(t)
	registerTeam(t, app, "1")
	_, teamID, token := teamSession(t, cc)

	_, err := cc.Chats.SaveMessage(teamID, "Jingle Coders 1", models.SenderTeam, "hello", false, "")
	require.NoError(t, err)
	_, err = cc.Chats.SaveMessage(teamID, "Jingle Coders 1", models.SenderBot, "hi there", false, "")
	require.NoError(t, err)

	req := jsonRequest(t, http.MethodGet, "/api/chat/history", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	messages := body["data"].([]interface{})
	require.Len(t, messages, 2)
	first := messages[0].(map[string]interface{})
	assert.Equal(t, "hello", first["message"])
}

func TestChatMessageValidation(t *testing.T) {
	app, cc := newChatApp(t)
	registerTeam(t, app, "1")
	_, _, token := teamSession(t, cc)

	req := jsonRequest(t, http.MethodPost, "/api/chat/message", map[string]string{"message": ""})
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
