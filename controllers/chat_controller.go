package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"numrenohacks/models"
	"numrenohacks/store"
	"numrenohacks/utils"
)

const offTopicReply = "I can only help with questions about NumrenoHacks 2025 - " +
	"registration, teams, problem statements, submissions, judging and the dashboard. " +
	"What would you like to know about the hackathon? 🎄"

const escalationNote = "\n\n⚠️ This query has been escalated to our admin team for better assistance. They will respond soon!"

type ChatMessageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type ChatRespondRequest struct {
	Response  string `json:"response" validate:"required,max=4000"`
	AdminName string `json:"adminName"`
}

type ChatController struct {
	Teams  *store.TeamStore
	Chats  *store.ChatStore
	Logger *log.Logger
}

func NewChatController(db *gorm.DB, logger *log.Logger) *ChatController {
	return &ChatController{
		Teams:  store.NewTeamStore(db, logger),
		Chats:  store.NewChatStore(db),
		Logger: logger,
	}
}

// PostMessage runs one support-chat turn: persist the team's question, run
// the topic filter, ask the AI backend if the question is in scope, and
// persist the bot's answer with escalation bookkeeping.
func (cc *ChatController) PostMessage(c *fiber.Ctx) error {
	teamDocID := c.Locals("teamDocID").(uint)
	teamID := c.Locals("teamID").(string)

	var req ChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	team, err := cc.Teams.GetByID(teamDocID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Team not found.",
		})
	}

	if _, err := cc.Chats.SaveMessage(teamID, team.TeamName, models.SenderTeam, req.Message, false, ""); err != nil {
		utils.LogError("chat_save", err, map[string]interface{}{"team_id": teamID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to save message",
		})
	}

	botResponse, escalated := cc.answer(req.Message)

	reason := ""
	if escalated {
		reason = req.Message
		botResponse += escalationNote
	}
	if _, err := cc.Chats.SaveMessage(teamID, team.TeamName, models.SenderBot, botResponse, escalated, reason); err != nil {
		utils.LogError("chat_save", err, map[string]interface{}{"team_id": teamID})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"response":  botResponse,
		"escalated": escalated,
	})
}

// answer produces the bot reply and whether it needs admin follow-up.
func (cc *ChatController) answer(question string) (string, bool) {
	if !utils.IsHackathonRelated(question) {
		return offTopicReply, false
	}

	botResponse, err := utils.AskGemini(question)
	if err != nil {
		cc.Logger.Printf("chat backend error: %v", err)
		// No usable answer; hand the question to a human.
		return "Please escalate this to our admin team for assistance.", true
	}

	return botResponse, utils.ShouldEscalate(question, botResponse)
}

// GetHistory returns the session team's chat, oldest first.
func (cc *ChatController) GetHistory(c *fiber.Ctx) error {
	teamID := c.Locals("teamID").(string)

	messages, err := cc.Chats.History(teamID)
	if err != nil {
		utils.LogError("chat_history", err, map[string]interface{}{"team_id": teamID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch chat history",
		})
	}
	return c.JSON(utils.SuccessResponse(messages))
}

// GetEscalated returns the admin queue of escalated questions, newest
// first.
func (cc *ChatController) GetEscalated(c *fiber.Ctx) error {
	messages, err := cc.Chats.Escalated()
	if err != nil {
		utils.LogError("chat_escalated", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch escalated queries",
		})
	}
	return c.JSON(utils.SuccessResponse(messages))
}

// Respond attaches an admin answer to an escalated message.
func (cc *ChatController) Respond(c *fiber.Ctx) error {
	messageID := c.Params("messageId")

	var req ChatRespondRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	adminName := req.AdminName
	if adminName == "" {
		adminName = "Admin"
	}

	if err := cc.Chats.Respond(messageID, req.Response, adminName); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Message not found",
			})
		}
		utils.LogError("chat_respond", err, map[string]interface{}{"message_id": messageID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to send response",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Response sent successfully",
	})
}
