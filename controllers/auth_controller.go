package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"numrenohacks/config"
	"numrenohacks/store"
	"numrenohacks/utils"
)

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

type AdminValidateRequest struct {
	Password string `json:"password" validate:"required"`
}

type AuthController struct {
	Store  *store.TeamStore
	Logger *log.Logger

	// bcrypt digest of the shared admin secret, derived once at startup so
	// the comparison below never touches the plaintext config value.
	adminHash []byte
}

func NewAuthController(db *gorm.DB, logger *log.Logger) *AuthController {
	hash, err := bcrypt.GenerateFromPassword([]byte(config.AppConfig.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatalf("Failed to hash admin password: %v", err)
	}
	return &AuthController{
		Store:     store.NewTeamStore(db, logger),
		Logger:    logger,
		adminHash: hash,
	}
}

// Login authenticates a team by its lead's email and phone. The failure
// message is the same whether the team does not exist or the store read
// failed; the client cannot tell the two apart.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
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

	team, err := ac.Store.FindByCredentials(req.Email, req.Phone)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid credentials. Please check your email and phone number.",
		})
	}

	token, err := utils.GenerateTeamToken(team.ID, team.TeamID)
	if err != nil {
		utils.LogError("team_login", err, map[string]interface{}{
			"team_id": team.TeamID,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create session",
		})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Login successful!",
		"access_token": token,
		"team":         team,
	})
}

// ValidateAdmin checks the shared admin password and issues an admin
// session token. There are no per-admin accounts.
func (ac *AuthController) ValidateAdmin(c *fiber.Ctx) error {
	var req AdminValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if err := bcrypt.CompareHashAndPassword(ac.adminHash, []byte(req.Password)); err != nil {
		ac.Logger.Println("Admin login failed - incorrect password")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid password",
		})
	}

	token, err := utils.GenerateAdminToken()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Authentication error",
		})
	}

	ac.Logger.Println("Admin login successful")
	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Authentication successful",
		"access_token": token,
	})
}
