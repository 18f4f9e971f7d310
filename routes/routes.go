package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	controller "numrenohacks/controllers"
	"numrenohacks/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	registrationController := controller.NewRegistrationController(db, log.New(os.Stdout, "REGISTER: ", log.Ldate|log.Ltime|log.Lshortfile))
	authController := controller.NewAuthController(db, log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile))
	teamController := controller.NewTeamController(db, log.New(os.Stdout, "TEAM: ", log.LstdFlags))
	adminController := controller.NewAdminController(db, log.New(os.Stdout, "ADMIN: ", log.LstdFlags))
	chatController := controller.NewChatController(db, log.New(os.Stdout, "CHAT: ", log.LstdFlags))

	api := app.Group("/api", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public endpoints
	api.Post("/register", middleware.RegistrationRateLimiter(), registrationController.Register)
	api.Post("/login", authController.Login)
	api.Post("/admin/validate", authController.ValidateAdmin)

	// Team dashboard endpoints (team session required)
	team := api.Group("/team", middleware.TeamProtected())
	team.Get("/", teamController.GetMyTeam)
	team.Post("/id-card", teamController.UploadIDCard)

	// Support chat (team session required)
	chat := api.Group("/chat", middleware.TeamProtected())
	chat.Post("/message", chatController.PostMessage)
	chat.Get("/history", chatController.GetHistory)

	// Admin console (admin session required)
	admin := api.Group("/admin", middleware.AdminProtected())
	admin.Get("/teams", adminController.GetTeams)
	admin.Get("/stats", adminController.GetStats)
	admin.Patch("/teams/:id/status", adminController.UpdateStatus)
	admin.Patch("/teams/:id/verification", adminController.UpdateVerification)
	admin.Get("/chat/escalated", chatController.GetEscalated)
	admin.Post("/chat/:messageId/respond", chatController.Respond)
}
